/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mijahauan/signal-recorder-sub008/hostclock"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestAnnotateToneLockedWhenSnapFreshAndConfident(t *testing.T) {
	now := time.Now()
	snap := model.TimeSnap{EstablishedAt: now.Add(-1 * time.Minute).UnixNano(), Confidence: 0.9}
	kind, recommend := Annotate(snap, now, nil)
	assert.Equal(t, model.TimingToneLocked, kind)
	assert.False(t, recommend)
}

func TestAnnotateFallsBackToNTPSyncedWhenSnapStale(t *testing.T) {
	now := time.Now()
	snap := model.TimeSnap{EstablishedAt: now.Add(-2 * time.Hour).UnixNano(), Confidence: 0.9}
	host := &hostclock.Status{Synced: true, Stratum: 2, OffsetMs: 10}
	kind, recommend := Annotate(snap, now, host)
	assert.Equal(t, model.TimingNTPSynced, kind)
	assert.False(t, recommend)
}

func TestAnnotateStratum16NeverCountsAsSynced(t *testing.T) {
	now := time.Now()
	snap := model.TimeSnap{EstablishedAt: now.Add(-2 * time.Hour).UnixNano(), Confidence: 0.9}
	host := &hostclock.Status{Synced: false, Stratum: hostclock.UnsyncedStratum, OffsetMs: 0}
	kind, recommend := Annotate(snap, now, host)
	assert.Equal(t, model.TimingWallClock, kind)
	assert.True(t, recommend)
}

func TestAnnotateInterpolatedWithinHourOfEstablishment(t *testing.T) {
	now := time.Now()
	snap := model.TimeSnap{EstablishedAt: now.Add(-30 * time.Minute).UnixNano(), Confidence: 0.0}
	kind, recommend := Annotate(snap, now, nil)
	assert.Equal(t, model.TimingInterpolated, kind)
	assert.True(t, recommend)
}

func TestAnnotateWallClockWhenNoAnchorEverEstablished(t *testing.T) {
	now := time.Now()
	snap := model.TimeSnap{}
	kind, recommend := Annotate(snap, now, nil)
	assert.Equal(t, model.TimingWallClock, kind)
	assert.True(t, recommend)
}
