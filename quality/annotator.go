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

// Package quality implements the timing-quality annotator of spec
// section 4.9: it classifies every emitted record's timing provenance
// so downstream consumers know which ones need reprocessing.
package quality

import (
	"time"

	"github.com/mijahauan/signal-recorder-sub008/hostclock"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

const (
	toneLockedMaxAge    = 5 * time.Minute
	interpolatedMaxAge  = time.Hour
	ntpSyncedMaxOffsetMs = 100.0
	ntpSyncedMaxStratum = 3
)

// Annotate classifies snap's provenance at instant `at`, consulting
// host as a fallback when the TimeSnap itself is not fresh enough
// (spec section 4.9's preference order). host may be nil when no
// hostclock.Checker is configured, in which case only TONE_LOCKED,
// INTERPOLATED and WALL_CLOCK are considered.
func Annotate(snap model.TimeSnap, at time.Time, host *hostclock.Status) (model.TimingQualityKind, bool) {
	age := at.Sub(time.Unix(0, snap.EstablishedAt))

	if age <= toneLockedMaxAge && snap.Confidence >= model.MinConfidence {
		return model.TimingToneLocked, false
	}
	if host != nil && host.Synced && host.OffsetMs < ntpSyncedMaxOffsetMs && host.Stratum <= ntpSyncedMaxStratum {
		return model.TimingNTPSynced, false
	}
	if age <= interpolatedMaxAge && snap.EstablishedAt != 0 {
		return model.TimingInterpolated, true
	}
	return model.TimingWallClock, true
}
