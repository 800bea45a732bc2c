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

package minute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijahauan/signal-recorder-sub008/ingest"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

func testChannel() model.Channel {
	return model.Channel{SSRC: 1, FrequencyHz: 10_000_000, Description: "WWV 10 MHz"}
}

// TestSamplerEmitsCompleteMinuteForFullRun is testable property 2 (and
// part of 5): a full minute of contiguous samples with no
// discontinuity reports DataQualityComplete.
func TestSamplerEmitsCompleteMinuteForFullRun(t *testing.T) {
	s := NewSampler(testChannel(), 20*time.Millisecond, 0)
	in := make(chan ingest.Item, 2)

	full := make([]model.IQSample, model.SamplesPerMinute)
	in <- ingest.Item{Samples: full}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go s.Run(ctx, in)

	select {
	case mf := <-s.Out():
		assert.Equal(t, model.DataQualityComplete, mf.DataQuality)
		assert.Len(t, mf.Samples, model.SamplesPerMinute)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for minute frame")
	}
}

// TestSamplerAccountsDiscontinuitiesTowardCompleteness feeds a
// NETWORK_GAP discontinuity alongside a full minute of samples and
// checks that the gap is carried into the emitted frame and grades it
// minor_gaps.
func TestSamplerAccountsDiscontinuitiesTowardCompleteness(t *testing.T) {
	s := NewSampler(testChannel(), 20*time.Millisecond, 0.5)
	in := make(chan ingest.Item, 2)

	full := make([]model.IQSample, model.SamplesPerMinute)
	gap := model.Discontinuity{StartRTP: uint32(model.SamplesPerMinute), LengthSamples: 4000, Kind: model.NetworkGap}
	in <- ingest.Item{Discontinuity: &gap}
	in <- ingest.Item{Samples: full}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go s.Run(ctx, in)

	select {
	case mf := <-s.Out():
		require.Len(t, mf.Discontinuities, 1)
		assert.Equal(t, model.DataQualityMinorGaps, mf.DataQuality)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for minute frame")
	}
}

func TestSamplerMarksUnusableBelowCompletenessFloor(t *testing.T) {
	s := NewSampler(testChannel(), 20*time.Millisecond, 0.9)
	in := make(chan ingest.Item, 1)

	sparse := make([]model.IQSample, model.SamplesPerMinute/10)
	in <- ingest.Item{Samples: sparse}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go s.Run(ctx, in)

	select {
	case mf := <-s.Out():
		assert.Equal(t, model.DataQualityUnusable, mf.DataQuality)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for minute frame")
	}
}
