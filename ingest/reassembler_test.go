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

package ingest

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// encodeFloat32Payload packs n unit-amplitude IQ samples the way a
// real RTP payload would carry them, so Reassembler.Push can decode
// them back out.
func encodeFloat32Payload(n int) []byte {
	buf := make([]byte, n*8)
	for i := 0; i < n; i++ {
		off := i * 8
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(i)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(-i)))
	}
	return buf
}

func testChannel() model.Channel {
	return model.Channel{SSRC: 42, FrequencyHz: 10_000_000, Description: "WWV 10 MHz"}
}

func TestPushEmitsSamplesInOrderForConsecutiveFrames(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	base := time.Now()
	for i := 0; i < 5; i++ {
		r.Push(model.RTPFrame{
			SSRC:      42,
			Sequence:  uint16(i),
			Timestamp: uint32(i * 4),
			Payload:   encodeFloat32Payload(4),
			Arrival:   base.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}

	for i := 0; i < 5; i++ {
		select {
		case item := <-r.Out():
			require.Nil(t, item.Discontinuity)
			require.Len(t, item.Samples, 4)
			assert.Equal(t, float32(0), item.Samples[0].I)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for item %d", i)
		}
	}
}

func TestPushEmitsNetworkGapOnceReorderWindowExpiresWithoutTheMissingFrame(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	now := time.Now()
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 0, Timestamp: 0, Payload: encodeFloat32Payload(4), Arrival: now})
	// sequence 1 never arrives; sequence 2 skips one frame's worth of
	// samples and is held in the reorder buffer rather than declared
	// lost outright, in case it was only reordered (scenario S3).
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 2, Timestamp: 8, Payload: encodeFloat32Payload(4), Arrival: now})

	first := requireItem(t, r)
	require.Nil(t, first.Discontinuity)

	// sequence 1 never shows up, so once reorderWindow (50ms) elapses
	// the watchdog (100ms tick) must declare the gap and drain sequence
	// 2's already-buffered samples.
	gap := requireItemWithin(t, r, time.Second)
	require.NotNil(t, gap.Discontinuity)
	assert.Equal(t, model.NetworkGap, gap.Discontinuity.Kind)
	assert.Equal(t, uint32(4), gap.Discontinuity.StartRTP)
	assert.Equal(t, uint32(4), gap.Discontinuity.LengthSamples)

	samples := requireItemWithin(t, r, time.Second)
	require.Nil(t, samples.Discontinuity)
	require.Len(t, samples.Samples, 4)
}

func TestPushEmitsSyncAdjustForLargeRTPJump(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	now := time.Now()
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 0, Timestamp: 0, Payload: encodeFloat32Payload(4), Arrival: now})
	requireItem(t, r) // the initial sample burst

	// a timestamp jump far beyond any plausible gap length (the SDR
	// clock reset or a receiver restart), forcing a full resync.
	farFuture := uint32(syncAdjustForwardSec*model.SampleRateHF + 100_000)
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 1, Timestamp: farFuture, Payload: encodeFloat32Payload(4), Arrival: now.Add(time.Second)})

	resync := requireItem(t, r)
	require.NotNil(t, resync.Discontinuity)
	assert.Equal(t, model.SyncAdjust, resync.Discontinuity.Kind)

	samples := requireItem(t, r)
	require.Nil(t, samples.Discontinuity)
}

func TestPushTreatsLargeSequenceGapAsNetworkGap(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	now := time.Now()
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 0, Timestamp: 0, Payload: encodeFloat32Payload(4), Arrival: now})
	requireItem(t, r)

	// sequence delta of 20 exceeds the 15-frame reorder-tolerance
	// window, so it must fall back to an immediate network gap rather
	// than waiting in the reorder buffer.
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 21, Timestamp: 4 + 20*4, Payload: encodeFloat32Payload(4), Arrival: now.Add(time.Second)})

	gap := requireItem(t, r)
	require.NotNil(t, gap.Discontinuity)
	assert.Equal(t, model.NetworkGap, gap.Discontinuity.Kind)
}

func TestPushRecoversAnAdjacentPairSwappedWithinTheReorderWindow(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	now := time.Now()
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 0, Timestamp: 0, Payload: encodeFloat32Payload(4), Arrival: now})
	requireItem(t, r)

	// sequence 2 arrives first (buffered, not yet emitted)...
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 2, Timestamp: 8, Payload: encodeFloat32Payload(4), Arrival: now})
	// ...then sequence 1 arrives a few ms later, well inside
	// reorderWindow: order is restored with no discontinuity at all
	// (spec section 8 scenario S3).
	r.Push(model.RTPFrame{SSRC: 42, Sequence: 1, Timestamp: 4, Payload: encodeFloat32Payload(4), Arrival: now.Add(5 * time.Millisecond)})

	seq1 := requireItem(t, r)
	require.Nil(t, seq1.Discontinuity)
	seq2 := requireItem(t, r)
	require.Nil(t, seq2.Discontinuity)

	select {
	case item := <-r.Out():
		t.Fatalf("unexpected extra item after the recovered pair: %+v", item)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestWatchdogEmitsSourceUnavailableAfterSilence(t *testing.T) {
	r := NewReassembler(testChannel(), model.EncodingFloat32)
	defer r.Close()

	r.Push(model.RTPFrame{SSRC: 42, Sequence: 0, Timestamp: 0, Payload: encodeFloat32Payload(4), Arrival: time.Now()})
	requireItem(t, r)

	select {
	case item := <-r.Out():
		require.NotNil(t, item.Discontinuity)
		assert.Equal(t, model.SourceUnavailable, item.Discontinuity.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SOURCE_UNAVAILABLE discontinuity")
	}
}

func requireItem(t *testing.T, r *Reassembler) Item {
	t.Helper()
	return requireItemWithin(t, r, time.Second)
}

func requireItemWithin(t *testing.T, r *Reassembler, d time.Duration) Item {
	t.Helper()
	select {
	case item := <-r.Out():
		return item
	case <-time.After(d):
		t.Fatal("timed out waiting for item")
		return Item{}
	}
}
