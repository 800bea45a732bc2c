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
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Item is one output unit of a Reassembler's stream: a contiguous run
// of samples, or a Discontinuity, never both (spec section 4.1).
type Item struct {
	Samples       []model.IQSample
	Discontinuity *model.Discontinuity
}

const (
	reorderWindow       = 50 * time.Millisecond
	sourceUnavailableAfter = time.Second
	syncAdjustForwardSec   = 10
)

// Reassembler holds one SSRC's sequencing state and turns arriving
// RTPFrames into an ordered stream of Items, classifying every break
// in the timeline exactly per spec section 4.1.
type Reassembler struct {
	channel model.Channel
	encoding model.Encoding

	mu sync.Mutex

	haveState     bool
	expectedSeq   uint16
	expectedRTP   uint32
	lastArrival   time.Time

	pending map[uint16]model.RTPFrame // reorder buffer, keyed by sequence
	reorderDeadline time.Time

	out chan Item

	watchdogStop chan struct{}
	watchdogDone chan struct{}
}

// NewReassembler constructs a Reassembler for one channel. The
// returned out channel delivers Items in RTP-timestamp order; the
// caller must drain it (the minute sampler / archive writer does so).
func NewReassembler(ch model.Channel, enc model.Encoding) *Reassembler {
	r := &Reassembler{
		channel:      ch,
		encoding:     enc,
		pending:      make(map[uint16]model.RTPFrame),
		out:          make(chan Item, 256),
		watchdogStop: make(chan struct{}),
		watchdogDone: make(chan struct{}),
	}
	go r.watchdog()
	return r
}

// Out returns the Reassembler's output stream.
func (r *Reassembler) Out() <-chan Item { return r.out }

// Close stops the watchdog goroutine, waits for it to fully exit, and
// only then closes the output channel. The watchdog can emit into out
// (SOURCE_UNAVAILABLE, a stale-reorder-buffer gap) right up until it
// observes watchdogStop, so closing out before it has actually
// returned would race a send against a closed channel.
func (r *Reassembler) Close() {
	close(r.watchdogStop)
	<-r.watchdogDone
	close(r.out)
}

func payloadSamples(encoding model.Encoding, payloadLen int) uint32 {
	switch encoding {
	case model.EncodingPCM16:
		return uint32(payloadLen / 4) // 2 bytes I + 2 bytes Q
	case model.EncodingFloat32:
		return uint32(payloadLen / 8) // 4 bytes I + 4 bytes Q
	default:
		return 0
	}
}

func decodePayload(encoding model.Encoding, payload []byte) []model.IQSample {
	n := payloadSamples(encoding, len(payload))
	samples := make([]model.IQSample, n)
	switch encoding {
	case model.EncodingPCM16:
		for i := uint32(0); i < n; i++ {
			off := i * 4
			iRaw := int16(binary.LittleEndian.Uint16(payload[off:]))
			qRaw := int16(binary.LittleEndian.Uint16(payload[off+2:]))
			samples[i] = model.IQSample{I: float32(iRaw) / 32768.0, Q: float32(qRaw) / 32768.0}
		}
	case model.EncodingFloat32:
		for i := uint32(0); i < n; i++ {
			off := i * 8
			iBits := binary.LittleEndian.Uint32(payload[off:])
			qBits := binary.LittleEndian.Uint32(payload[off+4:])
			samples[i] = model.IQSample{I: math.Float32frombits(iBits), Q: math.Float32frombits(qBits)}
		}
	}
	return samples
}

// Push feeds one received RTP frame into the reassembler. It must be
// called from the Receiver's single reading goroutine; internal state
// is additionally mutex-protected so the watchdog goroutine can safely
// inspect lastArrival concurrently.
func (r *Reassembler) Push(frame model.RTPFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := payloadSamples(r.encoding, len(frame.Payload))
	r.lastArrival = frame.Arrival

	if !r.haveState {
		r.haveState = true
		r.expectedSeq = frame.Sequence + 1
		r.expectedRTP = frame.Timestamp + n
		r.emitSamples(decodePayload(r.encoding, frame.Payload))
		return
	}

	seqDelta := int32(frame.Sequence) - int32(r.expectedSeq)
	rtpDelta := int64(frame.Timestamp) - int64(r.expectedRTP)

	switch {
	case frame.Sequence == r.expectedSeq && rtpDelta == 0:
		r.expectedSeq = frame.Sequence + 1
		r.expectedRTP = frame.Timestamp + n
		r.emitSamples(decodePayload(r.encoding, frame.Payload))
		r.drainReorderBuffer()

	case rtpDelta < -int64(syncAdjustForwardSec*model.SampleRateHF) || rtpDelta > int64(syncAdjustForwardSec*model.SampleRateHF):
		r.emitDiscontinuity(model.SyncAdjust, r.expectedRTP, 0, frame.Arrival)
		r.expectedSeq = frame.Sequence + 1
		r.expectedRTP = frame.Timestamp + n
		r.pending = make(map[uint16]model.RTPFrame)
		r.emitSamples(decodePayload(r.encoding, frame.Payload))

	case (seqDelta >= 1 && seqDelta <= 15) || seqDelta < 0:
		// Either a forward skip or a frame arriving behind the current
		// expected sequence: both are buffered and given reorderWindow
		// to resolve before a gap is declared, so a simple adjacent-pair
		// swap (spec section 8 scenario S3) never surfaces as a
		// discontinuity. flushStaleReorderBuffer promotes this to a
		// NETWORK_GAP only once the window actually expires.
		r.pending[frame.Sequence] = frame
		if r.reorderDeadline.IsZero() {
			r.reorderDeadline = frame.Arrival.Add(reorderWindow)
		}
		r.drainReorderBuffer()

	default:
		// seqDelta > 15: treat as an unrecoverable gap, same handling
		// as a lost-packet run but logged distinctly.
		log.WithFields(log.Fields{"ssrc": frame.SSRC, "seq_delta": seqDelta}).
			Warn("ingest: large sequence gap, treating as network gap")
		r.emitDiscontinuity(model.NetworkGap, r.expectedRTP, uint32(rtpDelta), frame.Arrival)
		r.expectedSeq = frame.Sequence + 1
		r.expectedRTP = frame.Timestamp + n
		r.emitSamples(decodePayload(r.encoding, frame.Payload))
	}
}

// tryFillFromReorderBuffer emits the next expected sequence number out
// of the reorder buffer if it has arrived, repeating while contiguous
// frames are available.
func (r *Reassembler) tryFillFromReorderBuffer() {
	for {
		f, ok := r.pending[r.expectedSeq]
		if !ok {
			return
		}
		delete(r.pending, r.expectedSeq)
		n := payloadSamples(r.encoding, len(f.Payload))
		r.expectedSeq = f.Sequence + 1
		r.expectedRTP = f.Timestamp + n
		r.emitSamples(decodePayload(r.encoding, f.Payload))
	}
}

func (r *Reassembler) drainReorderBuffer() {
	r.tryFillFromReorderBuffer()
	if len(r.pending) == 0 {
		r.reorderDeadline = time.Time{}
	}
}

// flushStaleReorderBuffer is called by the watchdog once the reorder
// window expires without the true gap-filling frame having arrived: a
// single NETWORK_GAP is emitted for whatever remains missing between
// expectedRTP and the lowest buffered frame, then that frame (and any
// later ones already buffered contiguously after it) are drained and
// emitted — only the genuinely lost samples before it are written off.
func (r *Reassembler) flushStaleReorderBuffer(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reorderDeadline.IsZero() || now.Before(r.reorderDeadline) || len(r.pending) == 0 {
		return
	}
	seqs := make([]uint16, 0, len(r.pending))
	for s := range r.pending {
		seqs = append(seqs, s)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	lowest := r.pending[seqs[0]]
	missing := uint32(int64(lowest.Timestamp) - int64(r.expectedRTP))
	r.emitDiscontinuity(model.NetworkGap, r.expectedRTP, missing, now)
	r.expectedSeq = lowest.Sequence
	r.expectedRTP = lowest.Timestamp
	r.reorderDeadline = time.Time{}
	r.tryFillFromReorderBuffer()
}

// watchdog polls for the two time-based conditions Push alone cannot
// detect: an expired reorder window and a source gone silent for more
// than a second (spec section 4.1).
func (r *Reassembler) watchdog() {
	defer close(r.watchdogDone)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	sourceDown := false
	for {
		select {
		case <-r.watchdogStop:
			return
		case now := <-ticker.C:
			r.flushStaleReorderBuffer(now)

			r.mu.Lock()
			silent := r.haveState && !r.lastArrival.IsZero() && now.Sub(r.lastArrival) > sourceUnavailableAfter
			r.mu.Unlock()
			if silent && !sourceDown {
				sourceDown = true
				r.emitDiscontinuity(model.SourceUnavailable, r.expectedRTP, 0, now)
			} else if !silent {
				sourceDown = false
			}
		}
	}
}

func (r *Reassembler) emitSamples(samples []model.IQSample) {
	if len(samples) == 0 {
		return
	}
	select {
	case r.out <- Item{Samples: samples}:
	default:
		log.WithField("channel", r.channel.SSRC).Warn("ingest: output queue full, dropping samples")
	}
}

func (r *Reassembler) emitDiscontinuity(kind model.DiscontinuityKind, startRTP uint32, length uint32, at time.Time) {
	d := model.Discontinuity{
		StartRTP:      startRTP,
		LengthSamples: length,
		Kind:          kind,
		WallInstant:   at.UnixNano(),
	}
	select {
	case r.out <- Item{Discontinuity: &d}:
	default:
		log.WithField("channel", r.channel.SSRC).Warn("ingest: output queue full, dropping discontinuity marker")
	}
}
