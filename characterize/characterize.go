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

package characterize

import (
	"github.com/mijahauan/signal-recorder-sub008/dsp"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Characterize runs every Step-2 evidence stream over one MinuteFrame
// and assembles their outputs into a ChannelCharacterization (spec
// section 4.5).
func Characterize(mf model.MinuteFrame, minuteOfHour int) model.ChannelCharacterization {
	var c model.ChannelCharacterization

	if model.IsCHU(mf.Channel.FrequencyHz) {
		c.CHUFrames = decodeCHUFrames(mf.Samples)
	} else {
		c.WWVBCD = CorrelateBCD(mf.Samples)
		if model.CarriesWWVH(mf.Channel.FrequencyHz) {
			wwvRef := dsp.QuadratureReference(BCDSubcarrierHz, model.SampleRateHF, len(mf.Samples))
			wwvhRef := dsp.QuadratureReference(BCDSubcarrierHz, model.SampleRateHF, len(mf.Samples))
			if wwvAmp, wwvhAmp, err := SeparateOverlappingTones(mf.Samples, wwvRef, wwvhRef); err == nil {
				c.WWVBCD.Amplitude = wwvAmp
				c.WWVHBCD.Amplitude = wwvhAmp
			}
			c.DifferentialDelayMs = c.WWVHBCD.PeakLagMs - c.WWVBCD.PeakLagMs
		}
	}

	dopplerMean, dopplerStd, series := DopplerSeries(mf.Samples, 1000.0)
	c.DopplerMeanHz = dopplerMean
	c.DopplerStdHz = dopplerStd
	c.CoherenceTimeSec = CoherenceTime(series, 2.0)
	c.MaxCoherentWindowSec = c.CoherenceTimeSec

	c.HarmonicRatio1000to500, c.HarmonicRatio1200to600, c.IntermodRatio400to700 = HarmonicRatios(mf.Samples)

	c.GroundTruthStation = GroundTruthForMinute(minuteOfHour)
	c.GroundTruthVotes = VoteStationIdentity(c, c.GroundTruthStation)
	c.DominantStation = DominantStation(c.GroundTruthVotes)

	return c
}

func decodeCHUFrames(samples []model.IQSample) []model.CHUFrame {
	secondSamples := model.SampleRateHF
	var frames []model.CHUFrame
	for _, label := range []string{"A", "B"} {
		offset := 0
		if label == "B" {
			offset = len(samples) / 2
		}
		end := offset + secondSamples
		if end > len(samples) {
			continue
		}
		if frame, err := DecodeFSKFrame(samples[offset:end], label); err == nil {
			frames = append(frames, frame)
		}
	}
	return frames
}
