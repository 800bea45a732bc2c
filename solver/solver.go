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

package solver

import (
	"math"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Input bundles everything the solver needs for one channel-minute
// (spec section 4.6 inputs).
type Input struct {
	Detection       model.ToneDetection
	Characterization model.ChannelCharacterization
	Station         GeoPoint
	Receiver        GeoPoint
	MinuteBoundaryUTC int64 // unix nanoseconds
	SystemTimeAtArrival int64 // unix nanoseconds
	BaseUncertaintyMs float64
}

// modeLikelihood is one candidate mode's scored posterior.
type modeLikelihood struct {
	mode        model.PropagationMode
	predictedMs float64
	likelihood  float64
	prior       float64
}

// Solve runs the full Step-3 algorithm and returns a
// ClockOffsetMeasurement. It never returns an error and always
// computes an uncertainty; a detection below MinSNRdB is graded X. The
// UncertaintySentinelMs row for a minute with no usable detection comes
// from SolveFailed, per spec section 7's "emit, don't drop" failure
// semantics.
func Solve(in Input) model.ClockOffsetMeasurement {
	groundKm := GreatCircleDistanceKm(in.Station, in.Receiver)
	measuredDelayMs := measuredArrivalDelayMs(in)

	var best, second modeLikelihood
	for _, mode := range model.AllPropagationModes {
		predicted := PredictedDelayMs(mode, groundKm)
		modeSpread := modeSpreadMs(mode, in.Characterization)
		sigma2 := in.BaseUncertaintyMs*in.BaseUncertaintyMs + modeSpread*modeSpread
		lk := gaussianLikelihood(measuredDelayMs-predicted, sigma2)
		prior := modePrior(mode, in)
		cand := modeLikelihood{mode: mode, predictedMs: predicted, likelihood: lk, prior: prior}
		switch {
		case best.mode == "" || cand.likelihood*cand.prior > best.likelihood*best.prior:
			second = best
			best = cand
		case second.mode == "" || cand.likelihood*cand.prior > second.likelihood*second.prior:
			second = cand
		}
	}

	expectedUTCMs := float64(in.MinuteBoundaryUTC) / 1e6
	systemMs := float64(in.SystemTimeAtArrival) / 1e6
	dClockMs := systemMs - (expectedUTCMs - best.predictedMs)

	uncertaintyMs, reductions := propagateUncertainty(in)
	agreement := multiMethodAgreement(in, best, second, measuredDelayMs-best.predictedMs)
	grade := gradeQuality(in, reductions, agreement)

	return model.ClockOffsetMeasurement{
		MinuteBoundaryUTC:  in.MinuteBoundaryUTC,
		SystemTime:         in.SystemTimeAtArrival,
		DClockMs:           dClockMs,
		Station:            in.Detection.Station,
		FrequencyMHz:       float64(in.Detection.FrequencyHz) / 1e6,
		PropagationMode:    best.mode,
		NHops:              best.mode.HopCount(),
		PropagationDelayMs: best.predictedMs,
		Confidence:         best.likelihood * best.prior,
		UncertaintyMs:      uncertaintyMs,
		QualityGrade:       grade,
		SNRdB:              in.Detection.SNRdB,
	}
}

func measuredArrivalDelayMs(in Input) float64 {
	return float64(in.SystemTimeAtArrival-in.MinuteBoundaryUTC)/1e6 + in.Detection.TimingErrorMs
}

func gaussianLikelihood(residual, sigma2 float64) float64 {
	if sigma2 <= 0 {
		sigma2 = 1e-6
	}
	return math.Exp(-0.5 * residual * residual / sigma2)
}

// modeSpreadMs is each mode's intrinsic delay-spread contribution,
// wider for more hops and roughly tracking the channel's own
// BCD-derived delay spread (spec section 4.6 step 2).
func modeSpreadMs(mode model.PropagationMode, c model.ChannelCharacterization) float64 {
	base := 0.3 * float64(mode.HopCount()+1)
	return base + c.WWVBCD.DelaySpreadMs
}

// modePrior scores a mode from its hop count and FSS alone:
// exp(-|hops - 4*FSS|), so low hop counts are favored at low FSS and
// more hops become more probable as FSS grows (an unset FSS counts as
// 0.5). Carrier frequency and delay spread do not enter the prior;
// delay spread enters the likelihood through modeSpreadMs.
func modePrior(mode model.PropagationMode, in Input) float64 {
	hops := mode.HopCount()
	fss := in.Characterization.FSS
	if fss <= 0 {
		fss = 0.5
	}
	// hops grow more probable as fss (selectivity/absorption) grows.
	return math.Exp(-math.Abs(float64(hops) - fss*4))
}

// propagateUncertainty applies the reductions spec section 4.6 step 4
// lists and returns the final uncertainty along with the fractional
// reduction actually applied (used by gradeQuality to detect
// ground-truth/CHU verification).
func propagateUncertainty(in Input) (uncertaintyMs float64, reduction float64) {
	u := in.BaseUncertaintyMs / math.Max(in.Detection.SNRdB/20.0, 0.1)
	u *= 1 + in.Characterization.WWVBCD.DelaySpreadMs/10.0
	u *= 1 + math.Abs(in.Characterization.DopplerStdHz)/5.0

	if in.Characterization.GroundTruthStation != model.StationUnknown {
		u *= 0.9
		reduction += 0.1
	}
	for _, f := range in.Characterization.CHUFrames {
		cut := 0.2 + 0.2*f.Confidence
		u *= 1 - cut
		reduction += cut
		if f.TimeVerified {
			u *= 0.9
			reduction += 0.1
		}
	}
	if u < 0 {
		u = 0
	}
	return u, reduction
}

// modeDominanceRatio is how decisively the winning propagation mode's
// posterior must exceed the runner-up's for the Bayesian mode selection
// to count as one of the two independent methods multiMethodAgreement
// requires (spec section 4.6 step 3).
const modeDominanceRatio = 10.0

// multiMethodAgreement implements spec section 4.6's third Grade-A
// disjunct for minutes with neither a ground-truth tone nor a
// time-verified CHU frame (e.g. scenario S1, a clean single-tone WWV
// minute): it requires two independent methods to agree rather than
// just one noisy measurement. Method 1 is the Bayesian propagation-mode
// posterior (Solve's mode loop) landing unambiguously on a single mode
// rather than splitting its confidence across several. Method 2 is the
// raw measured delay actually matching that mode's predicted delay to
// within the base timing uncertainty, i.e. the direct observation
// corroborates the mode the posterior picked. Both must hold, and only
// above the SNR floor grade B already requires, since a weak detection
// can fake either signal in isolation.
func multiMethodAgreement(in Input, best, second modeLikelihood, residualMs float64) bool {
	if in.Detection.SNRdB < 25 {
		return false
	}
	bestPosterior := best.likelihood * best.prior
	if bestPosterior <= 0 {
		return false
	}
	secondPosterior := second.likelihood * second.prior
	dominant := second.mode == "" || bestPosterior >= modeDominanceRatio*secondPosterior
	corroborated := math.Abs(residualMs) <= in.BaseUncertaintyMs
	return dominant && corroborated
}

func gradeQuality(in Input, reduction float64, agreement bool) model.QualityGrade {
	chuVerified := false
	for _, f := range in.Characterization.CHUFrames {
		if f.TimeVerified {
			chuVerified = true
		}
	}
	switch {
	case in.Characterization.GroundTruthStation != model.StationUnknown || chuVerified || agreement:
		return model.GradeA
	case in.Detection.SNRdB >= 25 && reduction < 0.05:
		return model.GradeB
	case in.Detection.SNRdB >= 18:
		return model.GradeC
	case in.Detection.SNRdB >= model.MinSNRdB:
		return model.GradeD
	default:
		return model.GradeX
	}
}

// SolveFailed returns the "no valid measurement" ClockOffsetMeasurement
// spec section 4.6 grade X and section 7's DSP-failure semantics call
// for: the pipeline still emits a row rather than dropping the minute.
func SolveFailed(station model.Station, frequencyHz uint64, minuteBoundaryUTC, systemTime int64) model.ClockOffsetMeasurement {
	return model.ClockOffsetMeasurement{
		MinuteBoundaryUTC: minuteBoundaryUTC,
		SystemTime:        systemTime,
		Station:           station,
		FrequencyMHz:      float64(frequencyHz) / 1e6,
		QualityGrade:      model.GradeX,
		UncertaintyMs:     model.UncertaintySentinelMs,
	}
}
