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

package model

// ToneDetection is the Step-1 (C4) output for a single detected second
// marker (spec section 3/4.4).
type ToneDetection struct {
	Station        Station
	FrequencyHz    uint64
	OnsetRTP       uint32
	TimingErrorMs  float64
	SNRdB          float64
	MarkerPowerdB  float64
	NoiseFloordB   float64
	PeakCorrelation float64
}

// CHUFrame is one decoded CHU Bell-103 FSK frame (A or B), including
// the single frame-wide confidence the Step-3 solver uses to scale its
// reduction (spec section 4.5/4.6 and SPEC_FULL supplemented feature
// 4).
type CHUFrame struct {
	Label           string // "A" or "B"
	DayOfYear       int
	Hour            int
	Minute          int
	Second          int
	Year            int
	DUT1Deciseconds int
	TAIMinusUTC     int
	Confidence      float64
	TimeVerified    bool // set when all 60 bit slots were decoded; stop-bit timing is not checked
}

// BCDCorrelation holds one station family's BCD subcarrier correlation
// result (spec section 4.5, evidence 2A).
type BCDCorrelation struct {
	Amplitude   float64
	PeakLagMs   float64
	DelaySpreadMs float64
}

// ChannelCharacterization is the Step-2 (C5) per-minute output,
// combining all evidence streams spec section 4.5 lists.
type ChannelCharacterization struct {
	WWVBCD          BCDCorrelation
	WWVHBCD         BCDCorrelation
	DifferentialDelayMs float64

	DopplerMeanHz float64
	DopplerStdHz  float64
	CoherenceTimeSec float64
	MaxCoherentWindowSec float64

	GroundTruthStation Station // StationUnknown if minute is not exclusive
	GroundTruthVotes   map[Station]float64

	CHUFrames []CHUFrame

	FSS float64 // frequency-selectivity score from minute 8/44 test signal

	HarmonicRatio1000to500 float64
	HarmonicRatio1200to600 float64
	IntermodRatio400to700  float64

	DominantStation Station
}

// PropagationMode is the discrete hop/layer label spec section 4.6 and
// the glossary define.
type PropagationMode string

const (
	ModeGround PropagationMode = "Ground"
	Mode1E     PropagationMode = "1E"
	Mode1F     PropagationMode = "1F"
	Mode2F     PropagationMode = "2F"
	Mode3F     PropagationMode = "3F"
	Mode4F     PropagationMode = "4F"
)

// AllPropagationModes lists the candidate set the solver evaluates, in
// the order spec section 4.6 step 1 names them.
var AllPropagationModes = []PropagationMode{ModeGround, Mode1E, Mode1F, Mode2F, Mode3F, Mode4F}

// HopCount returns how many ionospheric hops a mode implies.
func (m PropagationMode) HopCount() int {
	switch m {
	case ModeGround:
		return 0
	case Mode1E, Mode1F:
		return 1
	case Mode2F:
		return 2
	case Mode3F:
		return 3
	case Mode4F:
		return 4
	default:
		return -1
	}
}

// QualityGrade is the Step-3 (C6) confidence grade (spec section 3/4.6).
type QualityGrade string

const (
	GradeA QualityGrade = "A"
	GradeB QualityGrade = "B"
	GradeC QualityGrade = "C"
	GradeD QualityGrade = "D"
	GradeX QualityGrade = "X"
)

// UncertaintySentinelMs marks "no valid measurement" uncertainty per
// spec section 7's DSP-failure handling: the minute is still emitted,
// with this sentinel standing in for +Inf in a field that downstream
// CSV/JSON consumers expect to be a finite-looking number.
const UncertaintySentinelMs = 1e9

// ClockOffsetMeasurement is the per-minute, per-channel output of the
// full three-step pipeline (spec section 3), written as one CSV row
// (spec section 6).
type ClockOffsetMeasurement struct {
	MinuteBoundaryUTC   int64 // unix nanoseconds
	SystemTime          int64 // unix nanoseconds
	DClockMs            float64
	Station             Station
	FrequencyMHz        float64
	PropagationMode     PropagationMode
	NHops               int
	PropagationDelayMs  float64
	Confidence          float64
	UncertaintyMs       float64
	QualityGrade        QualityGrade
	SNRdB               float64

	ReprocessingRecommended bool
	TimingQuality           TimingQualityKind
}
