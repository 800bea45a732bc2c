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

package fusion

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// stationGroup accumulates one station's weighted measurements for a
// minute, ahead of the meta-weighting across stations (spec section
// 4.8: "Per-station weighted mean + variance, then a meta-weighted
// mean across stations").
type stationGroup struct {
	sumW      float64
	sumWX     float64
	sumWX2    float64
	n         int
	contributors []model.FusionContributor
}

// Fuser combines per-channel ClockOffsetMeasurements into a
// FusedEstimate once per minute.
type Fuser struct {
	formula *WeightFormula
}

// NewFuser constructs a Fuser with the given weighting formula (empty
// string selects DefaultWeightFormula).
func NewFuser(formula string) (*Fuser, error) {
	f, err := NewWeightFormula(formula)
	if err != nil {
		return nil, err
	}
	return &Fuser{formula: f}, nil
}

// Fuse produces the FusedEstimate for minuteBoundaryUTC from every
// channel's most recent measurement for that minute.
func (fu *Fuser) Fuse(minuteBoundaryUTC int64, measurements []model.ClockOffsetMeasurement) model.FusedEstimate {
	groups := map[model.Station]*stationGroup{}
	for _, m := range measurements {
		w, err := fu.formula.Weight(m)
		if err != nil {
			log.WithError(err).Warn("fusion: weight formula failed, skipping source")
			continue
		}
		if w <= 0 {
			continue
		}
		g, ok := groups[m.Station]
		if !ok {
			g = &stationGroup{}
			groups[m.Station] = g
		}
		g.sumW += w
		g.sumWX += w * m.DClockMs
		g.sumWX2 += w * m.DClockMs * m.DClockMs
		g.n++
		g.contributors = append(g.contributors, model.FusionContributor{
			Station: m.Station, FrequencyMHz: m.FrequencyMHz, DClockMs: m.DClockMs, Weight: w,
		})
	}

	if len(groups) == 0 {
		return model.FusedEstimate{MinuteBoundaryUTC: minuteBoundaryUTC, Agreement: model.AgreementNoData}
	}

	type stationMean struct {
		station model.Station
		mean    float64
		uncertainty float64
		nChannels int
	}
	var means []stationMean
	var allContributors []model.FusionContributor
	for s, g := range groups {
		mean := g.sumWX / g.sumW
		variance := g.sumWX2/g.sumW - mean*mean
		if variance < 0 {
			variance = 0
		}
		uncertainty := math.Sqrt(variance) / math.Sqrt(float64(maxInt(g.n, 1)))
		means = append(means, stationMean{station: s, mean: mean, uncertainty: uncertainty, nChannels: g.n})
		allContributors = append(allContributors, g.contributors...)
	}

	if len(means) == 1 {
		return model.FusedEstimate{
			MinuteBoundaryUTC: minuteBoundaryUTC,
			DClockMs:          means[0].mean,
			UncertaintyMs:     means[0].uncertainty,
			Agreement:         model.AgreementSingleSource,
			Contributors:      allContributors,
		}
	}

	var sumMetaW, sumMetaWX float64
	minMean, maxMean := math.Inf(1), math.Inf(-1)
	for _, sm := range means {
		u := sm.uncertainty
		if u <= 0 {
			u = 0.001
		}
		w := float64(sm.nChannels) / u
		sumMetaW += w
		sumMetaWX += w * sm.mean
		if sm.mean < minMean {
			minMean = sm.mean
		}
		if sm.mean > maxMean {
			maxMean = sm.mean
		}
	}
	fusedMean := sumMetaWX / sumMetaW
	agreementSpread := maxMean - minMean

	var agreement model.FusionAgreement
	switch {
	case agreementSpread < 1.0:
		agreement = model.AgreementLocked
	case agreementSpread < 3.0:
		agreement = model.AgreementConverging
	default:
		agreement = model.AgreementDivergent
	}

	return model.FusedEstimate{
		MinuteBoundaryUTC: minuteBoundaryUTC,
		DClockMs:          fusedMean,
		UncertaintyMs:     agreementSpread,
		Agreement:         agreement,
		Contributors:      allContributors,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
