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

// Package fusion implements the cross-broadcast fuser of spec section
// 4.8: once per UTC minute it combines the most recent
// ClockOffsetMeasurement from every active channel into one
// FusedEstimate, weighting each source by its grade, SNR and
// uncertainty.
package fusion

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// DefaultWeightFormula reproduces spec section 4.8's default weighting
// exactly: w = (1/uncertainty_ms) * grade_weight * snr_weight. It is
// expressed with govaluate so an operator can override it in config
// without a code change.
const DefaultWeightFormula = "(1 / uncertainty_ms) * grade_weight * snr_weight"

var gradeWeights = map[model.QualityGrade]float64{
	model.GradeA: 1.0,
	model.GradeB: 0.7,
	model.GradeC: 0.4,
	model.GradeD: 0.15,
	model.GradeX: 0.0,
}

// WeightFormula wraps a compiled govaluate expression for the
// per-source weighting function.
type WeightFormula struct {
	expr *govaluate.EvaluableExpression
}

// NewWeightFormula compiles a weighting formula string.
func NewWeightFormula(formula string) (*WeightFormula, error) {
	if formula == "" {
		formula = DefaultWeightFormula
	}
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return nil, fmt.Errorf("fusion: parsing weight formula: %w", err)
	}
	return &WeightFormula{expr: expr}, nil
}

// Weight evaluates the formula for one measurement's grade, SNR and
// uncertainty, per spec section 4.8's snr_weight = max(0.1,
// snr_db/30) and grade_weight lookup table.
func (f *WeightFormula) Weight(m model.ClockOffsetMeasurement) (float64, error) {
	uncertainty := m.UncertaintyMs
	if uncertainty <= 0 {
		uncertainty = 0.001
	}
	snrWeight := math.Max(0.1, m.SNRdB/30.0)
	params := map[string]interface{}{
		"uncertainty_ms": uncertainty,
		"grade_weight":   gradeWeights[m.QualityGrade],
		"snr_weight":     snrWeight,
	}
	result, err := f.expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("fusion: evaluating weight formula: %w", err)
	}
	w, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("fusion: weight formula did not evaluate to a number")
	}
	if w < 0 {
		w = 0
	}
	return w, nil
}
