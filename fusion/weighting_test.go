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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestNewWeightFormulaDefaultsWhenEmpty(t *testing.T) {
	f, err := NewWeightFormula("")
	require.NoError(t, err)
	w, err := f.Weight(model.ClockOffsetMeasurement{UncertaintyMs: 1.0, QualityGrade: model.GradeA, SNRdB: 30})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w, 1e-9)
}

func TestWeightGradeXYieldsZero(t *testing.T) {
	f, err := NewWeightFormula("")
	require.NoError(t, err)
	w, err := f.Weight(model.ClockOffsetMeasurement{UncertaintyMs: 1.0, QualityGrade: model.GradeX, SNRdB: 30})
	require.NoError(t, err)
	assert.Equal(t, 0.0, w)
}

func TestWeightHigherUncertaintyLowersWeight(t *testing.T) {
	f, err := NewWeightFormula("")
	require.NoError(t, err)
	tight, err := f.Weight(model.ClockOffsetMeasurement{UncertaintyMs: 0.5, QualityGrade: model.GradeB, SNRdB: 25})
	require.NoError(t, err)
	loose, err := f.Weight(model.ClockOffsetMeasurement{UncertaintyMs: 5.0, QualityGrade: model.GradeB, SNRdB: 25})
	require.NoError(t, err)
	assert.Greater(t, tight, loose)
}

func TestNewWeightFormulaRejectsInvalidSyntax(t *testing.T) {
	_, err := NewWeightFormula("(1 +")
	assert.Error(t, err)
}
