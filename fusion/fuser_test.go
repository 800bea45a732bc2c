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

func TestFuseWithNoMeasurementsReportsNoData(t *testing.T) {
	f, err := NewFuser("")
	require.NoError(t, err)
	got := f.Fuse(100, nil)
	assert.Equal(t, model.AgreementNoData, got.Agreement)
}

func TestFuseSingleStationReportsSingleSource(t *testing.T) {
	f, err := NewFuser("")
	require.NoError(t, err)
	measurements := []model.ClockOffsetMeasurement{
		{Station: model.StationWWV, DClockMs: 1.0, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
		{Station: model.StationWWV, DClockMs: 1.2, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
	}
	got := f.Fuse(100, measurements)
	assert.Equal(t, model.AgreementSingleSource, got.Agreement)
	assert.InDelta(t, 1.1, got.DClockMs, 0.01)
}

// TestFuseMultiStationLockedWhenStationsAgree is testable property 7:
// cross-station sanity — closely agreeing stations classify as LOCKED.
func TestFuseMultiStationLockedWhenStationsAgree(t *testing.T) {
	f, err := NewFuser("")
	require.NoError(t, err)
	measurements := []model.ClockOffsetMeasurement{
		{Station: model.StationWWV, DClockMs: 1.00, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
		{Station: model.StationCHU, DClockMs: 1.10, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
	}
	got := f.Fuse(100, measurements)
	assert.Equal(t, model.AgreementLocked, got.Agreement)
}

func TestFuseMultiStationDivergentWhenStationsDisagree(t *testing.T) {
	f, err := NewFuser("")
	require.NoError(t, err)
	measurements := []model.ClockOffsetMeasurement{
		{Station: model.StationWWV, DClockMs: 0.0, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
		{Station: model.StationCHU, DClockMs: 10.0, UncertaintyMs: 0.2, QualityGrade: model.GradeA, SNRdB: 30},
	}
	got := f.Fuse(100, measurements)
	assert.Equal(t, model.AgreementDivergent, got.Agreement)
}

func TestFuseSkipsGradeXZeroWeightSources(t *testing.T) {
	f, err := NewFuser("")
	require.NoError(t, err)
	measurements := []model.ClockOffsetMeasurement{
		{Station: model.StationWWV, DClockMs: 99.0, UncertaintyMs: 0.2, QualityGrade: model.GradeX, SNRdB: 5},
	}
	got := f.Fuse(100, measurements)
	assert.Equal(t, model.AgreementNoData, got.Agreement)
}
