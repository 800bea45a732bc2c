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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestDecodeFSKFrameErrorsOnTooShortWindow(t *testing.T) {
	_, err := DecodeFSKFrame(genRealTone(chuMarkHz, 10), "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDSPFailure)
}

func TestDecodeFSKFrameDecodesAllMarkTonesAsSetBits(t *testing.T) {
	oneSecond := genRealTone(chuMarkHz, model.SampleRateHF)
	frame, err := DecodeFSKFrame(oneSecond, "A")
	require.NoError(t, err)

	assert.Equal(t, "A", frame.Label)
	assert.True(t, frame.TimeVerified)
	assert.Greater(t, frame.Confidence, 0.5)
	// every bit slot decoded mark (true), so every BCD-style field reads
	// back as all-ones for its bit width.
	assert.Equal(t, 511, frame.DayOfYear)  // 9 bits
	assert.Equal(t, 31, frame.Hour)        // 5 bits
	assert.Equal(t, 63, frame.Minute)      // 6 bits
	assert.Equal(t, 127, frame.Year)       // 7 bits
	assert.Equal(t, 15, frame.DUT1Deciseconds) // 4 bits
	assert.Equal(t, 63, frame.TAIMinusUTC) // 6 bits
}

func TestDecodeFSKFrameDecodesAllSpaceTonesAsClearBits(t *testing.T) {
	oneSecond := genRealTone(chuSpaceHz, model.SampleRateHF)
	frame, err := DecodeFSKFrame(oneSecond, "B")
	require.NoError(t, err)

	assert.Equal(t, "B", frame.Label)
	assert.Equal(t, 0, frame.DayOfYear)
	assert.Equal(t, 0, frame.Hour)
}
