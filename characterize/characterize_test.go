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

func TestCharacterizeDecodesCHUFramesForACHUChannel(t *testing.T) {
	mf := model.MinuteFrame{
		Channel: model.Channel{FrequencyHz: 3_330_000, Description: "CHU 3.33 MHz"},
		Samples: genRealTone(chuMarkHz, model.SampleRateHF),
	}
	c := Characterize(mf, 5)
	require.NotEmpty(t, c.CHUFrames)
	assert.Empty(t, c.WWVBCD.Amplitude, "a CHU channel carries no BCD subcarrier evidence")
}

func TestCharacterizeComputesBCDForANonCHUChannel(t *testing.T) {
	mf := model.MinuteFrame{
		Channel: model.Channel{FrequencyHz: 20_000_000, Description: "WWV 20 MHz"},
		Samples: genQuadratureTone(BCDSubcarrierHz, 24000),
	}
	c := Characterize(mf, 5)
	assert.Nil(t, c.CHUFrames)
	assert.Greater(t, c.WWVBCD.Amplitude, 0.0)
}

func TestCharacterizeSetsGroundTruthAndDominantStationForAnExclusiveMinute(t *testing.T) {
	mf := model.MinuteFrame{
		Channel: model.Channel{FrequencyHz: 20_000_000, Description: "WWV 20 MHz"},
		Samples: genQuadratureTone(BCDSubcarrierHz, 24000),
	}
	c := Characterize(mf, 8) // minute 8 is WWV-exclusive
	assert.Equal(t, model.StationWWV, c.GroundTruthStation)
	assert.Equal(t, model.StationWWV, c.DominantStation)
}

func TestCharacterizeIsIdempotentForTheSameMinuteFrame(t *testing.T) {
	mf := model.MinuteFrame{
		Channel: model.Channel{FrequencyHz: 20_000_000, Description: "WWV 20 MHz"},
		Samples: genQuadratureTone(BCDSubcarrierHz, 24000),
	}

	first := Characterize(mf, 20)
	second := Characterize(mf, 20)

	assert.Equal(t, first, second)
}
