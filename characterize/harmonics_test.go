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
)

func TestHarmonicRatiosFavorsThePureToneOverItsSubharmonic(t *testing.T) {
	minute := genRealTone(1000.0, 4000)
	r1000, _, _ := HarmonicRatios(minute)
	assert.Greater(t, r1000, 1.0)
}

func TestFrequencySelectivityScoreIsZeroWithNoNoiseFloor(t *testing.T) {
	assert.Equal(t, 0.0, FrequencySelectivityScore(10, 0))
}

func TestFrequencySelectivityScoreIsBoundedInUnitInterval(t *testing.T) {
	score := FrequencySelectivityScore(1000, 1)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestFrequencySelectivityScoreIncreasesWithSignalToNoiseRatio(t *testing.T) {
	low := FrequencySelectivityScore(1, 1)
	high := FrequencySelectivityScore(100, 1)
	assert.Greater(t, high, low)
}
