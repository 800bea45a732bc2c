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

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestGroundTruthForMinuteKnownExclusiveSlots(t *testing.T) {
	assert.Equal(t, model.StationWWV, GroundTruthForMinute(8))
	assert.Equal(t, model.StationWWVH, GroundTruthForMinute(9))
	assert.Equal(t, model.StationWWV, GroundTruthForMinute(14))
	assert.Equal(t, model.StationWWVH, GroundTruthForMinute(29))
}

func TestGroundTruthForMinuteUnknownForOrdinaryMinute(t *testing.T) {
	assert.Equal(t, model.StationUnknown, GroundTruthForMinute(3))
}

func TestVoteStationIdentityUsesGroundTruthOutright(t *testing.T) {
	c := model.ChannelCharacterization{
		WWVBCD:  model.BCDCorrelation{Amplitude: 0.1},
		WWVHBCD: model.BCDCorrelation{Amplitude: 0.9},
	}
	votes := VoteStationIdentity(c, model.StationWWV)
	assert.Equal(t, map[model.Station]float64{model.StationWWV: 1.0}, votes)
}

func TestVoteStationIdentityBlendsBCDAmplitudesWithoutGroundTruth(t *testing.T) {
	c := model.ChannelCharacterization{
		WWVBCD:  model.BCDCorrelation{Amplitude: 3.0},
		WWVHBCD: model.BCDCorrelation{Amplitude: 1.0},
	}
	votes := VoteStationIdentity(c, model.StationUnknown)
	assert.InDelta(t, 0.75, votes[model.StationWWV], 1e-9)
	assert.InDelta(t, 0.25, votes[model.StationWWVH], 1e-9)
}

func TestVoteStationIdentityEmptyWhenNoAmplitudeAndNoGroundTruth(t *testing.T) {
	votes := VoteStationIdentity(model.ChannelCharacterization{}, model.StationUnknown)
	assert.Empty(t, votes)
}

func TestDominantStationPicksHighestVote(t *testing.T) {
	votes := map[model.Station]float64{model.StationWWV: 0.3, model.StationWWVH: 0.7}
	assert.Equal(t, model.StationWWVH, DominantStation(votes))
}

func TestDominantStationUnknownOnEmptyVotes(t *testing.T) {
	assert.Equal(t, model.StationUnknown, DominantStation(nil))
}
