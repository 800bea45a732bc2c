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
	"github.com/mijahauan/signal-recorder-sub008/model"
)

// exclusiveMinutes lists the UTC minutes-of-hour this package treats
// as giving a ground-truth station identity (spec section 4.5
// evidence: "ground-truth exclusive-minute tones"): minutes 8 and 14
// map to WWV, minutes 9 and 29 to WWVH. No other minute is listed.
var exclusiveMinutes = map[int]model.Station{
	8:  model.StationWWV,
	9:  model.StationWWVH,
	14: model.StationWWV,
	29: model.StationWWVH,
}

// GroundTruthForMinute returns the station known to have exclusive
// airtime at minuteOfHour, or StationUnknown if that minute carries no
// such guarantee.
func GroundTruthForMinute(minuteOfHour int) model.Station {
	if s, ok := exclusiveMinutes[minuteOfHour]; ok {
		return s
	}
	return model.StationUnknown
}

// VoteStationIdentity combines all of a minute's evidence streams into
// a per-station confidence vote (spec section 4.5's "station-identity
// voting"): ground truth is an outright majority vote when present;
// otherwise BCD amplitude and harmonic ratios are blended.
func VoteStationIdentity(c model.ChannelCharacterization, groundTruth model.Station) map[model.Station]float64 {
	votes := map[model.Station]float64{}
	if groundTruth != model.StationUnknown {
		votes[groundTruth] = 1.0
		return votes
	}
	total := c.WWVBCD.Amplitude + c.WWVHBCD.Amplitude
	if total > 0 {
		votes[model.StationWWV] = c.WWVBCD.Amplitude / total
		votes[model.StationWWVH] = c.WWVHBCD.Amplitude / total
	}
	return votes
}

// DominantStation picks the highest-voted station from a vote map,
// returning StationUnknown on an empty map.
func DominantStation(votes map[model.Station]float64) model.Station {
	best := model.StationUnknown
	bestV := 0.0
	for s, v := range votes {
		if v > bestV {
			bestV = v
			best = s
		}
	}
	return best
}
