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

package stationdb

import "github.com/mijahauan/signal-recorder-sub008/model"

// WWVFrequenciesHz are WWV/WWVH's published shortwave carriers; CHU's
// three carriers are exposed via model.IsCHU.
var WWVFrequenciesHz = []uint64{2_500_000, 5_000_000, 10_000_000, 15_000_000, 20_000_000, 25_000_000}

// StationForFrequency returns the best-guess station family for a
// channel's carrier, used before per-minute characterization has run
// (e.g. to pick which tone detector reference to build).
func StationForFrequency(hz uint64) model.Station {
	if model.IsCHU(hz) {
		return model.StationCHU
	}
	for _, f := range WWVFrequenciesHz {
		if f == hz {
			return model.StationWWV
		}
	}
	return model.StationUnknown
}
