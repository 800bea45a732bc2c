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

// Package stationdb holds the fixed geodetic data the solver needs:
// transmitter locations and the operator's configured receiver
// location.
package stationdb

import (
	"fmt"

	"github.com/mijahauan/signal-recorder-sub008/model"
	"github.com/mijahauan/signal-recorder-sub008/solver"
)

// Locations holds each station's published transmitter site.
var Locations = map[model.Station]solver.GeoPoint{
	model.StationWWV:  {LatDeg: 40.6799, LonDeg: -105.0481},  // Fort Collins, CO
	model.StationWWVH: {LatDeg: 21.9875, LonDeg: -159.7644},  // Kauai, HI
	model.StationCHU:  {LatDeg: 45.2957, LonDeg: -75.7558},   // Ottawa, ON
}

// Location returns a station's transmitter site, erroring for an
// unrecognized station rather than silently defaulting to the origin.
func Location(s model.Station) (solver.GeoPoint, error) {
	p, ok := Locations[s]
	if !ok {
		return solver.GeoPoint{}, fmt.Errorf("stationdb: no known location for station %q", s)
	}
	return p, nil
}
