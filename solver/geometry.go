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

// Package solver implements Step 3 of the measurement pipeline: for
// each candidate propagation mode it predicts a delay from geometry,
// scores it against the measured arrival delay with a Gaussian
// likelihood, and reports the best mode's D_clock with a propagated
// uncertainty and quality grade (spec section 4.6).
package solver

import (
	"math"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// EarthRadiusKm and SpeedOfLightKmPerMs are the constants the
// geometric delay calculation needs.
const (
	EarthRadiusKm       = 6371.0
	SpeedOfLightKmPerMs = 299.792458
	// IonosphereHeightKm is the nominal F-layer reflection height
	// used for multi-hop geometric delay (1E hops use
	// EIonosphereHeightKm instead).
	IonosphereHeightKm = 300.0
	EIonosphereHeightKm = 110.0
)

// GeoPoint is a station or receiver's geodetic location in degrees.
type GeoPoint struct {
	LatDeg float64
	LonDeg float64
}

// GreatCircleDistanceKm computes the great-circle distance between two
// points via the haversine formula.
func GreatCircleDistanceKm(a, b GeoPoint) float64 {
	lat1, lon1 := a.LatDeg*math.Pi/180, a.LonDeg*math.Pi/180
	lat2, lon2 := b.LatDeg*math.Pi/180, b.LonDeg*math.Pi/180
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// PredictedDelayMs returns the propagation delay in milliseconds
// geometry predicts for mode over a ground-distance groundKm,
// accounting for the slant path implied by hop count and layer
// height.
func PredictedDelayMs(mode model.PropagationMode, groundKm float64) float64 {
	hops := mode.HopCount()
	if hops == 0 {
		return groundKm / SpeedOfLightKmPerMs
	}
	height := IonosphereHeightKm
	if mode == model.Mode1E {
		height = EIonosphereHeightKm
	}
	perHopGroundKm := groundKm / float64(hops)
	slantKm := math.Hypot(perHopGroundKm/2, height) * 2
	return float64(hops) * slantKm / SpeedOfLightKmPerMs
}
