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

// Package convergence implements the per-(station, frequency) lock
// state machine of spec section 4.7: a running mean/variance via
// welford, transitioning ACQUIRING -> CONVERGING -> LOCKED ->
// REACQUIRE, with atomic on-disk persistence so a restarted recorder
// resumes rather than reacquires.
package convergence

import (
	"math"
	"sync"
	"time"

	"github.com/eclesh/welford"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

const (
	convergingThreshold = 10
	lockedMinCount      = 30
	lockedStdErrMs      = 1.0
	anomalySigma        = 3.0
	reacquireAfterAnomalies = 5
)

// Accumulator holds one (station, frequency)'s running statistics and
// state. Every method locks an internal mutex, so concurrent calls are
// safe; spec section 4.7 scopes convergence per station not per
// channel-minute.
type Accumulator struct {
	mu sync.Mutex

	station     model.Station
	frequencyHz uint64

	stats   *welford.Stats
	count   int64
	state   model.ConvergenceState
	lockedMean float64
	anomalies int
	lastUpdate time.Time
}

// NewAccumulator starts a fresh ACQUIRING accumulator.
func NewAccumulator(station model.Station, frequencyHz uint64) *Accumulator {
	return &Accumulator{
		station:     station,
		frequencyHz: frequencyHz,
		stats:       welford.New(),
		state:       model.StateAcquiring,
	}
}

// FromSnapshot restores an Accumulator from a persisted
// ConvergenceSnapshot (spec section 4.7 persistence). welford does not
// expose a way to seed raw sum/sumsq from a mean/stddev/count triple,
// so a restored accumulator replays n synthetic samples alternating
// between the snapshot's mean plus and minus its standard deviation to
// reconstruct an equivalent running count, mean and variance; any
// microscopic error this introduces is washed out by the next real
// update or two.
func FromSnapshot(snap model.ConvergenceSnapshot) *Accumulator {
	a := &Accumulator{
		station:     snap.Station,
		frequencyHz: 0,
		stats:       welford.New(),
		state:       snap.State,
		lockedMean:  snap.Mean,
		lastUpdate:  time.Unix(0, snap.LastUpdate),
	}
	for i := int64(0); i < snap.Count; i++ {
		v := snap.Mean + snap.StdDev
		if i%2 == 1 {
			v = snap.Mean - snap.StdDev
		}
		a.stats.Add(v)
	}
	a.count = snap.Count
	return a
}

// Update feeds one new D_clock measurement (in ms) into the
// accumulator and returns the residual to report this minute: the raw
// value while not LOCKED, or value-lockedMean once LOCKED (spec
// section 4.7: "residuals = raw − locked_mean are reported").
func (a *Accumulator) Update(valueMs float64, at time.Time) (residual float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastUpdate = at

	if a.state == model.StateLocked {
		residual = valueMs - a.lockedMean
		sigma := math.Sqrt(math.Max(a.stats.Variance(), 0))
		if math.Abs(residual) > anomalySigma*sigma {
			a.anomalies++
			if a.anomalies >= reacquireAfterAnomalies {
				a.reset()
			}
		} else {
			a.anomalies = 0
		}
		a.stats.Add(valueMs)
		a.count++
		return residual
	}

	a.stats.Add(valueMs)
	a.count++
	a.advanceState()
	return valueMs
}

func (a *Accumulator) advanceState() {
	n := a.count
	switch {
	case n < convergingThreshold:
		a.state = model.StateAcquiring
	case a.stdErr() < lockedStdErrMs && n >= lockedMinCount:
		a.state = model.StateLocked
		a.lockedMean = a.stats.Mean()
		a.anomalies = 0
	default:
		a.state = model.StateConverging
	}
}

func (a *Accumulator) stdErr() float64 {
	n := a.count
	if n == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(math.Max(a.stats.Variance(), 0)) / math.Sqrt(float64(n))
}

func (a *Accumulator) reset() {
	a.stats = welford.New()
	a.count = 0
	a.state = model.StateAcquiring
	a.anomalies = 0
	a.lockedMean = 0
}

// Snapshot captures the accumulator's current state for persistence.
func (a *Accumulator) Snapshot() model.ConvergenceSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	mean := a.stats.Mean()
	if a.state == model.StateLocked {
		mean = a.lockedMean
	}
	return model.ConvergenceSnapshot{
		Station:    a.station,
		State:      a.state,
		Mean:       mean,
		StdDev:     math.Sqrt(math.Max(a.stats.Variance(), 0)),
		Count:      a.count,
		LastUpdate: a.lastUpdate.UnixNano(),
	}
}

// State returns the accumulator's current convergence state.
func (a *Accumulator) State() model.ConvergenceState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
