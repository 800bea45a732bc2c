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

// Package calibrate implements the three-phase adaptive calibrator of
// spec section 4.10, whose search half-width (SearchWindowMs) narrows
// as a channel's lock quality improves. The tone detector does not
// read that width.
package calibrate

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Phase is the calibrator's own state machine, distinct from (but
// driven by) convergence.Accumulator's ConvergenceState.
type Phase string

const (
	PhaseBootstrap Phase = "BOOTSTRAP"
	PhaseCalibrated Phase = "CALIBRATED"
	PhaseVerified  Phase = "VERIFIED"
)

const (
	bootstrapMinMinutes = 3
	bootstrapMaxMinutes = 5
	bootstrapSearchMs   = 500.0
	calibratedSearchMs  = 5.0
	intraStationToleranceMs = 5.0
	interStationSpreadMs    = 20.0
	demoteAfterFailures     = 5
)

// State is a channel's persisted calibration state.
type State struct {
	Phase          Phase
	MinutesObserved int
	ConsecutiveFailures int
}

// SearchWindowMs returns the search half-width in milliseconds for s's
// phase (spec section 4.4/4.10): 500 in BOOTSTRAP, 5 otherwise. The
// tone detector does not read it; the recorder compares each minute's
// uncertainty against it.
func (s State) SearchWindowMs() float64 {
	switch s.Phase {
	case PhaseBootstrap:
		return bootstrapSearchMs
	default:
		return calibratedSearchMs
	}
}

// Observe advances the calibrator's phase given whether this minute's
// detection met the bootstrap acceptance bar (SNR > 15dB, confidence
// > 0.7) and, once calibrated, whether it stayed within
// intraStationToleranceMs of the expected sample position.
func (s State) Observe(detectionOK bool, withinTolerance bool) State {
	next := s
	switch s.Phase {
	case PhaseBootstrap:
		if detectionOK {
			next.MinutesObserved++
		}
		if next.MinutesObserved >= bootstrapMinMinutes {
			next.Phase = PhaseCalibrated
			next.ConsecutiveFailures = 0
		}
	case PhaseCalibrated, PhaseVerified:
		if !detectionOK || !withinTolerance {
			next.ConsecutiveFailures++
			if next.ConsecutiveFailures >= demoteAfterFailures {
				log.WithField("phase", s.Phase).Warn("calibrate: repeated failures, returning to BOOTSTRAP")
				next = State{Phase: PhaseBootstrap}
			}
		} else {
			next.ConsecutiveFailures = 0
		}
	}
	return next
}

// PromoteToVerified upgrades a CALIBRATED channel once BCD/FSK
// cross-check confirms sub-ms agreement (spec section 4.10's optional
// VERIFIED phase).
func (s State) PromoteToVerified() State {
	if s.Phase == PhaseCalibrated {
		s.Phase = PhaseVerified
	}
	return s
}

// Save persists s atomically via write-temp-then-rename.
func Save(path string, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("calibrate: marshaling state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing calibration state: %v", model.ErrTransient, err)
	}
	return os.Rename(tmp, path)
}

// Load reads a previously saved calibration state, defaulting to a
// fresh BOOTSTRAP state if path does not exist.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{Phase: PhaseBootstrap}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("%w: reading calibration state: %v", model.ErrTransient, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("%w: parsing calibration state file: %v", model.ErrStateCorrupt, err)
	}
	return s, nil
}
