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

package model

import "errors"

// The error kinds below are the closed taxonomy of spec section 7.
// Each is a sentinel that call sites attach with fmt.Errorf("...: %w",
// ErrTransient) so a caller anywhere in the pipeline can classify a
// failure with errors.Is without depending on its message text.
var (
	// ErrTransient covers recoverable I/O: a dropped socket read, a
	// momentarily full archive write queue. The caller should retry.
	ErrTransient = errors.New("transient I/O error")

	// ErrProtocol covers malformed or unexpected data-plane input: an
	// RTP payload of the wrong size for its declared encoding, an
	// archive record with a bad length prefix.
	ErrProtocol = errors.New("data-plane protocol error")

	// ErrTimelineRegression covers a sample, minute, or RTP timestamp
	// that moves backward relative to what has already been committed
	// (testable property 1). It is never silently absorbed.
	ErrTimelineRegression = errors.New("timeline regression")

	// ErrDSPFailure covers a detector or solver that could not
	// produce a usable result for a minute (no tone found, solver
	// did not converge). The pipeline still emits a row, with
	// UncertaintySentinelMs standing in for the missing number.
	ErrDSPFailure = errors.New("DSP stage failed to produce a result")

	// ErrStateCorrupt covers a persisted convergence snapshot or
	// archive index that failed validation on load.
	ErrStateCorrupt = errors.New("persisted state failed validation")

	// ErrFatal covers conditions the supervisor cannot route around:
	// exhausted restart backoff, a channel config that never
	// resolves to a live source.
	ErrFatal = errors.New("fatal error")
)

// Kind returns the broad taxonomy member err ultimately wraps, or
// ErrFatal if err matches none of the known kinds — callers that log
// or count by kind should never see a bucket-less error.
func Kind(err error) error {
	for _, k := range []error{ErrTransient, ErrProtocol, ErrTimelineRegression, ErrDSPFailure, ErrStateCorrupt, ErrFatal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrFatal
}
