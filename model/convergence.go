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

// ConvergenceState is the per-station lock state machine of spec
// section 4.7.
type ConvergenceState string

const (
	StateAcquiring  ConvergenceState = "ACQUIRING"
	StateConverging ConvergenceState = "CONVERGING"
	StateLocked     ConvergenceState = "LOCKED"
	StateReacquire  ConvergenceState = "REACQUIRE"
)

// ConvergenceSnapshot is the per-station running estimate persisted to
// disk (spec section 4.7, 6) so a restarted recorder resumes its
// convergence state instead of reacquiring from scratch.
type ConvergenceSnapshot struct {
	Station    Station
	State      ConvergenceState
	Mean       float64
	StdDev     float64
	Count      int64
	LastUpdate int64 // unix nanoseconds
}

// FusionAgreement is the system-wide cross-broadcast classification of
// spec section 4.8.
type FusionAgreement string

const (
	AgreementNoData     FusionAgreement = "NO_DATA"
	AgreementSingleSource FusionAgreement = "SINGLE_SOURCE"
	AgreementLocked     FusionAgreement = "LOCKED"
	AgreementConverging FusionAgreement = "CONVERGING"
	AgreementDivergent  FusionAgreement = "DIVERGENT"
)

// FusedEstimate is the cross-broadcast D_clock estimate spec section
// 4.8 produces once per minute from the set of per-channel
// measurements that minute.
type FusedEstimate struct {
	MinuteBoundaryUTC int64 // unix nanoseconds
	DClockMs          float64
	UncertaintyMs     float64
	Agreement         FusionAgreement
	Contributors      []FusionContributor
}

// FusionContributor is one channel's weighted vote into a FusedEstimate.
type FusionContributor struct {
	Station     Station
	FrequencyMHz float64
	DClockMs    float64
	Weight      float64
}
