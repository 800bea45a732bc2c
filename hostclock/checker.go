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

// Package hostclock reports the local system's own time-sync quality
// (synced/stratum/offset) so the quality annotator (spec section 4.9)
// can fall back to NTP_SYNCED when no fresh tone anchor is available.
// It is a thin, single-purpose client — it never disciplines or steps
// the host clock, only reads its reported status.
package hostclock

import "time"

// Checker reports the host's current time-sync status.
type Checker interface {
	Check() (Status, error)
}

// Status mirrors model.HostClockSample but keeps hostclock free of an
// import on model so it stays reusable outside this project.
type Status struct {
	Synced   bool
	Stratum  int
	OffsetMs float64
	Source   string
	SampledAt time.Time
}

// UnsyncedStratum is chrony's sentinel value for "not synchronized".
// A checker must always treat it as unusable regardless of the
// numeric offset reported alongside it — this was an open question in
// the distilled specification, resolved here in favor of the safer
// reading (spec section 9).
const UnsyncedStratum = 16
