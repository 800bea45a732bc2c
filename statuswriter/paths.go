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

// Package statuswriter implements the filesystem layout and atomic
// publication rules of spec section 6 / 4.11 (C11): every status,
// CSV and archive path in the repository is built from the functions
// here, never hand-assembled by a caller, so writer and reader can
// never disagree on a path spelling — spec section 9 calls that the
// #1 consistency hazard.
package statuswriter

import (
	"path/filepath"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Layout roots every path under one data directory.
type Layout struct {
	DataRoot string
}

// RawArchiveDir is {data_root}/raw_archive/{CHANNEL}.
func (l Layout) RawArchiveDir(ch model.Channel) string {
	return filepath.Join(l.DataRoot, "raw_archive", ch.SanitizedDescription())
}

// ArchiveFilePath is {data_root}/raw_archive/{CHANNEL}/{YYYYMMDD}.bin.
func (l Layout) ArchiveFilePath(ch model.Channel, yyyymmdd string) string {
	return filepath.Join(l.RawArchiveDir(ch), yyyymmdd+".bin")
}

// ClockOffsetCSVPath is {data_root}/phase2/{CHANNEL}/clock_offset/clock_offset_series.csv.
func (l Layout) ClockOffsetCSVPath(ch model.Channel) string {
	return filepath.Join(l.DataRoot, "phase2", ch.SanitizedDescription(), "clock_offset", "clock_offset_series.csv")
}

// AnalyticsStatusPath is {data_root}/phase2/{CHANNEL}/status/analytics-service-status.json.
func (l Layout) AnalyticsStatusPath(ch model.Channel) string {
	return filepath.Join(l.DataRoot, "phase2", ch.SanitizedDescription(), "status", "analytics-service-status.json")
}

// ConvergenceStatePath is {data_root}/phase2/{CHANNEL}/status/convergence_state.json.
func (l Layout) ConvergenceStatePath(ch model.Channel) string {
	return filepath.Join(l.DataRoot, "phase2", ch.SanitizedDescription(), "status", "convergence_state.json")
}

// FusedDClockCSVPath is {data_root}/phase2/fusion/fused_d_clock.csv.
func (l Layout) FusedDClockCSVPath() string {
	return filepath.Join(l.DataRoot, "phase2", "fusion", "fused_d_clock.csv")
}

// StateDir is {data_root}/state, for calibration and misc per-channel state.
func (l Layout) StateDir() string {
	return filepath.Join(l.DataRoot, "state")
}

// StatusDir is {data_root}/status, for system-wide status files such
// as radiod-status.json.
func (l Layout) StatusDir() string {
	return filepath.Join(l.DataRoot, "status")
}

// LogsDir is {data_root}/logs.
func (l Layout) LogsDir() string {
	return filepath.Join(l.DataRoot, "logs")
}

// RadiodStatusPath is {data_root}/status/radiod-status.json.
func (l Layout) RadiodStatusPath() string {
	return filepath.Join(l.StatusDir(), "radiod-status.json")
}
