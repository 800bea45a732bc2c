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

// Package model holds the data types shared by every pipeline stage:
// the RTP/channel identity types of spec section 3, the measurement
// and status records each analytical engine produces, and the small
// closed error taxonomy of spec section 7. Keeping them in one leaf
// package avoids import cycles between ingest, archive, tone,
// characterize, solver, convergence and fusion.
package model

import (
	"strings"
)

// Station identifies a time-signal broadcaster.
type Station string

// Known stations. CHU is included even though it shares no frequency
// with WWV/WWVH; StationUnknown marks a minute whose dominant station
// vote did not reach quorum.
const (
	StationWWV     Station = "WWV"
	StationWWVH    Station = "WWVH"
	StationCHU     Station = "CHU"
	StationUnknown Station = "UNKNOWN"
)

// Channel is the persistent identity of one received broadcast: a
// single SSRC tied to one frequency for the lifetime of the process.
// ssrc is the primary key (spec section 3); Description must sanitize
// identically everywhere it is turned into a path component, which is
// why SanitizedDescription lives here rather than being reimplemented
// per caller.
type Channel struct {
	SSRC        uint32
	FrequencyHz uint64
	Description string
}

// SanitizedDescription is the single canonical function computing a
// directory-safe token from a Channel's description. Every writer and
// every reader must call this, never hand-roll their own strings
// .ReplaceAll — spec section 9 calls mismatched path spellings between
// writer and reader the #1 consistency hazard.
func (c Channel) SanitizedDescription() string {
	return SanitizeDescription(c.Description)
}

// SanitizeDescription replaces whitespace with underscores, the only
// transform the filesystem layout in spec section 6 requires ("CHANNEL
// is the stable descriptor with spaces replaced by underscores").
func SanitizeDescription(description string) string {
	return strings.Join(strings.Fields(description), "_")
}

// CarriesWWVH reports whether WWVH also transmits on this channel's
// frequency, per spec section 4.4's tone-detector policy: WWVH is
// transmitted only on 2.5, 5, 10 and 15 MHz.
func CarriesWWVH(frequencyHz uint64) bool {
	switch frequencyHz {
	case 2_500_000, 5_000_000, 10_000_000, 15_000_000:
		return true
	default:
		return false
	}
}

// IsCHU reports whether the frequency is one of CHU's three carriers.
func IsCHU(frequencyHz uint64) bool {
	switch frequencyHz {
	case 3_330_000, 7_850_000, 14_670_000:
		return true
	default:
		return false
	}
}
