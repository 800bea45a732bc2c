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

package statuswriter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestSanitizedDescriptionUsedConsistentlyAcrossPaths(t *testing.T) {
	l := Layout{DataRoot: "/data"}
	ch := model.Channel{SSRC: 1, FrequencyHz: 10_000_000, Description: "WWV 10 MHz"}

	assert.Equal(t, filepath.Join("/data", "raw_archive", "WWV_10_MHz"), l.RawArchiveDir(ch))
	assert.Equal(t, filepath.Join("/data", "phase2", "WWV_10_MHz", "clock_offset", "clock_offset_series.csv"), l.ClockOffsetCSVPath(ch))
	assert.Equal(t, filepath.Join("/data", "phase2", "WWV_10_MHz", "status", "convergence_state.json"), l.ConvergenceStatePath(ch))
}

func TestArchiveFilePathAppendsDateAndExtension(t *testing.T) {
	l := Layout{DataRoot: "/data"}
	ch := model.Channel{Description: "CHU 3.33 MHz"}
	assert.Equal(t, filepath.Join("/data", "raw_archive", "CHU_3.33_MHz", "20260730.bin"), l.ArchiveFilePath(ch, "20260730"))
}

func TestFusedDClockCSVPathIsGlobal(t *testing.T) {
	l := Layout{DataRoot: "/data"}
	assert.Equal(t, filepath.Join("/data", "phase2", "fusion", "fused_d_clock.csv"), l.FusedDClockCSVPath())
}

func TestRadiodStatusPathUnderStatusDir(t *testing.T) {
	l := Layout{DataRoot: "/data"}
	assert.Equal(t, filepath.Join(l.StatusDir(), "radiod-status.json"), l.RadiodStatusPath())
}
