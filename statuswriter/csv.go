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
	"fmt"
	"time"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// ClockOffsetCSVHeader is the exact header spec section 6 specifies
// for the per-channel clock-offset series.
const ClockOffsetCSVHeader = "system_time,utc_time,minute_boundary_utc,clock_offset_ms,station,frequency_mhz,propagation_delay_ms,propagation_mode,n_hops,confidence,uncertainty_ms,quality_grade,snr_db"

// FormatClockOffsetRow renders one ClockOffsetMeasurement as a CSV row
// in the column order ClockOffsetCSVHeader declares.
func FormatClockOffsetRow(m model.ClockOffsetMeasurement) string {
	systemTime := time.Unix(0, m.SystemTime).UTC().Format(time.RFC3339Nano)
	utcTime := time.Unix(0, m.MinuteBoundaryUTC).UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf("%s,%s,%d,%.6f,%s,%.6f,%.6f,%s,%d,%.6f,%.6f,%s,%.3f",
		systemTime, utcTime, m.MinuteBoundaryUTC, m.DClockMs, m.Station, m.FrequencyMHz,
		m.PropagationDelayMs, m.PropagationMode, m.NHops, m.Confidence, m.UncertaintyMs, m.QualityGrade, m.SNRdB)
}

// FusedDClockCSVHeader is the header for the cross-broadcast fused
// series.
const FusedDClockCSVHeader = "minute_boundary_utc,clock_offset_ms,uncertainty_ms,agreement,n_contributors"

// FormatFusedRow renders one FusedEstimate as a CSV row.
func FormatFusedRow(f model.FusedEstimate) string {
	return fmt.Sprintf("%d,%.6f,%.6f,%s,%d", f.MinuteBoundaryUTC, f.DClockMs, f.UncertaintyMs, f.Agreement, len(f.Contributors))
}
