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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// StatusEnvelope is the common shape every JSON status file shares:
// a version for forward compatibility and an ISO-8601 timestamp
// (spec section 6).
type StatusEnvelope struct {
	Version   uint32      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Body      interface{} `json:"body"`
}

// WriteJSONStatus marshals body wrapped in a StatusEnvelope and
// publishes it to path via write-temp-then-rename.
func WriteJSONStatus(path string, version uint32, at time.Time, body interface{}) error {
	env := StatusEnvelope{Version: version, Timestamp: at.UTC().Format(time.RFC3339), Body: body}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("statuswriter: marshaling status: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic creates path's parent directory if needed, writes data
// to a sibling temp file, and renames it into place — the publication
// step behind WriteJSONStatus (spec section 4.11 / 6).
// convergence.SaveSnapshot and calibrate.Save publish their files with
// their own temp-file-and-rename code.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating status directory: %v", model.ErrTransient, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing status temp file: %v", model.ErrTransient, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: renaming status file into place: %v", model.ErrTransient, err)
	}
	return nil
}

// AppendCSVRow appends one CSV-encoded row to path, creating it (with
// header) if it does not yet exist. Unlike the JSON status files, the
// CSV series is append-only and never rewritten wholesale, so atomic
// rename does not apply here — spec section 6 requires strict
// ascending order by minute_boundary_utc, which callers satisfy by
// calling this once per minute in order.
func AppendCSVRow(path string, header string, row string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating CSV directory: %v", model.ErrTransient, err)
	}
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening CSV for append: %v", model.ErrTransient, err)
	}
	defer f.Close()
	if needsHeader {
		if _, err := f.WriteString(header + "\n"); err != nil {
			return fmt.Errorf("%w: writing CSV header: %v", model.ErrTransient, err)
		}
	}
	if _, err := f.WriteString(row + "\n"); err != nil {
		return fmt.Errorf("%w: writing CSV row: %v", model.ErrTransient, err)
	}
	return nil
}
