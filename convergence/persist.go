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

package convergence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// SaveSnapshot writes snap to path via write-temp-then-rename so a
// reader never observes a partially-written file (spec section 4.7:
// "accumulator state is written atomically to disk after every
// update").
func SaveSnapshot(path string, snap model.ConvergenceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("convergence: marshaling snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing snapshot temp file: %v", model.ErrTransient, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: renaming snapshot into place: %v", model.ErrTransient, err)
	}
	return nil
}

// LoadSnapshot reads a previously saved snapshot, returning
// ErrStateCorrupt if it fails to parse (spec section 7: "state
// corruption on load").
func LoadSnapshot(path string) (model.ConvergenceSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ConvergenceSnapshot{}, err
		}
		return model.ConvergenceSnapshot{}, fmt.Errorf("%w: reading snapshot file: %v", model.ErrTransient, err)
	}
	var snap model.ConvergenceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.ConvergenceSnapshot{}, fmt.Errorf("%w: parsing snapshot file %s: %v", model.ErrStateCorrupt, filepath.Base(path), err)
	}
	return snap, nil
}
