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

package archive

import (
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// GopsutilDiskFree reports the free bytes on the filesystem containing
// path, the backpressure probe the writer checks before each sample
// write (spec section 4.2: "disk-full -> backpressure the producer").
func GopsutilDiskFree(path string) (uint64, error) {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
