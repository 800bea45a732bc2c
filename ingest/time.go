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

package ingest

import (
	"context"
	"time"
)

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now

// pollInterval bounds how long a blocking read waits before rechecking
// ctx, so Run reacts to cancellation promptly without busy-looping.
const pollInterval = 200 * time.Millisecond

func deadlineFromCtx(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return nowFunc().Add(pollInterval)
}
