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

package supervisor

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestChannelExitingCleanlyDoesNotRestart(t *testing.T) {
	s := New()
	var runs int32
	s.Register(model.Channel{SSRC: 1}, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Equal(t, ChannelRunning, s.State()[1])
}

func TestTransientErrorRestartsImmediatelyWithoutBackoff(t *testing.T) {
	s := New()
	var runs int32
	s.Register(model.Channel{SSRC: 2}, func(ctx context.Context) error {
		n := atomic.AddInt32(&runs, 1)
		if n < 3 {
			return fmt.Errorf("flaky: %w", model.ErrTransient)
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, int32(3), atomic.LoadInt32(&runs))
}

func TestFatalErrorDisablesChannelAfterRestartBudgetExhausted(t *testing.T) {
	s := New()
	s.Register(model.Channel{SSRC: 3}, func(ctx context.Context) error {
		return fmt.Errorf("boom: %w", model.ErrFatal)
	})

	// backoffStart/backoffCap are fixed consts (100ms..1.6s across the
	// 6 fatal attempts the restart budget allows), so this needs a
	// generous real-time timeout rather than a mocked clock.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, ChannelDisabled, s.State()[3])
}

func TestPruneOldRestartsDropsEntriesOutsideWindow(t *testing.T) {
	now := time.Now()
	restarts := []time.Time{now.Add(-10 * time.Minute), now.Add(-1 * time.Minute), now}
	pruned := pruneOldRestarts(restarts, now)
	assert.Len(t, pruned, 2)
}
