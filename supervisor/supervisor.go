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

// Package supervisor owns the per-channel worker lifecycle: starting
// one pipelined worker per channel, restarting it with exponential
// backoff on fatal error, and propagating cooperative shutdown
// through every stage (spec section 4 / 5).
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// SdNotifyReady tells systemd the recorder has finished starting up.
func SdNotifyReady() error {
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if !supported && err != nil {
		return err
	} else if !supported {
		log.Warn("supervisor: sd_notify not supported (NOTIFY_SOCKET unset)")
	} else {
		log.Info("supervisor: sent sd_notify ready")
	}
	return nil
}

const (
	backoffStart = 100 * time.Millisecond
	backoffCap   = 30 * time.Second
	maxRestartsInWindow = 5
	restartWindow       = 5 * time.Minute
)

// ChannelRunFunc is the body of one channel's pipeline; it must
// return promptly once ctx is cancelled.
type ChannelRunFunc func(ctx context.Context) error

// ChannelState is the supervisor's last-known status for one channel,
// reported in radiod-status.json.
type ChannelState string

const (
	ChannelRunning  ChannelState = "RUNNING"
	ChannelRestarting ChannelState = "RESTARTING"
	ChannelDisabled ChannelState = "DISABLED"
)

// worker tracks one channel's restart bookkeeping.
type worker struct {
	channel     model.Channel
	run         ChannelRunFunc
	restarts    []time.Time
	state       ChannelState
	lastCorrelationID string
}

// Supervisor runs and restarts one worker per registered channel.
type Supervisor struct {
	mu      sync.Mutex
	workers map[uint32]*worker
}

// New constructs an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{workers: make(map[uint32]*worker)}
}

// Register adds a channel's pipeline entrypoint. Must be called
// before Run.
func (s *Supervisor) Register(ch model.Channel, run ChannelRunFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[ch.SSRC] = &worker{channel: ch, run: run, state: ChannelRunning}
}

// State returns a snapshot of every registered channel's current
// state, for radiod-status.json.
func (s *Supervisor) State() map[uint32]ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]ChannelState, len(s.workers))
	for ssrc, w := range s.workers {
		out[ssrc] = w.state
	}
	return out
}

// Run starts every registered channel's worker goroutine and blocks
// until ctx is cancelled, then waits for all workers to exit.
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	workers := make([]*worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			s.superviseOne(ctx, w)
		}(w)
	}
	wg.Wait()
}

func (s *Supervisor) superviseOne(ctx context.Context, w *worker) {
	backoff := backoffStart
	for {
		correlationID := uuid.New().String()
		w.lastCorrelationID = correlationID
		log.WithFields(log.Fields{"channel": w.channel.SSRC, "correlation_id": correlationID}).Info("supervisor: starting channel worker")

		err := w.run(ctx)

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err == nil {
			log.WithField("channel", w.channel.SSRC).Info("supervisor: channel worker exited cleanly")
			return
		}

		log.WithFields(log.Fields{"channel": w.channel.SSRC, "correlation_id": correlationID, "error": err}).
			Warn("supervisor: channel worker failed")

		if model.Kind(err) != model.ErrFatal {
			backoff = backoffStart
			continue
		}

		w.state = ChannelRestarting
		now := time.Now()
		w.restarts = append(w.restarts, now)
		w.restarts = pruneOldRestarts(w.restarts, now)
		if len(w.restarts) > maxRestartsInWindow {
			w.state = ChannelDisabled
			log.WithField("channel", w.channel.SSRC).Error("supervisor: exhausted restart budget, disabling channel")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > backoffCap {
			backoff = backoffCap
		}
		w.state = ChannelRunning
	}
}

func pruneOldRestarts(restarts []time.Time, now time.Time) []time.Time {
	out := restarts[:0]
	for _, t := range restarts {
		if now.Sub(t) <= restartWindow {
			out = append(out, t)
		}
	}
	return out
}

// ErrNoSuchChannel is returned by lookups against an unregistered SSRC.
var ErrNoSuchChannel = fmt.Errorf("%w: channel not registered with supervisor", model.ErrFatal)
