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

// recorder is the daemon entrypoint: it reads a channel roster from
// YAML config, runs one ingest/archive/analysis pipeline per channel
// under a supervisor, and fuses their per-minute clock-offset
// measurements into the system-wide status files of spec section 6.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/archive"
	"github.com/mijahauan/signal-recorder-sub008/calibrate"
	"github.com/mijahauan/signal-recorder-sub008/characterize"
	"github.com/mijahauan/signal-recorder-sub008/config"
	"github.com/mijahauan/signal-recorder-sub008/convergence"
	"github.com/mijahauan/signal-recorder-sub008/fusion"
	"github.com/mijahauan/signal-recorder-sub008/hostclock"
	"github.com/mijahauan/signal-recorder-sub008/ingest"
	"github.com/mijahauan/signal-recorder-sub008/metrics"
	"github.com/mijahauan/signal-recorder-sub008/minute"
	"github.com/mijahauan/signal-recorder-sub008/model"
	"github.com/mijahauan/signal-recorder-sub008/quality"
	"github.com/mijahauan/signal-recorder-sub008/solver"
	"github.com/mijahauan/signal-recorder-sub008/stationdb"
	"github.com/mijahauan/signal-recorder-sub008/statuswriter"
	"github.com/mijahauan/signal-recorder-sub008/supervisor"
	"github.com/mijahauan/signal-recorder-sub008/tone"
)

func main() {
	var (
		cfgPath string
		verbose bool
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "signal-recorder: multi-channel HF time-signal recorder and D_clock estimator\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&cfgPath, "cfg", "/etc/signal-recorder/config.yaml", "Path to YAML config")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.ReadConfig(cfgPath)
	if err != nil {
		log.Fatalf("reading config %s: %v", cfgPath, err)
	}

	layout := statuswriter.Layout{DataRoot: cfg.ArchiveDir}
	reg := metrics.NewRegistry()

	var iface *net.Interface
	if cfg.Interface != "" {
		iface, err = net.InterfaceByName(cfg.Interface)
		if err != nil {
			log.Fatalf("resolving interface %s: %v", cfg.Interface, err)
		}
	}

	recv, err := ingest.NewReceiver(ingest.ReceiverConfig{GroupAddr: cfg.MulticastGroup, Iface: iface, ReadBufferBytes: 4 << 20})
	if err != nil {
		log.Fatalf("joining multicast group %s: %v", cfg.MulticastGroup, err)
	}
	defer recv.Close()

	var hostChecker hostclock.Checker
	if cfg.ChronySocket != "" {
		if cc, err := hostclock.NewChronyChecker(cfg.ChronySocket); err != nil {
			log.WithError(err).Warn("recorder: chrony unavailable, NTP_SYNCED timing quality will never apply")
		} else {
			hostChecker = cc
			defer cc.Close()
		}
	}

	fuser, err := fusion.NewFuser(cfg.Thresholds.FusionWeightFormula)
	if err != nil {
		log.Fatalf("compiling fusion weight formula: %v", err)
	}

	sup := supervisor.New()
	measurements := make(chan model.ClockOffsetMeasurement, 256)

	for _, chCfg := range cfg.Channels {
		ch := model.Channel{SSRC: chCfg.SSRC, FrequencyHz: chCfg.FrequencyHz, Description: chCfg.Description}
		enc := model.EncodingPCM16
		if chCfg.Encoding == "float32" {
			enc = model.EncodingFloat32
		}

		re := ingest.NewReassembler(ch, enc)
		recv.Register(ch.SSRC, re)

		sup.Register(ch, newChannelPipeline(ch, re, cfg, layout, hostChecker, measurements))
	}
	reg.ActiveWorkers.Set(float64(len(cfg.Channels)))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := recv.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("recorder: multicast receiver exited")
		}
	}()

	go runFusionLoop(ctx, fuser, layout, measurements)
	go runStatusLoop(ctx, sup, reg, layout)

	if err := supervisor.SdNotifyReady(); err != nil {
		log.WithError(err).Warn("recorder: sd_notify failed")
	}

	sup.Run(ctx)
	log.Info("recorder: shutdown complete")
}

// radiodStatus is the system-wide status document spec section 6
// names radiod-status.json: supervisor channel states folded together
// with the gathered prometheus gauge values.
type radiodStatus struct {
	Channels map[uint32]supervisor.ChannelState `json:"channels"`
	Metrics  map[string]float64                 `json:"metrics"`
}

// runStatusLoop periodically folds the supervisor's channel states and
// the metrics registry's gauges into radiod-status.json. No promhttp
// handler exists in this repository (the metrics package doc comment
// explains why); this loop is the sole consumer of Gather().
func runStatusLoop(ctx context.Context, sup *supervisor.Supervisor, reg *metrics.Registry, layout statuswriter.Layout) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			families, err := reg.Gather()
			if err != nil {
				log.WithError(err).Warn("recorder: gathering metrics")
				continue
			}
			flat := map[string]float64{}
			for _, fam := range families {
				for _, m := range fam.GetMetric() {
					if g := m.GetGauge(); g != nil {
						flat[fam.GetName()] = g.GetValue()
					}
				}
			}
			status := radiodStatus{Channels: sup.State(), Metrics: flat}
			if err := statuswriter.WriteJSONStatus(layout.RadiodStatusPath(), 1, time.Now(), status); err != nil {
				log.WithError(err).Warn("recorder: writing radiod status")
			}
		}
	}
}

// newChannelPipeline builds one channel's full ingest -> archive ->
// minute -> tone -> characterize -> solve -> convergence ->
// statuswriter chain as a single supervisor.ChannelRunFunc.
func newChannelPipeline(
	ch model.Channel,
	re *ingest.Reassembler,
	cfg *config.Config,
	layout statuswriter.Layout,
	hostChecker hostclock.Checker,
	measurements chan<- model.ClockOffsetMeasurement,
) supervisor.ChannelRunFunc {
	return func(ctx context.Context) error {
		sampler := minute.NewSampler(ch, cfg.Thresholds.MinuteGrace, cfg.Thresholds.CompletenessFloor)
		detector := tone.NewDetector(ch)

		calibPath := layout.StateDir() + "/" + ch.SanitizedDescription() + "_calibration.json"
		calState, err := calibrate.Load(calibPath)
		if err != nil {
			log.WithError(err).Warn("recorder: calibration state load failed, starting fresh")
			calState = calibrate.State{Phase: calibrate.PhaseBootstrap}
		}

		convPath := layout.ConvergenceStatePath(ch)
		station := stationdb.StationForFrequency(ch.FrequencyHz)
		var acc *convergence.Accumulator
		if snap, err := convergence.LoadSnapshot(convPath); err == nil {
			acc = convergence.FromSnapshot(snap)
		} else {
			acc = convergence.NewAccumulator(station, ch.FrequencyHz)
		}

		stationLoc, err := stationdb.Location(station)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrFatal, err)
		}
		receiverLoc := solver.GeoPoint{LatDeg: cfg.ReceiverLat, LonDeg: cfg.ReceiverLon}

		archPath := layout.ArchiveFilePath(ch, time.Now().UTC().Format("20060102"))
		sampleRate := uint32(model.SampleRateHF)
		enc := model.EncodingPCM16
		writer, err := archive.NewWriter(archPath, ch, sampleRate, enc, archive.GopsutilDiskFree, cfg.Thresholds.DiskFreeFloorBytes)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrTransient, err)
		}
		defer writer.Close()

		go sampler.Run(ctx, re.Out())

		for {
			select {
			case <-ctx.Done():
				return nil
			case mf, ok := <-sampler.Out():
				if !ok {
					return nil
				}
				processMinute(mf, ch, detector, &calState, acc, station, stationLoc, receiverLoc, hostChecker, layout, writer, measurements)
				if err := calibrate.Save(calibPath, calState); err != nil {
					log.WithError(err).Warn("recorder: saving calibration state")
				}
				if err := convergence.SaveSnapshot(convPath, acc.Snapshot()); err != nil {
					log.WithError(err).Warn("recorder: saving convergence snapshot")
				}
			}
		}
	}
}

func processMinute(
	mf model.MinuteFrame,
	ch model.Channel,
	detector *tone.Detector,
	calState *calibrate.State,
	acc *convergence.Accumulator,
	station model.Station,
	stationLoc, receiverLoc solver.GeoPoint,
	hostChecker hostclock.Checker,
	layout statuswriter.Layout,
	writer *archive.Writer,
	measurements chan<- model.ClockOffsetMeasurement,
) {
	if mf.DataQuality == model.DataQualityUnusable {
		log.WithField("channel", ch.SSRC).Warn("recorder: minute unusable, skipping analysis")
		return
	}
	if err := writer.WriteSamples(int64(mf.TimeSnap.RTPTimestamp), mf.Samples); err != nil {
		log.WithError(err).Warn("recorder: archive write failed")
	}
	for _, d := range mf.Discontinuities {
		if err := writer.WriteDiscontinuity(d); err != nil {
			log.WithError(err).Warn("recorder: archive discontinuity write failed")
		}
	}
	if err := writer.WriteMinuteMarker(mf.UTCMinute, mf.TimeSnap); err != nil {
		log.WithError(err).Warn("recorder: archive minute marker write failed")
	}

	minuteOfHour := mf.UTCMinute.Minute()
	charac := characterize.Characterize(mf, minuteOfHour)

	detections, err := detector.DetectSecondMark(mf.Samples, mf.TimeSnap.RTPTimestamp)
	var m model.ClockOffsetMeasurement
	if err != nil || len(detections) == 0 {
		m = solver.SolveFailed(station, ch.FrequencyHz, mf.UTCMinute.UnixNano(), time.Now().UnixNano())
	} else {
		best := detections[0]
		for _, d := range detections[1:] {
			if d.SNRdB > best.SNRdB {
				best = d
			}
		}
		in := solver.Input{
			Detection:           best,
			Characterization:    charac,
			Station:             stationLoc,
			Receiver:            receiverLoc,
			MinuteBoundaryUTC:   mf.UTCMinute.UnixNano(),
			SystemTimeAtArrival: time.Now().UnixNano(),
			BaseUncertaintyMs:   1.0,
		}
		m = solver.Solve(in)

		detectionOK := best.SNRdB >= model.MinSNRdB && model.Eligible(tone.DetectionConfidence(best), best.SNRdB)
		withinTolerance := m.UncertaintyMs < calState.SearchWindowMs()
		*calState = calState.Observe(detectionOK, withinTolerance)
	}

	residual := acc.Update(m.DClockMs, time.Now())
	_ = residual

	var hostStatus *hostclock.Status
	if hostChecker != nil {
		if s, err := hostChecker.Check(); err == nil {
			hostStatus = &s
		}
	}
	kind, reproc := quality.Annotate(mf.TimeSnap, time.Now(), hostStatus)
	m.TimingQuality = kind
	m.ReprocessingRecommended = reproc

	if err := statuswriter.AppendCSVRow(layout.ClockOffsetCSVPath(ch), statuswriter.ClockOffsetCSVHeader, statuswriter.FormatClockOffsetRow(m)); err != nil {
		log.WithError(err).Warn("recorder: writing clock-offset CSV row")
	}
	if err := statuswriter.WriteJSONStatus(layout.ConvergenceStatePath(ch), 1, time.Now(), acc.Snapshot()); err != nil {
		log.WithError(err).Warn("recorder: writing convergence status")
	}

	select {
	case measurements <- m:
	default:
		log.WithField("channel", ch.SSRC).Warn("recorder: fusion input queue full, dropping measurement")
	}
}

// runFusionLoop batches arriving per-channel measurements by minute
// boundary and fuses each completed batch once a newer minute boundary
// has been observed (spec section 4.8: fusion runs once per minute
// across whichever channels have reported).
func runFusionLoop(ctx context.Context, fuser *fusion.Fuser, layout statuswriter.Layout, measurements <-chan model.ClockOffsetMeasurement) {
	pending := map[int64][]model.ClockOffsetMeasurement{}
	var lastMinute int64

	flush := func(minuteUTC int64) {
		batch := pending[minuteUTC]
		delete(pending, minuteUTC)
		if len(batch) == 0 {
			return
		}
		estimate := fuser.Fuse(minuteUTC, batch)
		if err := statuswriter.AppendCSVRow(layout.FusedDClockCSVPath(), statuswriter.FusedDClockCSVHeader, statuswriter.FormatFusedRow(estimate)); err != nil {
			log.WithError(err).Warn("recorder: writing fused clock-offset CSV row")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-measurements:
			if !ok {
				return
			}
			pending[m.MinuteBoundaryUTC] = append(pending[m.MinuteBoundaryUTC], m)
			if m.MinuteBoundaryUTC > lastMinute {
				if lastMinute != 0 {
					flush(lastMinute)
				}
				lastMinute = m.MinuteBoundaryUTC
			}
		}
	}
}
