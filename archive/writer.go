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
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// diskFreeChecker is a seam over gopsutil's disk.Usage so tests can
// simulate a full disk without touching the real filesystem.
type diskFreeChecker func(path string) (freeBytes uint64, err error)

// Writer appends records to one channel's per-day archive file,
// enforcing strict RTP-timestamp monotonicity (testable property 1)
// and maintaining the .idx sidecar.
type Writer struct {
	path       string
	idxPath    string
	channel    model.Channel
	sampleRate uint32
	encoding   model.Encoding

	f   *os.File
	bw  *bufio.Writer
	idx *os.File

	mu              sync.Mutex
	nextExpectedRTP int64 // -1 until the first sample is written
	offset          int64
	lastFsync       time.Time
	checkDiskFree   diskFreeChecker
	minFreeBytes    uint64
}

// NewWriter creates (or truncates) the archive file at path plus its
// .idx sidecar, writes the header, and fsyncs it immediately (spec
// section 4.2: "Fsync of header + first marker happens at file
// creation").
func NewWriter(path string, ch model.Channel, sampleRate uint32, encoding model.Encoding, checkDiskFree diskFreeChecker, minFreeBytes uint64) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: creating archive file %s: %v", model.ErrTransient, path, err)
	}
	idx, err := os.OpenFile(path+".idx", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: creating archive index %s: %v", model.ErrTransient, path+".idx", err)
	}
	w := &Writer{
		path:            path,
		idxPath:         path + ".idx",
		channel:         ch,
		sampleRate:      sampleRate,
		encoding:        encoding,
		f:               f,
		bw:              bufio.NewWriter(f),
		idx:             idx,
		nextExpectedRTP: -1,
		checkDiskFree:   checkDiskFree,
		minFreeBytes:    minFreeBytes,
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		idx.Close()
		return nil, err
	}
	if err := w.f.Sync(); err != nil {
		return nil, fmt.Errorf("%w: fsyncing archive header: %v", model.ErrTransient, err)
	}
	return w, nil
}

// writeHeader lays out the fixed-size header exactly per spec section
// 6: magic, a 32-bit format version, a fixed-size channel-identity
// block, sample rate, encoding — all little-endian, no gob anywhere.
func (w *Writer) writeHeader() error {
	if _, err := w.bw.Write(Magic[:]); err != nil {
		return fmt.Errorf("%w: writing archive magic: %v", model.ErrTransient, err)
	}
	if err := binary.Write(w.bw, binary.LittleEndian, FormatVersion); err != nil {
		return fmt.Errorf("%w: writing archive format version: %v", model.ErrTransient, err)
	}
	if err := encodeChannelIdentity(w.bw, w.channel); err != nil {
		return fmt.Errorf("%w: writing archive channel identity: %v", model.ErrTransient, err)
	}
	if err := binary.Write(w.bw, binary.LittleEndian, w.sampleRate); err != nil {
		return fmt.Errorf("%w: writing archive sample rate: %v", model.ErrTransient, err)
	}
	if err := binary.Write(w.bw, binary.LittleEndian, uint8(w.encoding)); err != nil {
		return fmt.Errorf("%w: writing archive encoding: %v", model.ErrTransient, err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing archive header: %v", model.ErrTransient, err)
	}
	w.offset = headerSize
	return nil
}

// WriteSamples appends a contiguous run of samples starting at
// startRTP. If startRTP precedes the writer's expected next RTP
// timestamp, the write is refused with ErrTimelineRegression and the
// offending range is skipped rather than corrupting the timeline
// (spec section 4.2 invariant). A startRTP beyond the expected value
// is accepted.
func (w *Writer) WriteSamples(startRTP int64, samples []model.IQSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.nextExpectedRTP >= 0 && startRTP < w.nextExpectedRTP {
		return fmt.Errorf("%w: archive write at rtp=%d precedes expected %d", model.ErrTimelineRegression, startRTP, w.nextExpectedRTP)
	}
	if w.checkDiskFree != nil {
		free, err := w.checkDiskFree(w.path)
		if err == nil && free < w.minFreeBytes {
			return fmt.Errorf("%w: disk free %d bytes below floor %d, backpressuring writer", model.ErrTransient, free, w.minFreeBytes)
		}
	}
	var buf bytes.Buffer
	if err := encodeSamples(&buf, samples); err != nil {
		return fmt.Errorf("%w: encoding samples record: %v", model.ErrTransient, err)
	}
	if err := w.writeRecord(RecordSamples, buf.Bytes()); err != nil {
		return err
	}
	w.nextExpectedRTP = startRTP + int64(len(samples))
	return w.maybeFsync()
}

// WriteDiscontinuity appends a discontinuity record and advances the
// expected-RTP cursor past it, since its length_samples already
// accounts for the missing span (testable property 2).
func (w *Writer) WriteDiscontinuity(d model.Discontinuity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var buf bytes.Buffer
	if err := encodeDiscontinuity(&buf, d); err != nil {
		return fmt.Errorf("%w: encoding discontinuity record: %v", model.ErrTransient, err)
	}
	if err := w.writeRecord(RecordDiscontinuity, buf.Bytes()); err != nil {
		return err
	}
	w.nextExpectedRTP = int64(d.StartRTP) + int64(d.LengthSamples)
	return w.maybeFsync()
}

// WriteTimeSnapUpdate appends a TIME_SNAP_UPDATE record, logged
// whenever the channel's anchor changes so a reader replaying the
// archive can reconstruct TimeSnap history exactly.
func (w *Writer) WriteTimeSnapUpdate(t model.TimeSnap) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var buf bytes.Buffer
	if err := encodeTimeSnap(&buf, t); err != nil {
		return fmt.Errorf("%w: encoding time snap update record: %v", model.ErrTransient, err)
	}
	if err := w.writeRecord(RecordTimeSnapUpdate, buf.Bytes()); err != nil {
		return err
	}
	return w.maybeFsync()
}

// WriteMinuteMarker appends a MINUTE_MARKER record and its .idx
// sidecar entry, then forces an fsync of both files (spec section
// 4.2: fsync at minute boundaries).
func (w *Writer) WriteMinuteMarker(utcMinute time.Time, snap model.TimeSnap) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	markerOffset := w.offset
	m := MinuteMarker{UTCMinute: utcMinute.UnixNano(), SampleOffsetInFile: markerOffset, TimeSnap: snap}
	var buf bytes.Buffer
	if err := encodeMinuteMarker(&buf, m); err != nil {
		return fmt.Errorf("%w: encoding minute marker record: %v", model.ErrTransient, err)
	}
	if err := w.writeRecord(RecordMinuteMarker, buf.Bytes()); err != nil {
		return err
	}
	if err := binary.Write(w.idx, binary.LittleEndian, idxEntry{UTCMinuteNanos: m.UTCMinute, ByteOffset: markerOffset}); err != nil {
		return fmt.Errorf("%w: writing .idx entry: %v", model.ErrTransient, err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing archive at minute boundary: %v", model.ErrTransient, err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("%w: fsyncing archive at minute boundary: %v", model.ErrTransient, err)
	}
	if err := w.idx.Sync(); err != nil {
		return fmt.Errorf("%w: fsyncing archive index at minute boundary: %v", model.ErrTransient, err)
	}
	w.lastFsync = time.Now()
	return nil
}

// writeRecord writes one already-encoded record: an 8-bit kind, a
// little-endian 32-bit length, then the payload bytes (spec section
// 6: `<u8 kind><u32 length><bytes[length]>`).
func (w *Writer) writeRecord(kind RecordKind, payload []byte) error {
	if err := binary.Write(w.bw, binary.LittleEndian, uint8(kind)); err != nil {
		return fmt.Errorf("%w: writing record kind: %v", model.ErrTransient, err)
	}
	if err := binary.Write(w.bw, binary.LittleEndian, uint32(len(payload))); err != nil {
		return fmt.Errorf("%w: writing record length: %v", model.ErrTransient, err)
	}
	if _, err := w.bw.Write(payload); err != nil {
		return fmt.Errorf("%w: writing record payload: %v", model.ErrTransient, err)
	}
	w.offset += 1 + 4 + int64(len(payload))
	return nil
}

// maybeFsync enforces the ≤1s buffered write-back ceiling spec
// section 4.2 sets for non-minute-boundary writes.
func (w *Writer) maybeFsync() error {
	if time.Since(w.lastFsync) < time.Second {
		return nil
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing archive write-back: %v", model.ErrTransient, err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("%w: fsyncing archive write-back: %v", model.ErrTransient, err)
	}
	w.lastFsync = time.Now()
	return nil
}

// Rotate closes the current file and index and reopens fresh ones at
// newPath, recording a RECORDER_OFFLINE discontinuity first — the
// spec section 4.2 corrupt-write recovery path.
func (w *Writer) Rotate(newPath string, at time.Time) error {
	w.mu.Lock()
	d := model.Discontinuity{StartRTP: uint32(max64(w.nextExpectedRTP, 0)), Kind: model.RecorderOffline, WallInstant: at.UnixNano()}
	w.mu.Unlock()
	log.WithField("old_path", w.path).WithField("new_path", newPath).Warn("archive: rotating after corrupt write")
	if err := w.WriteDiscontinuity(d); err != nil {
		log.WithError(err).Warn("archive: failed writing RECORDER_OFFLINE marker before rotation")
	}
	if err := w.Close(); err != nil {
		return err
	}
	nw, err := NewWriter(newPath, w.channel, w.sampleRate, w.encoding, w.checkDiskFree, w.minFreeBytes)
	if err != nil {
		return err
	}
	*w = *nw
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Close flushes and closes both the archive file and its index.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if err := w.f.Close(); err != nil {
		return err
	}
	return w.idx.Close()
}
