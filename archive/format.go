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

// Package archive implements the per-channel, per-UTC-day append-only
// binary archive of spec section 4.2: one file holds a header record
// followed by a stream of {kind, length, payload} records, and a
// sidecar .idx file maps each UTC minute to the byte offset of its
// MINUTE_MARKER record. Every multi-byte field on the wire is
// little-endian (spec section 6); there is no gob and no
// platform-dependent byte order anywhere in the file.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	gover "github.com/hashicorp/go-version"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Magic identifies an archive file; it is written once at file
// creation and checked on every open.
var Magic = [11]byte{'G', 'R', 'A', 'P', 'E', '-', 'A', 'R', 'C', 'V', 0}

// FormatVersion is this build's archive format version: a 32-bit
// integer on the wire (spec section 6), not a semver string.
const FormatVersion uint32 = 1

// FormatConstraint is the range of archive format versions this
// build can read, expressed with go-version the way a semver-gated
// dependency would be in a go.mod: a new version before 2 is accepted
// as additive, a new major version is refused.
const FormatConstraint = ">= 1, < 2"

// channelDescriptionSize is the fixed width, in bytes, of the
// NUL-padded description field inside the channel-identity block.
const channelDescriptionSize = 64

// channelIdentitySize is the fixed size of the header's
// channel-identity block: a uint32 SSRC, a uint64 FrequencyHz, and the
// padded description field.
const channelIdentitySize = 4 + 8 + channelDescriptionSize

// headerSize is the fixed total size of an archive file's header:
// magic, format version, channel identity, sample rate, encoding.
const headerSize = int64(len(Magic)) + 4 + channelIdentitySize + 4 + 1

// RecordKind tags each record in an archive body (spec section 4.2).
type RecordKind uint8

const (
	RecordSamples RecordKind = iota + 1
	RecordDiscontinuity
	RecordTimeSnapUpdate
	RecordMinuteMarker
)

// Header is the first record in every archive file.
type Header struct {
	Channel       model.Channel
	SampleRateHz  uint32
	Encoding      model.Encoding
	FormatVersion uint32
}

// CheckFormatCompat checks a header's recorded format version against
// FormatConstraint, refusing to open files written by an incompatible
// future build rather than guessing at their layout.
func CheckFormatCompat(headerVersion uint32) error {
	v, err := gover.NewVersion(strconv.FormatUint(uint64(headerVersion), 10))
	if err != nil {
		return fmt.Errorf("%w: archive header has unparseable format version %d: %v", model.ErrStateCorrupt, headerVersion, err)
	}
	constraints, err := gover.NewConstraint(FormatConstraint)
	if err != nil {
		return fmt.Errorf("internal error parsing archive format constraint: %w", err)
	}
	if !constraints.Check(v) {
		return fmt.Errorf("%w: archive format version %d does not satisfy %s", model.ErrStateCorrupt, headerVersion, FormatConstraint)
	}
	return nil
}

// MinuteMarker is the RecordMinuteMarker payload: it lets a reader
// discover minute boundaries by seeking the .idx sidecar instead of
// scanning the whole file, and lets it reconstruct the TimeSnap that
// was active when the minute was written (spec section 4.2).
type MinuteMarker struct {
	UTCMinute          int64 // unix nanoseconds, truncated to the minute
	SampleOffsetInFile int64
	TimeSnap           model.TimeSnap
}

// timeSnapEncodedSize is the fixed wire size of an encoded TimeSnap:
// RTPTimestamp(4) + UTCTimestamp(8) + source code(1) + Confidence(8) +
// EstablishedAt(8).
const timeSnapEncodedSize = 4 + 8 + 1 + 8 + 8

// timeSnapSourceCodes maps the small closed set of TimeSnapSource
// values to a one-byte wire code; codeToTimeSnapSource is its inverse.
var timeSnapSourceCodes = map[model.TimeSnapSource]uint8{
	model.SourceWWVTone:          1,
	model.SourceWWVHTone:         2,
	model.SourceCHUTone:          3,
	model.SourceNTP:              4,
	model.SourceStartupEstimate:  5,
}

var codeToTimeSnapSource = map[uint8]model.TimeSnapSource{
	1: model.SourceWWVTone,
	2: model.SourceWWVHTone,
	3: model.SourceCHUTone,
	4: model.SourceNTP,
	5: model.SourceStartupEstimate,
}

func encodeChannelIdentity(w io.Writer, ch model.Channel) error {
	if err := binary.Write(w, binary.LittleEndian, ch.SSRC); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, ch.FrequencyHz); err != nil {
		return err
	}
	var desc [channelDescriptionSize]byte
	copy(desc[:], ch.Description)
	_, err := w.Write(desc[:])
	return err
}

func decodeChannelIdentity(r io.Reader) (model.Channel, error) {
	var ch model.Channel
	if err := binary.Read(r, binary.LittleEndian, &ch.SSRC); err != nil {
		return ch, err
	}
	if err := binary.Read(r, binary.LittleEndian, &ch.FrequencyHz); err != nil {
		return ch, err
	}
	var desc [channelDescriptionSize]byte
	if _, err := io.ReadFull(r, desc[:]); err != nil {
		return ch, err
	}
	n := bytes.IndexByte(desc[:], 0)
	if n < 0 {
		n = len(desc)
	}
	ch.Description = string(desc[:n])
	return ch, nil
}

func encodeSamples(w io.Writer, samples []model.IQSample) error {
	for _, s := range samples {
		if err := binary.Write(w, binary.LittleEndian, s.I); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, s.Q); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSamples decodes a RecordSamples payload back into IQSamples;
// each sample is 8 bytes (two little-endian float32s).
func DecodeSamples(payload []byte) ([]model.IQSample, error) {
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("%w: samples payload length %d is not a multiple of 8", model.ErrStateCorrupt, len(payload))
	}
	r := bytes.NewReader(payload)
	samples := make([]model.IQSample, len(payload)/8)
	for i := range samples {
		if err := binary.Read(r, binary.LittleEndian, &samples[i].I); err != nil {
			return nil, fmt.Errorf("%w: decoding sample: %v", model.ErrStateCorrupt, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &samples[i].Q); err != nil {
			return nil, fmt.Errorf("%w: decoding sample: %v", model.ErrStateCorrupt, err)
		}
	}
	return samples, nil
}

func encodeDiscontinuity(w io.Writer, d model.Discontinuity) error {
	if err := binary.Write(w, binary.LittleEndian, d.StartRTP); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, d.LengthSamples); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(d.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, d.WallInstant); err != nil {
		return err
	}
	var related uint8
	if d.RelatedToTimingEvent {
		related = 1
	}
	return binary.Write(w, binary.LittleEndian, related)
}

// DecodeDiscontinuity decodes a RecordDiscontinuity payload.
func DecodeDiscontinuity(payload []byte) (model.Discontinuity, error) {
	var d model.Discontinuity
	r := bytes.NewReader(payload)
	if err := binary.Read(r, binary.LittleEndian, &d.StartRTP); err != nil {
		return d, fmt.Errorf("%w: decoding discontinuity: %v", model.ErrStateCorrupt, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &d.LengthSamples); err != nil {
		return d, fmt.Errorf("%w: decoding discontinuity: %v", model.ErrStateCorrupt, err)
	}
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return d, fmt.Errorf("%w: decoding discontinuity: %v", model.ErrStateCorrupt, err)
	}
	d.Kind = model.DiscontinuityKind(kind)
	if err := binary.Read(r, binary.LittleEndian, &d.WallInstant); err != nil {
		return d, fmt.Errorf("%w: decoding discontinuity: %v", model.ErrStateCorrupt, err)
	}
	var related uint8
	if err := binary.Read(r, binary.LittleEndian, &related); err != nil {
		return d, fmt.Errorf("%w: decoding discontinuity: %v", model.ErrStateCorrupt, err)
	}
	d.RelatedToTimingEvent = related != 0
	return d, nil
}

func encodeTimeSnap(w io.Writer, t model.TimeSnap) error {
	if err := binary.Write(w, binary.LittleEndian, t.RTPTimestamp); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.UTCTimestamp); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, timeSnapSourceCodes[t.Source]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.Confidence); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.EstablishedAt)
}

func decodeTimeSnap(r io.Reader) (model.TimeSnap, error) {
	var t model.TimeSnap
	if err := binary.Read(r, binary.LittleEndian, &t.RTPTimestamp); err != nil {
		return t, err
	}
	if err := binary.Read(r, binary.LittleEndian, &t.UTCTimestamp); err != nil {
		return t, err
	}
	var code uint8
	if err := binary.Read(r, binary.LittleEndian, &code); err != nil {
		return t, err
	}
	t.Source = codeToTimeSnapSource[code]
	if err := binary.Read(r, binary.LittleEndian, &t.Confidence); err != nil {
		return t, err
	}
	if err := binary.Read(r, binary.LittleEndian, &t.EstablishedAt); err != nil {
		return t, err
	}
	return t, nil
}

// DecodeTimeSnapUpdate decodes a RecordTimeSnapUpdate payload.
func DecodeTimeSnapUpdate(payload []byte) (model.TimeSnap, error) {
	t, err := decodeTimeSnap(bytes.NewReader(payload))
	if err != nil {
		return t, fmt.Errorf("%w: decoding time snap update: %v", model.ErrStateCorrupt, err)
	}
	return t, nil
}

func encodeMinuteMarker(w io.Writer, m MinuteMarker) error {
	if err := binary.Write(w, binary.LittleEndian, m.UTCMinute); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.SampleOffsetInFile); err != nil {
		return err
	}
	return encodeTimeSnap(w, m.TimeSnap)
}

// DecodeMinuteMarker decodes a RecordMinuteMarker payload.
func DecodeMinuteMarker(payload []byte) (MinuteMarker, error) {
	var m MinuteMarker
	r := bytes.NewReader(payload)
	if err := binary.Read(r, binary.LittleEndian, &m.UTCMinute); err != nil {
		return m, fmt.Errorf("%w: decoding minute marker: %v", model.ErrStateCorrupt, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.SampleOffsetInFile); err != nil {
		return m, fmt.Errorf("%w: decoding minute marker: %v", model.ErrStateCorrupt, err)
	}
	snap, err := decodeTimeSnap(r)
	if err != nil {
		return m, fmt.Errorf("%w: decoding minute marker: %v", model.ErrStateCorrupt, err)
	}
	m.TimeSnap = snap
	return m, nil
}
