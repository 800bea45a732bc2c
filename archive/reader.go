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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Reader opens an existing archive file read-only and supports
// O(log N) minute lookup via its loaded .idx sidecar (spec section
// 4.2).
type Reader struct {
	f       *os.File
	header  Header
	minutes []idxEntry // sorted by UTCMinuteNanos
}

type idxEntry struct {
	UTCMinuteNanos int64
	ByteOffset     int64
}

// OpenReader opens path plus its .idx sidecar, validates the magic and
// format version, and loads the minute index into memory.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive file %s: %v", model.ErrTransient, path, err)
	}
	var magic [11]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading archive magic: %v", model.ErrStateCorrupt, err)
	}
	if magic != Magic {
		f.Close()
		return nil, fmt.Errorf("%w: archive magic mismatch in %s", model.ErrStateCorrupt, path)
	}
	var version uint32
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading archive format version: %v", model.ErrStateCorrupt, err)
	}
	if err := CheckFormatCompat(version); err != nil {
		f.Close()
		return nil, err
	}
	ch, err := decodeChannelIdentity(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading archive channel identity: %v", model.ErrStateCorrupt, err)
	}
	var sampleRate uint32
	if err := binary.Read(f, binary.LittleEndian, &sampleRate); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading archive sample rate: %v", model.ErrStateCorrupt, err)
	}
	var encByte uint8
	if err := binary.Read(f, binary.LittleEndian, &encByte); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading archive encoding: %v", model.ErrStateCorrupt, err)
	}
	h := Header{Channel: ch, SampleRateHz: sampleRate, Encoding: model.Encoding(encByte), FormatVersion: version}
	r := &Reader{f: f, header: h}
	if err := r.loadIndex(path + ".idx"); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) loadIndex(idxPath string) error {
	idxf, err := os.Open(idxPath)
	if err != nil {
		return fmt.Errorf("%w: opening archive index %s: %v", model.ErrTransient, idxPath, err)
	}
	defer idxf.Close()
	for {
		var e idxEntry
		err := binary.Read(idxf, binary.LittleEndian, &e)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading archive index entry: %v", model.ErrStateCorrupt, err)
		}
		r.minutes = append(r.minutes, e)
	}
	sort.Slice(r.minutes, func(i, j int) bool { return r.minutes[i].UTCMinuteNanos < r.minutes[j].UTCMinuteNanos })
	return nil
}

// Header returns the archive's header record.
func (r *Reader) Header() Header { return r.header }

// FindMinute returns the byte offset of the MINUTE_MARKER at exactly
// utcMinuteNanos, or ok=false if no such marker is indexed. Discovery
// always goes through this index, never filesystem mtimes (spec
// section 4.2).
func (r *Reader) FindMinute(utcMinuteNanos int64) (offset int64, ok bool) {
	i := sort.Search(len(r.minutes), func(i int) bool { return r.minutes[i].UTCMinuteNanos >= utcMinuteNanos })
	if i < len(r.minutes) && r.minutes[i].UTCMinuteNanos == utcMinuteNanos {
		return r.minutes[i].ByteOffset, true
	}
	return 0, false
}

// ReadRecordAt seeks to offset and reads one record, returning its
// kind and raw payload bytes. Callers decode the payload with the
// matching Decode* function for the kind (DecodeSamples,
// DecodeDiscontinuity, DecodeTimeSnapUpdate, DecodeMinuteMarker).
func (r *Reader) ReadRecordAt(offset int64) (RecordKind, []byte, error) {
	if _, err := r.f.Seek(offset, io.SeekStart); err != nil {
		return 0, nil, fmt.Errorf("%w: seeking archive: %v", model.ErrTransient, err)
	}
	var kind uint8
	if err := binary.Read(r.f, binary.LittleEndian, &kind); err != nil {
		return 0, nil, fmt.Errorf("%w: reading record kind: %v", model.ErrStateCorrupt, err)
	}
	var length uint32
	if err := binary.Read(r.f, binary.LittleEndian, &length); err != nil {
		return 0, nil, fmt.Errorf("%w: reading record length: %v", model.ErrStateCorrupt, err)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r.f, payload); err != nil {
		return 0, nil, fmt.Errorf("%w: reading record payload: %v", model.ErrStateCorrupt, err)
	}
	return RecordKind(kind), payload, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
