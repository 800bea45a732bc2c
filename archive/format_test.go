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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestCheckFormatCompatAcceptsCurrentVersion(t *testing.T) {
	assert.NoError(t, CheckFormatCompat(FormatVersion))
}

func TestCheckFormatCompatRejectsFutureMajorVersion(t *testing.T) {
	err := CheckFormatCompat(2)
	assert.ErrorIs(t, err, model.ErrStateCorrupt)
}

func TestChannelIdentityRoundTripsThroughEncodeDecode(t *testing.T) {
	ch := model.Channel{SSRC: 7, FrequencyHz: 15_000_000, Description: "WWV 15 MHz"}
	var buf bytes.Buffer
	require.NoError(t, encodeChannelIdentity(&buf, ch))
	assert.Equal(t, channelIdentitySize, buf.Len())

	got, err := decodeChannelIdentity(&buf)
	require.NoError(t, err)
	assert.Equal(t, ch, got)
}

func TestDiscontinuityRoundTripsThroughEncodeDecode(t *testing.T) {
	d := model.Discontinuity{StartRTP: 100, LengthSamples: 4000, Kind: model.NetworkGap, WallInstant: 1_700_000_000, RelatedToTimingEvent: true}
	var buf bytes.Buffer
	require.NoError(t, encodeDiscontinuity(&buf, d))

	got, err := DecodeDiscontinuity(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestTimeSnapRoundTripsThroughEncodeDecode(t *testing.T) {
	snap := model.TimeSnap{RTPTimestamp: 42, UTCTimestamp: 1_700_000_000_000_000_000, Source: model.SourceCHUTone, Confidence: 0.92, EstablishedAt: 1_700_000_001_000_000_000}
	var buf bytes.Buffer
	require.NoError(t, encodeTimeSnap(&buf, snap))
	assert.Equal(t, timeSnapEncodedSize, buf.Len())

	got, err := DecodeTimeSnapUpdate(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}
