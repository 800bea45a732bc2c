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

package hostclock

import (
	"fmt"
	"math"
	"net"
	"os"
	"path"
	"time"

	"github.com/mijahauan/signal-recorder-sub008/ntp/chrony"
)

// ChronyChecker queries a local chronyd over its control socket using
// the tracking request, reduced to the single "is the host synced,
// and how well" question the quality annotator needs.
type ChronyChecker struct {
	client  *chrony.Client
	conn    *net.UnixConn
	localSockPath string
}

// NewChronyChecker dials chronyd's unixgram control socket (typically
// /var/run/chrony/chronyd.sock).
func NewChronyChecker(sockPath string) (*ChronyChecker, error) {
	base, _ := path.Split(sockPath)
	local := path.Join(base, fmt.Sprintf("signal-recorder.%d.sock", os.Getpid()))
	conn, err := net.DialUnix("unixgram",
		&net.UnixAddr{Name: local, Net: "unixgram"},
		&net.UnixAddr{Name: sockPath, Net: "unixgram"},
	)
	if err != nil {
		return nil, fmt.Errorf("hostclock: dialing chronyd at %s: %w", sockPath, err)
	}
	if err := os.Chmod(local, 0o666); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hostclock: setting permissions on local control socket: %w", err)
	}
	return &ChronyChecker{
		client:        &chrony.Client{Connection: conn},
		conn:          conn,
		localSockPath: local,
	}, nil
}

// Check issues a tracking request and translates the reply into a
// Status. Stratum 16 (chrony's "unsynchronized" sentinel) is always
// reported as unsynced, regardless of the numeric offset in the
// reply.
func (c *ChronyChecker) Check() (Status, error) {
	resp, err := c.client.Communicate(chrony.NewTrackingPacket())
	if err != nil {
		return Status{}, fmt.Errorf("hostclock: chrony tracking request failed: %w", err)
	}
	tracking, ok := resp.(*chrony.ReplyTracking)
	if !ok {
		return Status{}, fmt.Errorf("hostclock: unexpected chrony reply type %T", resp)
	}
	synced := int(tracking.Stratum) < UnsyncedStratum
	return Status{
		Synced:    synced,
		Stratum:   int(tracking.Stratum),
		OffsetMs:  math.Abs(tracking.LastOffset) * 1000.0,
		Source:    tracking.IPAddr.String(),
		SampledAt: time.Now(),
	}, nil
}

// Close removes the local control socket.
func (c *ChronyChecker) Close() error {
	err := c.conn.Close()
	os.Remove(c.localSockPath)
	return err
}
