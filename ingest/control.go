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
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// ControlClient sends to a multicast control group from a second,
// outbound-capable socket so the recorder can tune the upstream SDR's
// channel roster without disturbing the read side: a distinct
// out-of-band TLV control channel, never multiplexed onto the sample
// stream itself.
type ControlClient struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	dst   *net.UDPAddr
}

// NewControlClient opens a socket that sends via iface with the multicast
// parameters the ingest ambient stack requires: outbound interface
// pinned, TTL raised above the LAN-local default so the control
// message actually reaches routed SDR front ends, and loopback enabled
// so a co-located SDR simulator can be driven during development.
func NewControlClient(groupAddr string, iface *net.Interface) (*ControlClient, error) {
	dst, err := net.ResolveUDPAddr("udp4", groupAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving control group address: %v", model.ErrFatal, err)
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("%w: opening control socket: %v", model.ErrTransient, err)
	}
	pconn := ipv4.NewPacketConn(conn)
	if iface != nil {
		if err := pconn.SetMulticastInterface(iface); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: setting multicast interface: %v", model.ErrFatal, err)
		}
	}
	if err := pconn.SetMulticastTTL(2); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: setting multicast TTL: %v", model.ErrFatal, err)
	}
	if err := pconn.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: enabling multicast loopback: %v", model.ErrFatal, err)
	}
	return &ControlClient{conn: conn, pconn: pconn, dst: dst}, nil
}

// TLVTag identifies a control message's payload shape.
type TLVTag uint8

const (
	TagAddChannel TLVTag = iota + 1
	TagRemoveChannel
	TagSetGain
)

// SendTLV encodes {tag, length, value} and sends it to the control
// group, the wire shape for adding or removing a channel or setting
// its gain (TagAddChannel, TagRemoveChannel, TagSetGain).
func (c *ControlClient) SendTLV(tag TLVTag, value []byte) error {
	if len(value) > 0xffff {
		return fmt.Errorf("%w: TLV value too large (%d bytes)", model.ErrProtocol, len(value))
	}
	buf := make([]byte, 3+len(value))
	buf[0] = byte(tag)
	buf[1] = byte(len(value) >> 8)
	buf[2] = byte(len(value))
	copy(buf[3:], value)
	_, err := c.conn.WriteToUDP(buf, c.dst)
	if err != nil {
		return fmt.Errorf("%w: sending control TLV: %v", model.ErrTransient, err)
	}
	return nil
}

// Close releases the control socket.
func (c *ControlClient) Close() error {
	return c.conn.Close()
}
