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

// Package ingest receives RTP-carried IQ streams over UDP multicast,
// demultiplexes them by SSRC and reassembles each channel's sample
// timeline, classifying every break per spec section 4.1.
package ingest

import (
	"context"
	"fmt"
	"net"

	"github.com/pion/rtp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// ReceiverConfig describes the multicast group a Receiver joins.
type ReceiverConfig struct {
	GroupAddr string // e.g. "239.10.10.10:5004"
	Iface     *net.Interface
	ReadBufferBytes int
}

// Receiver joins one multicast RTP group and demultiplexes datagrams
// by SSRC onto per-channel Reassemblers. One Receiver typically
// carries every channel for one SDR front end (spec section 3: a
// single RTP stream multiplexes many SSRCs).
type Receiver struct {
	cfg   ReceiverConfig
	conn  *net.UDPConn
	pconn *ipv4.PacketConn

	reassemblers map[uint32]*Reassembler
}

// NewReceiver joins the configured multicast group. The caller owns
// the returned Receiver's lifecycle via Run's context.
func NewReceiver(cfg ReceiverConfig) (*Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp4", cfg.GroupAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving group address: %v", model.ErrFatal, err)
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: addr.IP, Port: addr.Port})
	if err != nil {
		return nil, fmt.Errorf("%w: listening on %s: %v", model.ErrTransient, cfg.GroupAddr, err)
	}
	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.JoinGroup(cfg.Iface, &net.UDPAddr{IP: addr.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: joining multicast group %s: %v", model.ErrFatal, addr.IP, err)
	}
	if cfg.ReadBufferBytes > 0 {
		_ = conn.SetReadBuffer(cfg.ReadBufferBytes)
	}
	return &Receiver{
		cfg:          cfg,
		conn:         conn,
		pconn:        pconn,
		reassemblers: make(map[uint32]*Reassembler),
	}, nil
}

// Register attaches a Reassembler for the given SSRC; datagrams for
// unregistered SSRCs are logged once and dropped.
func (r *Receiver) Register(ssrc uint32, re *Reassembler) {
	r.reassemblers[ssrc] = re
}

// Close leaves the multicast group and closes the underlying socket.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// Run reads datagrams until ctx is cancelled or the socket errors.
// Each datagram is parsed as RTP and routed to its SSRC's Reassembler.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, 2048)
	unknown := make(map[uint32]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_ = r.conn.SetReadDeadline(deadlineFromCtx(ctx))
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fmt.Errorf("%w: reading multicast datagram: %v", model.ErrTransient, err)
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			log.WithError(err).Debug("ingest: dropping malformed RTP datagram")
			continue
		}
		re, ok := r.reassemblers[pkt.SSRC]
		if !ok {
			if !unknown[pkt.SSRC] {
				log.WithField("ssrc", pkt.SSRC).Warn("ingest: datagram for unregistered SSRC")
				unknown[pkt.SSRC] = true
			}
			continue
		}
		frame := model.RTPFrame{
			SSRC:      pkt.SSRC,
			Sequence:  pkt.SequenceNumber,
			Timestamp: pkt.Timestamp,
			Payload:   append([]byte(nil), pkt.Payload...),
			Arrival:   nowFunc(),
		}
		re.Push(frame)
	}
}
