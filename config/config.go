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

// Package config loads the recorder's YAML configuration file: the
// channel roster, archive/status-file paths, and the tunable
// thresholds spec section 4 leaves as operator-configurable defaults.
// A dedicated TOML loader is explicitly out of scope; YAML is this
// repository's only config format.
package config

import (
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// ChannelConfig describes one RTP SSRC to ingest.
type ChannelConfig struct {
	SSRC        uint32 `yaml:"ssrc"`
	FrequencyHz uint64 `yaml:"frequency_hz"`
	Description string `yaml:"description"`
	Encoding    string `yaml:"encoding"` // "pcm16" or "float32"
}

// Thresholds collects the operator-tunable constants spec sections
// 4.4–4.10 name as defaults.
type Thresholds struct {
	MinuteGrace             time.Duration `yaml:"minute_grace"`
	CompletenessFloor       float64       `yaml:"completeness_floor"`
	MinDetectionConfidence  float64       `yaml:"min_detection_confidence"`
	MinDetectionSNRdB       float64       `yaml:"min_detection_snr_db"`
	DiskFreeFloorBytes      uint64        `yaml:"disk_free_floor_bytes"`
	FusionWeightFormula     string        `yaml:"fusion_weight_formula"`
}

// Config is the recorder's top-level configuration.
type Config struct {
	MulticastGroup string          `yaml:"multicast_group"`
	Interface      string          `yaml:"interface"`
	ArchiveDir     string          `yaml:"archive_dir"`
	StatusDir      string          `yaml:"status_dir"`
	ReceiverLat    float64         `yaml:"receiver_lat"`
	ReceiverLon    float64         `yaml:"receiver_lon"`
	ChronySocket   string          `yaml:"chrony_socket"`
	Channels       []ChannelConfig `yaml:"channels"`
	Thresholds     Thresholds      `yaml:"thresholds"`
}

// defaultConfig mirrors the spec's stated defaults so an operator's
// YAML file only needs to override what differs.
func defaultConfig() *Config {
	return &Config{
		ChronySocket: "/var/run/chrony/chronyd.sock",
		Thresholds: Thresholds{
			MinuteGrace:            500 * time.Millisecond,
			CompletenessFloor:      0.5,
			MinDetectionConfidence: 0.7,
			MinDetectionSNRdB:      15.0,
			DiskFreeFloorBytes:     1 << 30, // 1 GiB
		},
	}
}

// ReadConfig reads and parses path, overlaying onto defaultConfig so
// an operator's file need only name what it overrides.
func ReadConfig(path string) (*Config, error) {
	c := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
