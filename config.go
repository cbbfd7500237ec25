// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wavecycle/wavecycle/audio"
)

// Config is the static session configuration. Values are fixed before the
// pipelines start and are not reconfigurable mid session.
type Config struct {
	RecordSeconds int    `yaml:"record_seconds"`
	SampleRate    uint32 `yaml:"sample_rate"`
	BitDepth      int    `yaml:"bit_depth"`
	Layout        string `yaml:"layout"` // mono or stereo
	BufferSize    int    `yaml:"buffer_size"`
	StorageDir    string `yaml:"storage_dir"`
	LogLevel      string `yaml:"log_level"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		RecordSeconds: 10,
		SampleRate:    44100,
		BitDepth:      16,
		Layout:        "mono",
		BufferSize:    audio.DefaultBufferSize,
		StorageDir:    "sd",
		LogLevel:      "info",
	}
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("config validation failed: %w", err)
	}
	return conf, nil
}

func (c Config) Validate() error {
	if err := c.Format().Validate(); err != nil {
		return err
	}
	if c.RecordSeconds < 1 {
		return fmt.Errorf("record_seconds must be at least 1, got %d", c.RecordSeconds)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}
	return nil
}

func (c Config) Format() audio.Format {
	return audio.Format{
		SampleRate: c.SampleRate,
		BitDepth:   c.BitDepth,
		Layout:     c.channelLayout(),
	}
}

func (c Config) channelLayout() audio.ChannelLayout {
	switch c.Layout {
	case "mono":
		return audio.Mono
	case "stereo":
		return audio.Stereo
	}
	return 0
}

func (c Config) RecordDuration() time.Duration {
	return time.Duration(c.RecordSeconds) * time.Second
}

// TargetBytes is the recording quota:
// duration * sampleRate * bytesPerSample * channels.
func (c Config) TargetBytes() uint64 {
	return c.Format().BytesForDuration(c.RecordDuration())
}

type fileKey struct {
	layout audio.ChannelLayout
	bits   int
}

// Recognized format combinations map to fixed file names on storage.
var recordingFileNames = map[fileKey]string{
	{audio.Mono, 16}:   "mic_mono_16bits.wav",
	{audio.Mono, 32}:   "mic_mono_32bits.wav",
	{audio.Stereo, 16}: "mic_stereo_16bits.wav",
	{audio.Stereo, 32}: "mic_stereo_32bits.wav",
}

// FileName returns the recording file name for the configured format.
// Combinations outside the table, reachable only when validation was
// skipped, still get a stable derived name.
func (c Config) FileName() string {
	if name, ok := recordingFileNames[fileKey{c.channelLayout(), c.BitDepth}]; ok {
		return name
	}
	return fmt.Sprintf("mic_%s_%dbits.wav", c.Layout, c.BitDepth)
}
