package config

// This file implements YAML profile loading. A profile describes the
// conversion target (container, codec, sizing) plus the ffmpeg argument
// sets, so several batches can share one checked-in target definition.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the YAML shape of a conversion target. Zero-valued fields keep
// the Config defaults, so a profile may override just one setting.
type Profile struct {
	Container  string   `yaml:"container"`
	Extension  string   `yaml:"extension"`
	Codec      string   `yaml:"codec"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	GlobalOpts []string `yaml:"global_opts"`
	EncodeOpts []string `yaml:"encode_opts"`
	ScaleFlags string   `yaml:"scale_flags"`
}

// LoadProfile reads path and applies its non-zero fields onto cfg.
// Called between DefaultConfig and flag overrides, so explicit flags
// still win over the profile file.
func LoadProfile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}

	if p.Container != "" {
		cfg.TargetContainer = p.Container
	}
	if p.Extension != "" {
		cfg.ContainerExt = p.Extension
	}
	if p.Codec != "" {
		cfg.TargetCodec = p.Codec
	}
	if p.Width > 0 {
		cfg.TargetWidth = p.Width
	}
	if p.Height > 0 {
		cfg.TargetHeight = p.Height
	}
	if len(p.GlobalOpts) > 0 {
		cfg.FFmpegGlobalOpts = p.GlobalOpts
	}
	if len(p.EncodeOpts) > 0 {
		cfg.FFmpegEncodeOpts = p.EncodeOpts
	}
	if p.ScaleFlags != "" {
		cfg.ScaleFlags = p.ScaleFlags
	}
	return nil
}
