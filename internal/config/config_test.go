package config

import (
	"testing"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/library", "/media/library"},
		{"single trailing slash", "/media/library/", "/media/library"},
		{"multiple trailing slashes", "/media/library///", "/media/library"},
		{"root path", "/", "/"},
		{"relative path", "videos", "videos"},
		{"relative with slash", "videos/", "videos"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "sometimes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true // skip path requirement
			cfg.ColorMode = tt.mode
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_TargetProfile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty container", func(c *Config) { c.TargetContainer = "" }, true},
		{"empty codec", func(c *Config) { c.TargetCodec = "" }, true},
		{"extension with dot", func(c *Config) { c.ContainerExt = ".mkv" }, true},
		{"empty extension", func(c *Config) { c.ContainerExt = "" }, true},
		{"zero height", func(c *Config) { c.TargetHeight = 0 }, true},
		{"negative width", func(c *Config) { c.TargetWidth = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RequiresScanRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScanRoot = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when ScanRoot is empty and CheckOnly is false")
	}

	cfg.ScanRoot = "/videos"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_QueueDirDefaultsToScanRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScanRoot = "/videos"
	cfg.QueueDir = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.QueueDir != "/videos" {
		t.Errorf("QueueDir = %q, want %q", cfg.QueueDir, "/videos")
	}

	cfg2 := DefaultConfig()
	cfg2.ScanRoot = "/videos"
	cfg2.QueueDir = "/var/lib/batchmux"
	if err := cfg2.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg2.QueueDir != "/var/lib/batchmux" {
		t.Errorf("explicit QueueDir overwritten: %q", cfg2.QueueDir)
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TargetContainer != "Matroska" {
		t.Errorf("default TargetContainer = %q, want Matroska", cfg.TargetContainer)
	}
	if cfg.ContainerExt != "mkv" {
		t.Errorf("default ContainerExt = %q, want mkv", cfg.ContainerExt)
	}
	if cfg.TargetCodec != "AV1" {
		t.Errorf("default TargetCodec = %q, want AV1", cfg.TargetCodec)
	}
	if cfg.TargetWidth != 1280 || cfg.TargetHeight != 720 {
		t.Errorf("default size = %dx%d, want 1280x720", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.DryRun {
		t.Error("default DryRun should be false")
	}
	if cfg.DeleteStale {
		t.Error("default DeleteStale should be false")
	}
	if len(cfg.FFmpegEncodeOpts) == 0 {
		t.Error("default FFmpegEncodeOpts should not be empty")
	}
}
