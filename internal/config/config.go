// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPath is the fixed relative location of the configuration file.
const DefaultPath = "config.json"

// ErrMissing indicates that the configuration file does not exist.
var ErrMissing = errors.New("config.json not found (run 'frogmpeg init' to create one)")

// ErrEncoderNotFound indicates the configured ffmpeg executable is absent.
var ErrEncoderNotFound = errors.New("encoder executable not found")

// KeyError reports a missing or empty required configuration key.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("missing required key %q in config.json", e.Key)
}

// Preset is a named bundle of encoding parameters that overrides the
// configured defaults. Presets are read-only; selecting one never
// mutates the configuration.
type Preset struct {
	Name        string `json:"name"`
	Resolution  string `json:"resolution"`
	Bitrate     string `json:"bitrate"`
	FPS         int    `json:"fps"`
	Description string `json:"description,omitempty"`
}

// Width returns the horizontal component of the preset resolution.
func (p Preset) Width() int {
	w, _, _ := splitResolution(p.Resolution)
	return w
}

// Height returns the vertical component of the preset resolution.
func (p Preset) Height() int {
	_, h, _ := splitResolution(p.Resolution)
	return h
}

func splitResolution(res string) (int, int, error) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution %q (expected WIDTHxHEIGHT)", res)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %v", res, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %v", res, err)
	}
	return w, h, nil
}

// Defaults holds the fallback encoding parameters used when a preset
// does not apply or no preset is selected.
type Defaults struct {
	Resolution    string `json:"resolution"`
	Bitrate       string `json:"bitrate"`
	FileExtension string `json:"file_extension"`
	FPS           int    `json:"fps"`
	PresetName    string `json:"preset_name,omitempty"`
}

// Encoding holds encoder tuning shared by every invocation.
type Encoding struct {
	UseGPU           bool   `json:"use_gpu"`
	GPUPreset        string `json:"gpu_preset"`
	CPUPreset        string `json:"cpu_preset"`
	Tune             string `json:"tune"`
	PixelFormat      string `json:"pixel_format"`
	KeyframeInterval int    `json:"keyframe_interval"`
	BFrames          int    `json:"b_frames"`
	RCLookahead      int    `json:"rc_lookahead"`
	SpatialAQ        int    `json:"spatial_aq"`
	TemporalAQ       int    `json:"temporal_aq"`
}

// UI holds interactive front end preferences.
type UI struct {
	Theme            string `json:"theme"`
	ShowFileCount    bool   `json:"show_file_count"`
	AutoSelectLatest bool   `json:"auto_select_latest"`
}

// Config is the immutable configuration document. It is loaded once at
// startup and passed explicitly to every component.
type Config struct {
	ProjectName      string   `json:"project_name"`
	RendersFolder    string   `json:"renders_folder"`
	OutputFolder     string   `json:"output_folder"`
	FFmpegPath       string   `json:"ffmpeg_path"`
	AutoCreateOutput bool     `json:"auto_create_output"`
	Defaults         Defaults `json:"defaults"`
	Presets          []Preset `json:"presets"`
	Encoding         Encoding `json:"encoding"`
	UI               UI       `json:"ui"`
}

// Default returns the built-in configuration used as the `init`
// template and as the base layer for optional blocks.
func Default() *Config {
	return &Config{
		ProjectName:      "My Render Project",
		RendersFolder:    "renders",
		OutputFolder:     "output",
		FFmpegPath:       "ffmpeg",
		AutoCreateOutput: true,
		Defaults: Defaults{
			Resolution:    "1920x1080",
			Bitrate:       "50M",
			FileExtension: "jpeg",
			FPS:           30,
		},
		Presets: []Preset{
			{Name: "preview", Resolution: "1280x720", Bitrate: "10M", FPS: 30, Description: "Quick low-bitrate preview"},
			{Name: "fullhd", Resolution: "1920x1080", Bitrate: "50M", FPS: 30, Description: "Full HD delivery"},
			{Name: "fulldome-2k", Resolution: "2048x2048", Bitrate: "100M", FPS: 60, Description: "2K fulldome master"},
		},
		Encoding: Encoding{
			UseGPU:           true,
			GPUPreset:        "p7",
			CPUPreset:        "veryslow",
			Tune:             "animation",
			PixelFormat:      "yuv420p",
			KeyframeInterval: 60,
			BFrames:          3,
			RCLookahead:      32,
			SpatialAQ:        1,
			TemporalAQ:       1,
		},
		UI: UI{
			Theme:            "frog",
			ShowFileCount:    true,
			AutoSelectLatest: true,
		},
	}
}

// Load reads the configuration from the fixed relative path.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom reads and validates a configuration document. A missing file
// yields ErrMissing; malformed JSON or an absent required key yields an
// error naming the problem. The returned Config is never mutated by any
// other component.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes a configuration document. Optional blocks (encoding,
// ui) fall back to the built-in defaults; required keys must be
// present and non-empty. Only the optional blocks are prefilled so a
// missing required key is still detected as missing.
func Parse(data []byte) (*Config, error) {
	base := Default()
	cfg := &Config{
		AutoCreateOutput: true,
		Encoding:         base.Encoding,
		UI:               base.UI,
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config.json: %v", err)
	}

	required := []struct {
		key   string
		value string
	}{
		{"project_name", cfg.ProjectName},
		{"renders_folder", cfg.RendersFolder},
		{"output_folder", cfg.OutputFolder},
		{"ffmpeg_path", cfg.FFmpegPath},
		{"defaults.resolution", cfg.Defaults.Resolution},
		{"defaults.bitrate", cfg.Defaults.Bitrate},
		{"defaults.file_extension", cfg.Defaults.FileExtension},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &KeyError{Key: r.key}
		}
	}
	if cfg.Defaults.FPS <= 0 {
		return nil, &KeyError{Key: "defaults.fps"}
	}

	seen := make(map[string]bool, len(cfg.Presets))
	for _, p := range cfg.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return nil, &KeyError{Key: "presets[].name"}
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset %q in config.json", p.Name)
		}
		seen[p.Name] = true
		if _, _, err := splitResolution(p.Resolution); err != nil {
			return nil, fmt.Errorf("preset %q: %v", p.Name, err)
		}
	}
	if _, _, err := splitResolution(cfg.Defaults.Resolution); err != nil {
		return nil, fmt.Errorf("defaults: %v", err)
	}

	cfg.RendersFolder = expandPath(cfg.RendersFolder)
	cfg.OutputFolder = expandPath(cfg.OutputFolder)
	cfg.FFmpegPath = expandPath(cfg.FFmpegPath)

	return cfg, nil
}

// ResolvePreset returns the preset to use for a job. An explicit name
// wins, then defaults.preset_name, then a synthetic preset built from
// the defaults. Only keys present in the preset override the defaults:
// presets carry the full parameter set, so the merge happens when the
// synthetic preset is built.
func (c *Config) ResolvePreset(name string) (Preset, error) {
	if name != "" {
		if p, ok := c.findPreset(name); ok {
			return p, nil
		}
		return Preset{}, fmt.Errorf("preset %q not found in config.json", name)
	}
	if c.Defaults.PresetName != "" {
		if p, ok := c.findPreset(c.Defaults.PresetName); ok {
			return p, nil
		}
		return Preset{}, fmt.Errorf("default preset %q not found in presets", c.Defaults.PresetName)
	}
	return Preset{
		Name:        "defaults",
		Resolution:  c.Defaults.Resolution,
		Bitrate:     c.Defaults.Bitrate,
		FPS:         c.Defaults.FPS,
		Description: "Built from configuration defaults",
	}, nil
}

func (c *Config) findPreset(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetNames returns the preset names in configuration order.
func (c *Config) PresetNames() []string {
	names := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		names[i] = p.Name
	}
	return names
}

// CheckEncoder verifies the configured encoder executable exists
// before any conversion is attempted.
func (c *Config) CheckEncoder() error {
	if !executableExists(c.FFmpegPath) {
		return fmt.Errorf("%w at %s", ErrEncoderNotFound, c.FFmpegPath)
	}
	return nil
}

// Validate checks the environment the configuration points at and
// returns every failure found, not just the first.
func (c *Config) Validate() []error {
	var errs []error

	if !executableExists(c.FFmpegPath) {
		errs = append(errs, fmt.Errorf("%w at %s", ErrEncoderNotFound, c.FFmpegPath))
	}
	if info, err := os.Stat(c.RendersFolder); err != nil || !info.IsDir() {
		errs = append(errs, fmt.Errorf("renders folder missing: %s", c.RendersFolder))
	}
	if info, err := os.Stat(c.OutputFolder); err != nil || !info.IsDir() {
		if c.AutoCreateOutput {
			errs = append(errs, fmt.Errorf("output folder missing (will be created on first conversion): %s", c.OutputFolder))
		} else {
			errs = append(errs, fmt.Errorf("output folder missing: %s", c.OutputFolder))
		}
	}

	return errs
}

// executableExists resolves bare command names through PATH and
// explicit paths through Stat.
func executableExists(path string) bool {
	if strings.ContainsRune(path, os.PathSeparator) || strings.ContainsRune(path, '/') {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(path)
	return err == nil
}

// WriteTemplate materializes the built-in default configuration at
// path. Unless overwrite is set it refuses to replace an existing file.
func WriteTemplate(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
