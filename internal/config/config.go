package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/zone"
)

const (
	// Calibration defaults (reference photo: 5 cm marker, 100 px wide at 50 cm)
	DefaultMarkerWidthCm    = 5.0
	DefaultKnownDistanceCm  = 50.0
	DefaultReferenceWidthPx = 100.0

	// Window presentation
	WindowTitle = "Phone Tracker"
	PromptText  = "Show QR-code"

	// Terminal presentation
	TargetFPS      = 30 // Terminal redraw rate
	HistoryLen     = 120
	ScopeAspect    = 0.5 // Terminal char aspect correction (chars are ~2:1 tall)
	SearchSpinRPM  = 30  // Search indicator rotations per minute while the marker is lost
	StatsPollEvery = 250 * time.Millisecond

	// Demo mode
	DemoWidth    = 640
	DemoHeight   = 480
	DemoFPS      = 30
	DemoDropRate = 0.03 // Share of synthetic frames reported as dropped

	// App
	AppName    = "MARKER-TRACKER"
	AppVersion = "1.0"
)

// Source kinds.
const (
	SourceCamera = "camera"
	SourceFile   = "file"
	SourceScreen = "screen"
	SourceDemo   = "demo"
)

// Decoder kinds.
const (
	DecoderQR    = "qr"
	DecoderAruco = "aruco"
)

// Display modes.
const (
	DisplayWindow = "window"
	DisplayTUI    = "tui"
	DisplayLog    = "log"
)

// Config is the complete startup configuration. There is no runtime
// reconfiguration.
type Config struct {
	Calibration CalibrationConfig `yaml:"calibration"`
	Marker      MarkerConfig      `yaml:"marker"`
	Source      SourceConfig      `yaml:"source"`
	Display     DisplayConfig     `yaml:"display"`
	Retry       RetryConfig       `yaml:"retry"`
	Log         LogConfig         `yaml:"log"`
}

// CalibrationConfig holds the operator's reference measurement.
type CalibrationConfig struct {
	MarkerWidthCm    float64 `yaml:"marker_width_cm"`
	KnownDistanceCm  float64 `yaml:"known_distance_cm"`
	ReferenceWidthPx float64 `yaml:"reference_width_px"`
}

// MarkerConfig describes what to look for.
type MarkerConfig struct {
	Payload           string `yaml:"payload"` // Exact payload; decimal id for aruco
	Decoder           string `yaml:"decoder"` // qr, aruco
	CenterTolerancePx int    `yaml:"center_tolerance_px"`
}

// SourceConfig selects the frame source.
type SourceConfig struct {
	Kind   string `yaml:"kind"`   // camera, file, screen, demo
	Device string `yaml:"device"` // camera index or video file path
}

// DisplayConfig selects the presenter.
type DisplayConfig struct {
	Mode string `yaml:"mode"` // window, tui, log
}

// RetryConfig bounds the reaction to dropped frames. Zero values keep the
// retry-forever default.
type RetryConfig struct {
	MaxSoftFailures int           `yaml:"max_soft_failures"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	MaxRetryDelay   time.Duration `yaml:"max_retry_delay"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		Calibration: CalibrationConfig{
			MarkerWidthCm:    DefaultMarkerWidthCm,
			KnownDistanceCm:  DefaultKnownDistanceCm,
			ReferenceWidthPx: DefaultReferenceWidthPx,
		},
		Marker: MarkerConfig{
			Payload:           marker.DefaultPayload,
			Decoder:           DecoderQR,
			CenterTolerancePx: zone.DefaultTolerance,
		},
		Source: SourceConfig{
			Kind:   SourceCamera,
			Device: "0",
		},
		Display: DisplayConfig{
			Mode: DisplayWindow,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	cal := c.Calibration
	if _, err := calibration.FocalLength(cal.ReferenceWidthPx, cal.KnownDistanceCm, cal.MarkerWidthCm); err != nil {
		errs = append(errs, err)
	}
	if c.Marker.Payload == "" {
		errs = append(errs, errors.New("marker payload must not be empty"))
	}
	if c.Marker.CenterTolerancePx < 0 {
		errs = append(errs, fmt.Errorf("center tolerance must be >= 0 (got %d)", c.Marker.CenterTolerancePx))
	}
	if !oneOf(c.Marker.Decoder, DecoderQR, DecoderAruco) {
		errs = append(errs, fmt.Errorf("unknown decoder %q", c.Marker.Decoder))
	}
	if !oneOf(c.Source.Kind, SourceCamera, SourceFile, SourceScreen, SourceDemo) {
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source.Kind))
	}
	if (c.Source.Kind == SourceCamera || c.Source.Kind == SourceFile) && c.Source.Device == "" {
		errs = append(errs, fmt.Errorf("source %q needs a device", c.Source.Kind))
	}
	if !oneOf(c.Display.Mode, DisplayWindow, DisplayTUI, DisplayLog) {
		errs = append(errs, fmt.Errorf("unknown display mode %q", c.Display.Mode))
	}
	r := c.Retry
	if r.MaxSoftFailures < 0 || r.RetryDelay < 0 || r.MaxRetryDelay < 0 {
		errs = append(errs, errors.New("retry settings must not be negative"))
	}
	if r.MaxRetryDelay > 0 && r.MaxRetryDelay < r.RetryDelay {
		errs = append(errs, fmt.Errorf("max retry delay %v is below retry delay %v", r.MaxRetryDelay, r.RetryDelay))
	}
	if !oneOf(strings.ToLower(c.Log.Level), "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
