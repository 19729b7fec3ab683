package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"marker-tracker.klederson.com/internal/app"
	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/camera"
	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/demo"
	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
	"marker-tracker.klederson.com/internal/zone"
)

var (
	flagConfig          string
	flagSource          string
	flagDevice          string
	flagDecoder         string
	flagDisplay         string
	flagPayload         string
	flagTolerance       int
	flagMarkerWidth     float64
	flagKnownDistance   float64
	flagReferenceWidth  float64
	flagMaxSoftFailures int
	flagRetryDelay      time.Duration
	flagMaxRetryDelay   time.Duration
	flagLogLevel        string
	flagLogFile         string
	flagDemo            bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "marker-tracker",
		Short: "Marker Tracker - locate a QR marker in live video and estimate its range",
		Long: `Marker Tracker watches a video stream for a marker with a known payload,
reports which zone of the frame it sits in (center or one of four quadrants)
and estimates its distance from its apparent width.

Calibrate once with a reference photo: the marker's real width, the distance
it was photographed at and its width in pixels in that photo.
Use --demo for a synthetic scene without a camera.`,
		SilenceUsage: true,
		RunE:         run,
	}

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "YAML configuration file")
	f.StringVar(&flagSource, "source", config.SourceCamera, "Frame source: camera, file, screen or demo")
	f.StringVar(&flagDevice, "device", "0", "Camera index or video file path")
	f.StringVar(&flagDecoder, "decoder", config.DecoderQR, "Marker decoder: qr or aruco")
	f.StringVar(&flagDisplay, "display", config.DisplayWindow, "Display: window, tui or log")
	f.StringVar(&flagPayload, "payload", marker.DefaultPayload, "Expected marker payload (decimal id for aruco)")
	f.IntVar(&flagTolerance, "tolerance", zone.DefaultTolerance, "Center dead-zone half-width in pixels")
	f.IntVar(&flagMaxSoftFailures, "max-soft-failures", 0, "Give up after this many consecutive dropped frames (0 = never)")
	f.DurationVar(&flagRetryDelay, "retry-delay", 0, "Initial wait after a dropped frame, doubled per consecutive drop")
	f.DurationVar(&flagMaxRetryDelay, "max-retry-delay", 0, "Upper bound for the retry wait")
	f.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	f.StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	f.BoolVar(&flagDemo, "demo", false, "Shorthand for --source demo")
	addCalibrationFlags(rootCmd)

	focalCmd := &cobra.Command{
		Use:          "focal",
		Short:        "Print the focal length derived from the calibration values",
		SilenceUsage: true,
		RunE:         runFocal,
	}
	focalCmd.Flags().StringVar(&flagConfig, "config", "", "YAML configuration file")
	addCalibrationFlags(focalCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", config.AppName, config.AppVersion)
		},
	}

	rootCmd.AddCommand(focalCmd, versionCmd)
	return rootCmd
}

func addCalibrationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&flagMarkerWidth, "marker-width", config.DefaultMarkerWidthCm, "Real marker width in cm")
	f.Float64Var(&flagKnownDistance, "known-distance", config.DefaultKnownDistanceCm, "Distance of the reference photo in cm")
	f.Float64Var(&flagReferenceWidth, "reference-width", config.DefaultReferenceWidthPx, "Marker width in the reference photo in px")
}

// loadConfig layers the config file and then any explicitly set flags
// over the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("source") {
		cfg.Source.Kind = flagSource
	}
	if set("device") {
		cfg.Source.Device = flagDevice
	}
	if flagDemo {
		cfg.Source.Kind = config.SourceDemo
	}
	if set("decoder") {
		cfg.Marker.Decoder = flagDecoder
	}
	if set("display") {
		cfg.Display.Mode = flagDisplay
	}
	if set("payload") {
		cfg.Marker.Payload = flagPayload
	}
	if set("tolerance") {
		cfg.Marker.CenterTolerancePx = flagTolerance
	}
	if set("marker-width") {
		cfg.Calibration.MarkerWidthCm = flagMarkerWidth
	}
	if set("known-distance") {
		cfg.Calibration.KnownDistanceCm = flagKnownDistance
	}
	if set("reference-width") {
		cfg.Calibration.ReferenceWidthPx = flagReferenceWidth
	}
	if set("max-soft-failures") {
		cfg.Retry.MaxSoftFailures = flagMaxSoftFailures
	}
	if set("retry-delay") {
		cfg.Retry.RetryDelay = flagRetryDelay
	}
	if set("max-retry-delay") {
		cfg.Retry.MaxRetryDelay = flagMaxRetryDelay
	}
	if set("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if set("log-file") {
		cfg.Log.File = flagLogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runFocal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cal := cfg.Calibration
	m, err := calibration.New(cal.ReferenceWidthPx, cal.KnownDistanceCm, cal.MarkerWidthCm)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "focal length: %.2f px\n", m.FocalLength)
	for _, w := range []int{50, 100, 200} {
		d, _ := m.Distance(w)
		fmt.Fprintf(out, "  %4d px wide -> %.1f cm\n", w, d)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w, closeLog, err := logOutput(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := NewLogger(parseLevel(cfg.Log.Level), w).With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	src := newSource(cfg, logger)
	dec := newDecoder(cfg)
	if c, ok := dec.(io.Closer); ok {
		defer c.Close()
	}
	settings := tracker.Settings{
		Payload:          cfg.Marker.Payload,
		Tolerance:        cfg.Marker.CenterTolerancePx,
		MarkerWidthCm:    cfg.Calibration.MarkerWidthCm,
		KnownDistanceCm:  cfg.Calibration.KnownDistanceCm,
		ReferenceWidthPx: cfg.Calibration.ReferenceWidthPx,
		Retry: tracker.RetryPolicy{
			MaxConsecutive: cfg.Retry.MaxSoftFailures,
			Delay:          cfg.Retry.RetryDelay,
			MaxDelay:       cfg.Retry.MaxRetryDelay,
		},
	}

	logger.Info("main: starting",
		"version", config.AppVersion,
		"source", cfg.Source.Kind,
		"device", cfg.Source.Device,
		"decoder", cfg.Marker.Decoder,
		"display", cfg.Display.Mode,
	)

	var loop *tracker.Loop
	switch cfg.Display.Mode {
	case config.DisplayTUI:
		loop, err = runTUI(ctx, cancel, cfg, src, dec, settings, logger)
	case config.DisplayLog:
		loop = tracker.New(src, dec, app.NewLogPresenter(logger), settings, logger)
		err = loop.Run(ctx)
	default:
		loop = tracker.New(src, dec, camera.NewWindow(config.WindowTitle, cancel), settings, logger)
		err = loop.Run(ctx)
	}

	st := loop.Stats()
	if err != nil {
		logger.Error("main: tracker failed", "error", err, "frames", st.Frames)
		return err
	}
	logger.Info("main: stopped",
		"reason", context.Cause(ctx),
		"frames", st.Frames,
		"soft_failures", st.SoftFailures,
		"found", st.Found,
		"not_found", st.NotFound,
	)
	return nil
}

// runTUI runs the Bubble Tea program on this goroutine and the tracking
// loop on another.
func runTUI(ctx context.Context, cancel context.CancelCauseFunc, cfg *config.Config,
	src tracker.Source, dec tracker.Decoder, settings tracker.Settings, logger *slog.Logger,
) (*tracker.Loop, error) {
	pres := app.NewPresenter()
	loop := tracker.New(src, dec, pres, settings, logger)
	model := app.New(sourceLabel(cfg), loop, cancel)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFPS(config.TargetFPS),
	)
	pres.Attach(p)

	done := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		done <- err
		p.Send(app.LoopDoneMsg{Err: err})
	}()

	_, uiErr := p.Run()
	cancel(nil)
	loopErr := <-done

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return loop, errors.Join(loopErr, fmt.Errorf("terminal ui: %w", uiErr))
	}
	return loop, loopErr
}

func newSource(cfg *config.Config, logger *slog.Logger) tracker.Source {
	switch cfg.Source.Kind {
	case config.SourceDemo:
		return demo.NewSource(demo.Options{
			Width:    config.DemoWidth,
			Height:   config.DemoHeight,
			FPS:      config.DemoFPS,
			DropRate: config.DemoDropRate,
			Payload:  cfg.Marker.Payload,
		})
	case config.SourceScreen:
		return camera.NewScreen(logger)
	default:
		return camera.NewCapture(cfg.Source.Device, logger)
	}
}

func newDecoder(cfg *config.Config) tracker.Decoder {
	switch {
	case cfg.Source.Kind == config.SourceDemo:
		return demo.Decoder{}
	case cfg.Marker.Decoder == config.DecoderAruco:
		return camera.NewArucoDecoder()
	default:
		return camera.NewQRDecoder()
	}
}

func sourceLabel(cfg *config.Config) string {
	switch cfg.Source.Kind {
	case config.SourceCamera, config.SourceFile:
		return cfg.Source.Kind + ":" + cfg.Source.Device
	default:
		return cfg.Source.Kind
	}
}
