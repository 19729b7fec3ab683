package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/config"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestFocalCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "focal",
		"--reference-width", "100", "--known-distance", "50", "--marker-width", "5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "focal length: 1000.00 px") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "100 px wide -> 50.0 cm") {
		t.Errorf("missing distance table:\n%s", out)
	}
}

func TestFocalCommandRejectsInvalidCalibration(t *testing.T) {
	_, err := execute(t, context.Background(), "focal", "--marker-width", "0")
	if !errors.Is(err, calibration.ErrInvalidCalibration) {
		t.Errorf("err = %v, want ErrInvalidCalibration", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, config.AppName) {
		t.Errorf("version output = %q", out)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.yaml")
	yaml := "marker:\n  payload: FROM_FILE\n  center_tolerance_px: 40\nsource:\n  kind: file\n  device: clip.mp4\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { flagConfig, flagDemo = "", false })
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path, "--tolerance", "10", "--demo"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Marker.Payload != "FROM_FILE" {
		t.Errorf("payload = %q, want value from file", cfg.Marker.Payload)
	}
	if cfg.Marker.CenterTolerancePx != 10 {
		t.Errorf("tolerance = %d, want flag value 10", cfg.Marker.CenterTolerancePx)
	}
	if cfg.Source.Kind != config.SourceDemo {
		t.Errorf("source = %q, want demo", cfg.Source.Kind)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogOutputDiscardsForTUI(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Mode = config.DisplayTUI
	w, closeFn, err := logOutput(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if w == os.Stderr {
		t.Errorf("tui without a log file must not log to stderr")
	}

	cfg.Log.File = filepath.Join(t.TempDir(), "run.log")
	w, closeFn2, err := logOutput(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn2()
	if _, ok := w.(*os.File); !ok {
		t.Errorf("log file output is %T, want *os.File", w)
	}
}

func TestRunDemoUntilCancelled(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	t.Cleanup(func() { flagDemo = false })

	_, err := execute(t, ctx, "--demo", "--display", "log", "--log-file", logPath, "--log-level", "debug")
	if err != nil {
		t.Fatalf("run returned %v, want clean shutdown", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	logs := string(data)
	for _, want := range []string{`"run_id"`, "tracker: running", "main: stopped"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log lacks %q", want)
		}
	}
}
