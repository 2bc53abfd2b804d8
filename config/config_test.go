package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runner.toml")
	data := `
addr = ":9000"

[room]
broadcast_ms = 80

[room.speed]
base = 0.3
max = 0.9
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RUNNER_LEADERBOARD", filepath.Join(dir, "board.json"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Room.BroadcastMs != 80 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Room.Speed.Base != 0.3 || cfg.Room.Speed.Max != 0.9 {
		t.Fatalf("speed curve: %+v", cfg.Room.Speed)
	}
	if cfg.Room.TrickleMs != 100 || cfg.Log.MaxBackups != 3 {
		t.Fatalf("defaults lost for keys absent from file: %+v", cfg)
	}
	if cfg.Leaderboard != filepath.Join(dir, "board.json") {
		t.Fatalf("env override not applied: %s", cfg.Leaderboard)
	}
	if got := cfg.SimConfig().Speed.Base; got != 0.3 {
		t.Fatalf("sim config speed base: %v", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[room]\nframe_hz = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected read error")
	}
}
