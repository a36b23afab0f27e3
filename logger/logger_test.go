package logger

import (
	"testing"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected default level info, got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format console, got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected default output stdout, got %q", cfg.Output)
	}
}

func TestConfig_Validate_BadFormat(t *testing.T) {
	cfg := Config{Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	l := New(&Config{Level: "nonsense"}, "test")
	if l == nil {
		t.Fatal("expected logger instance")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test").WithComponent("pipeline")
	if l == nil {
		t.Fatal("expected component logger")
	}
}

func TestFields_Pairs(t *testing.T) {
	m := Fields("op", "upload", "size", 42)
	if m["op"] != "upload" {
		t.Errorf("expected op=upload, got %v", m["op"])
	}
	if m["size"] != 42 {
		t.Errorf("expected size=42, got %v", m["size"])
	}
}

func TestFields_OddArgsIgnoresTrailing(t *testing.T) {
	m := Fields("op", "upload", "dangling")
	if len(m) != 1 {
		t.Errorf("expected one field, got %d", len(m))
	}
}

func TestGetGlobalLogger_LazyInit(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected lazily created global logger")
	}
}
