package app

import "testing"

func TestNewLoggerDevelopment(t *testing.T) {
	logger := NewLogger("development")
	if logger == nil {
		t.Fatalf("expected logger")
	}
	_ = logger.Sync()
}

func TestNewLoggerProduction(t *testing.T) {
	logger := NewLogger("production")
	if logger == nil {
		t.Fatalf("expected logger")
	}
	_ = logger.Sync()
}
