package logging

import "testing"

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("development logger ready")
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("production logger ready")
}

func TestWithLevel(t *testing.T) {
	t.Parallel()

	logger, err := WithLevel(false, "warn")
	if err != nil {
		t.Fatalf("WithLevel error = %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatal("debug should be disabled at warn level")
	}

	if _, err := WithLevel(false, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := WithLevel(true, ""); err != nil {
		t.Fatalf("empty level should keep defaults: %v", err)
	}
}
