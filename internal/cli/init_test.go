package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TALLY_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TALLY_TEST_VALUE", "")
	os.Unsetenv("TALLY_TEST_VALUE")

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("TALLY_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("TALLY_TEST_VALUE = %q", got)
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("debug", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing: %q", buf.String())
	}

	if _, err := SetupLogger("chatty", &buf); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_SOURCE", "carrier-pigeon")
	if _, err := LoadAndValidateConfig(); err == nil || !strings.Contains(err.Error(), "invalid data source") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGracefulShutdown(t *testing.T) {
	logger, _ := SetupLogger("error", &bytes.Buffer{})
	cleaned := make(chan struct{})
	ctx, stop := GracefulShutdown(context.Background(), logger, time.Second, func(context.Context) {
		close(cleaned)
	})
	defer stop()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run before cancellation")
	}
}
