package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger()
	if err != nil {
		t.Fatalf("NewZapLogger: %v", err)
	}
	if log == nil {
		t.Fatal("expected a logger")
	}
	log.Info("probe", String("k", "v"), Int("n", 1))
}

func TestNopDiscardsEverything(t *testing.T) {
	log := Nop()
	log.Info("ignored")
	log.Warn("ignored")
	log.Error("ignored", Err(os.ErrNotExist))
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log := NewFileLogger(FileConfig{Path: path})
	log.Info("file_probe", Float64("equity", 10_000))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"file_probe"`) {
		t.Fatalf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"equity":10000`) {
		t.Fatalf("log line missing field: %s", line)
	}
}
