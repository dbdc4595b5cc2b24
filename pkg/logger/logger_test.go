package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitTextLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LevelWarn
	cfg.Output = &buf
	if err := Init(cfg); err != nil {
		t.Fatal(err)
	}

	LogPhase("PostParse")
	LogWarning("PostParse", "m.pyx", 3, "declared after use")
	out := buf.String()
	if strings.Contains(out, "Starting compilation phase") {
		t.Errorf("info record passed a warn level logger:\n%s", out)
	}
	for _, want := range []string{"level=WARN", "phase=PostParse", "file=m.pyx", "line=3", `message="declared after use"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: LevelDebug, Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	LogClosure("outer", "__pyx_scope_struct_outer", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not a json record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "Closure record created" || rec["record"] != "__pyx_scope_struct_outer" || rec["fields"] != float64(2) {
		t.Errorf("record = %v", rec)
	}
}

func TestInitLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyxc.log")
	if err := Init(Config{Level: LevelInfo, LogFile: path}); err != nil {
		t.Fatal(err)
	}
	LogFileProcessing("m.pyx")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file=m.pyx") {
		t.Errorf("log file = %q", data)
	}

	if err := Init(Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")}); err == nil {
		t.Error("Init accepted an unwritable log file")
	}
}
