package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/tabprofile/storage/memory"
)

const ordersCSV = "Order ID,Unit Price\n1,9.5\n2,\n3,4\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(ordersCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String()
}

func TestRun_TextReport(t *testing.T) {
	path := writeInput(t)
	code, out := runCLI(t, "", path)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	for _, want := range []string{
		"EDA GRAPH EXECUTION RESULTS",
		"📁 File: " + path,
		"📊 Shape: (3, 2)",
		"  Unit Price                     → unit_price",
		"📊 unit_price",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Enter the path") {
		t.Error("no prompt expected when a path is given")
	}
}

func TestRun_Prompt(t *testing.T) {
	path := writeInput(t)
	code, out := runCLI(t, "  "+path+"  \n")
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	if !strings.Contains(out, "Enter the path to your CSV or Excel file: ") || !strings.Contains(out, "📁 File: "+path+"\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRun_Failure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	code, out := runCLI(t, "", missing)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "❌ ERROR: File not found: "+missing) || strings.Contains(out, "COLUMN STATISTICS") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRun_JSONAndPublish(t *testing.T) {
	store := memory.Named("cli-test")
	t.Cleanup(store.Reset)

	code, out := runCLI(t, "", "--json", "--output", "mem://cli-test/reports",
		"--diagram", "mem://cli-test/diagrams/eda.mmd", writeInput(t))
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	runID, _ := doc["run_id"].(string)
	if runID == "" || doc["phase"] != "finalized" {
		t.Fatalf("doc = %v", doc)
	}

	keys := store.Keys()
	want := map[string]bool{"reports/" + runID + ".json": true, "diagrams/eda.mmd": true}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestRun_DiagramFailureIsNotFatal(t *testing.T) {
	code, out := runCLI(t, "", "--diagram", "ftp://nowhere/eda.mmd", writeInput(t))
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	if !strings.Contains(out, "COLUMN STATISTICS") {
		t.Fatalf("run must continue after a failed export:\n%s", out)
	}
}

func TestRun_Flags(t *testing.T) {
	if code, out := runCLI(t, "", "--version"); code != 0 || !strings.HasPrefix(out, "tabprofile ") {
		t.Fatalf("--version = %d %q", code, out)
	}
	if code, _ := runCLI(t, "", "--no-such-flag"); code != 2 {
		t.Fatalf("unknown flag exit code = %d, want 2", code)
	}
	if code, _ := runCLI(t, "", "--help"); code != 0 {
		t.Fatalf("--help exit code = %d, want 0", code)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := "name: profiler\npipeline:\n  max_parallel: 4\n  task_timeout: 2s\n  collision_policy: suffix\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, fs, err := parseFlags([]string{"--config", path, "--json"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(f, fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "profiler" || cfg.Pipeline.MaxParallel != 4 || cfg.Pipeline.TaskTimeout.String() != "2s" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Pipeline.CollisionPolicy != "suffix" || cfg.Pipeline.TaskErrors != "isolate" || !cfg.Output.JSON {
		t.Fatalf("cfg = %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("name: x\npipeline:\n  task_errors: ignore\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, fs, _ = parseFlags([]string{"--config", bad}, &bytes.Buffer{})
	if _, err := loadConfig(f, fs); err == nil {
		t.Fatal("expected validation error")
	}

	f, fs, _ = parseFlags([]string{"--config", path, "--output", "ftp://host/reports"}, &bytes.Buffer{})
	if _, err := loadConfig(f, fs); err == nil || !strings.Contains(err.Error(), "output.location") {
		t.Fatalf("expected output.location error, got %v", err)
	}
}
