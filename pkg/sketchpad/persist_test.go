package sketchpad

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.PersistDir = dir
	sp := New(cfg, "roundtrip", 200, 200)
	sp.AddLine(Point{X: 10, Y: 10}, Point{X: 80, Y: 80})
	sp.AddLine(Point{X: 5, Y: 95}, Point{X: 95, Y: 5})

	loaded := New(cfg, "roundtrip", 200, 200)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.StrokeCount(); got != 2 {
		t.Fatalf("expected 2 lines after round trip, got %d", got)
	}
	snap := loaded.Snapshot()
	if snap.Lines[0].Start.X != 10 || snap.Lines[0].End.Y != 80 {
		t.Errorf("unexpected round-tripped line data: %+v", snap.Lines[0])
	}
}

func TestLoad_MissingSignatureIsTamper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jarvis")
	doc := map[string]any{"name": "bad", "width": 1, "height": 1, "created_timestamp": 0,
		"grid": map[string]any{}, "lines": []any{}}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Default()
	cfg.PersistDir = dir
	sp := New(cfg, "bad", 1, 1)
	err := sp.Load()
	if err == nil {
		t.Fatalf("expected error for missing signature")
	}
	perr, ok := err.(*PersistenceError)
	if !ok || perr.Kind != KindTamper {
		t.Fatalf("expected KindTamper, got %v", err)
	}
}

func TestLoad_TamperedContentFailsSignatureCheck(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.PersistDir = dir
	sp := New(cfg, "tamper", 200, 200)
	sp.AddLine(Point{X: 1, Y: 1}, Point{X: 99, Y: 99})

	path := filepath.Join(dir, "tamper.jarvis")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	doc["lines"] = []any{map[string]any{"x0": 0, "y0": 0, "x1": 1, "y1": 1, "color": 0, "thickness": 1}}
	tampered, _ := json.Marshal(doc)
	if err := os.WriteFile(path, tampered, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded := New(cfg, "tamper", 200, 200)
	err = loaded.Load()
	perr, ok := err.(*PersistenceError)
	if !ok || perr.Kind != KindTamper {
		t.Fatalf("expected KindTamper for mutated content, got %v", err)
	}
}

func TestLoad_MissingFileIsIOError(t *testing.T) {
	cfg := Default()
	cfg.PersistDir = t.TempDir()
	sp := New(cfg, "nope", 10, 10)
	err := sp.Load()
	perr, ok := err.(*PersistenceError)
	if !ok || perr.Kind != KindIO {
		t.Fatalf("expected KindIO for missing file, got %v", err)
	}
}

func TestSave_UsesHMACWhenSecretSet(t *testing.T) {
	t.Setenv(secretEnvVar, "s3cr3t")
	dir := t.TempDir()
	cfg := Default()
	cfg.PersistDir = dir
	sp := New(cfg, "signed", 50, 50)
	sp.AddLine(Point{X: 0, Y: 0}, Point{X: 100, Y: 100})

	loaded := New(cfg, "signed", 50, 50)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load with matching secret: %v", err)
	}

	t.Setenv(secretEnvVar, "different-secret")
	loaded2 := New(cfg, "signed", 50, 50)
	if err := loaded2.Load(); err == nil {
		t.Fatalf("expected Load to fail when the HMAC secret changes")
	}
}

func TestSave_DoesNotLeaveTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.PersistDir = dir
	sp := New(cfg, "clean", 10, 10)
	sp.AddLine(Point{X: 0, Y: 0}, Point{X: 100, Y: 100})

	if _, err := os.Stat(filepath.Join(dir, "clean.jarvis.tmp")); !os.IsNotExist(err) {
		t.Errorf("expected no leftover .tmp file after a successful save")
	}
}
