package draft

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zgloszenie/accident-form/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested") // Save must create it
	s := New(dir)

	v := model.Defaults()
	v.Pesel = "44051401359"
	v.Residence.Abroad = true
	v.LastResidence.City = "Kraków"
	v.Accident.FirstAid = true

	if err := s.Save(v); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := s.Load()
	if got == nil {
		t.Fatal("load returned nil")
	}
	if *got != v {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *got, v)
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if got := s.Load(); got != nil {
		t.Fatalf("missing draft must load as nil, got %+v", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "draft.json"), []byte("{oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := New(dir).Load(); got != nil {
		t.Fatalf("corrupt draft must load as nil, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Save(model.Defaults()); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Load() != nil {
		t.Fatal("draft must be gone after clear")
	}
	// clearing again is not an error
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
