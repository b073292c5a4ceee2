package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "tcrb_monitor", "state.json"), zerolog.Nop())
}

func TestRoundTrip(t *testing.T) {
	store := tempStore(t)

	jd := 2460000.5
	id := int64(661919)
	saved := State{
		LastAlertJD:   &jd,
		LastAlertTime: "2026-08-31T12:00:00Z",
		TargetID:      &id,
	}

	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := store.Load()
	if loaded.LastAlertJD == nil || *loaded.LastAlertJD != jd {
		t.Fatalf("last alert JD not round-tripped: %+v", loaded)
	}
	if loaded.LastAlertTime != saved.LastAlertTime {
		t.Fatalf("last alert time not round-tripped: %q", loaded.LastAlertTime)
	}
	if loaded.TargetID == nil || *loaded.TargetID != id {
		t.Fatalf("target id not round-tripped: %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := tempStore(t)

	st := store.Load()
	if st.LastAlertJD != nil || st.LastAlertTime != "" || st.TargetID != nil {
		t.Fatalf("missing file must load as empty state, got %+v", st)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path, zerolog.Nop())
	st := store.Load()
	if st.LastAlertJD != nil || st.TargetID != nil {
		t.Fatalf("corrupt file must load as empty state, got %+v", st)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := tempStore(t)

	first := 2460000.5
	if err := store.Save(State{LastAlertJD: &first}); err != nil {
		t.Fatal(err)
	}

	second := 2460001.5
	if err := store.Save(State{LastAlertJD: &second, LastAlertTime: "2026-08-31T12:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load()
	if loaded.LastAlertJD == nil || *loaded.LastAlertJD != second {
		t.Fatalf("save must replace the whole record, got %+v", loaded)
	}
}
