package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/pkg/types"
)

func writeSnapshotFile(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte(`{"version": "1.0.0", "orgId": "org-test", "agents": []}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

func TestStore_SaveAndList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	bundle := &types.OrgExport{Version: "1.0.0", OrgID: "org-test", ExportedAt: time.Now()}
	bundle.Normalize()

	info, err := store.Save("release-v1", bundle)
	if err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
	if info.ID != "snapshot-release-v1" {
		t.Errorf("expected prefixed id, got %s", info.ID)
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "snapshot-release-v1" {
		t.Errorf("unexpected list result: %+v", infos)
	}
}

func TestStore_ListNewestFirstAndFiltered(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	now := time.Now()
	writeSnapshotFile(t, dir, "snapshot-old.json", now.Add(-2*time.Hour))
	writeSnapshotFile(t, dir, "snapshot-new.json", now)
	writeSnapshotFile(t, dir, "notes.json", now.Add(-time.Hour)) // not a snapshot name

	infos, err := store.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(infos))
	}
	if infos[0].ID != "snapshot-new" || infos[1].ID != "snapshot-old" {
		t.Errorf("expected newest first, got %s then %s", infos[0].ID, infos[1].ID)
	}
}

func TestStore_Resolve(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	now := time.Now()
	writeSnapshotFile(t, dir, "s1.json", now.Add(-2*time.Hour))
	writeSnapshotFile(t, dir, "s2.json", now.Add(-time.Hour))
	fooPath := writeSnapshotFile(t, dir, "snapshot-foo.json", now)

	t.Run("substring match", func(t *testing.T) {
		path, err := store.Resolve("foo")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if path != fooPath {
			t.Errorf("expected %s, got %s", fooPath, path)
		}
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := store.Resolve("s")
		if err == nil {
			t.Fatal("expected ambiguity error")
		}
		if !sserrors.IsType(err, sserrors.ErrorTypeReference) {
			t.Errorf("expected reference error, got %v", err)
		}
	})

	t.Run("no argument returns newest", func(t *testing.T) {
		path, err := store.Resolve("")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if path != fooPath {
			t.Errorf("expected newest file %s, got %s", fooPath, path)
		}
	})

	t.Run("exact id", func(t *testing.T) {
		path, err := store.Resolve("s1")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if filepath.Base(path) != "s1.json" {
			t.Errorf("expected s1.json, got %s", path)
		}
	})

	t.Run("existing path passthrough", func(t *testing.T) {
		path, err := store.Resolve(fooPath)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if path != fooPath {
			t.Errorf("expected %s, got %s", fooPath, path)
		}
	})

	t.Run("normalizes .json suffix and case", func(t *testing.T) {
		path, err := store.Resolve("SNAPSHOT-FOO.json")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if path != fooPath {
			t.Errorf("expected %s, got %s", fooPath, path)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Resolve("does-not-exist")
		if err == nil {
			t.Fatal("expected not-found error")
		}
		if !sserrors.IsType(err, sserrors.ErrorTypeReference) {
			t.Errorf("expected reference error, got %v", err)
		}
	})
}

func TestStore_ReadValidation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Run("valid bundle normalizes collections", func(t *testing.T) {
		path := writeSnapshotFile(t, dir, "snapshot-valid.json", time.Now())
		bundle, err := store.Read(path)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		for _, name := range types.CollectionNames() {
			if bundle.Collection(name) == nil {
				t.Errorf("collection %s should be non-nil after read", name)
			}
		}
	})

	t.Run("unparseable JSON", func(t *testing.T) {
		path := filepath.Join(dir, "snapshot-broken.json")
		os.WriteFile(path, []byte("{not json"), 0o644)
		_, err := store.Read(path)
		if !sserrors.IsType(err, sserrors.ErrorTypeFormat) {
			t.Errorf("expected format error, got %v", err)
		}
	})

	t.Run("missing orgId", func(t *testing.T) {
		path := filepath.Join(dir, "snapshot-noorg.json")
		os.WriteFile(path, []byte(`{"version": "1.0.0"}`), 0o644)
		_, err := store.Read(path)
		if !sserrors.IsType(err, sserrors.ErrorTypeFormat) {
			t.Errorf("expected format error, got %v", err)
		}
	})
}
