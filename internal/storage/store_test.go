package storage

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(afero.NewMemMapFs(), "/downloads")
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func TestStore_EnsureDir(t *testing.T) {
	s := newTestStore(t)

	path, err := s.EnsureDir("1700000000000")
	if err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if path != filepath.Join("/downloads", "1700000000000") {
		t.Errorf("unexpected path %s", path)
	}

	ok, err := s.Exists(path)
	if err != nil || !ok {
		t.Errorf("expected directory to exist, ok=%v err=%v", ok, err)
	}
}

func TestStore_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../etc", "a/b", `a\b`, "x..y"} {
		if _, err := s.Path(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Path(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
	if err := s.RemoveAll(".."); !errors.Is(err, ErrInvalidName) {
		t.Errorf("RemoveAll(..): expected ErrInvalidName, got %v", err)
	}
}

func TestStore_WriteStream(t *testing.T) {
	s := newTestStore(t)
	dir, _ := s.EnsureDir("job")

	n, err := s.WriteStream(dir, "wallhaven-abc.jpg", func(w io.Writer) (int64, error) {
		return io.Copy(w, strings.NewReader("imagedata"))
	})
	if err != nil {
		t.Fatalf("WriteStream failed: %v", err)
	}
	if n != 9 {
		t.Errorf("expected 9 bytes, got %d", n)
	}

	data, err := afero.ReadFile(s.Fs(), filepath.Join(dir, "wallhaven-abc.jpg"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "imagedata" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestStore_WriteStreamRemovesPartialFile(t *testing.T) {
	s := newTestStore(t)
	dir, _ := s.EnsureDir("job")

	boom := errors.New("stream reset")
	_, err := s.WriteStream(dir, "broken.jpg", func(w io.Writer) (int64, error) {
		w.Write([]byte("partial"))
		return 7, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}

	ok, _ := s.Exists(filepath.Join(dir, "broken.jpg"))
	if ok {
		t.Error("expected partial file to be removed")
	}
}

func TestStore_RemoveAll(t *testing.T) {
	s := newTestStore(t)
	dir, _ := s.EnsureDir("old")
	afero.WriteFile(s.Fs(), filepath.Join(dir, "a.jpg"), []byte("a"), 0644)

	if err := s.RemoveAll("old"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if ok, _ := s.Exists(dir); ok {
		t.Error("expected folder to be removed")
	}
}
