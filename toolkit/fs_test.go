package toolkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestWriteThenRead(t *testing.T) {
	s := newTestStore(t)
	w := s.Write("src/main.go", "package main\n")
	if !w.OK {
		t.Fatalf("write failed: %+v", w)
	}
	if w.Bytes != len("package main\n") {
		t.Errorf("bytes = %d", w.Bytes)
	}
	r := s.Read("src/main.go")
	if !r.OK {
		t.Fatalf("read failed: %+v", r)
	}
	if r.Content != "package main\n" {
		t.Errorf("content = %q", r.Content)
	}
}

func TestReadMissingFile(t *testing.T) {
	s := newTestStore(t)
	r := s.Read("nope.txt")
	if r.OK {
		t.Fatal("expected failure for missing file")
	}
	if r.Error == "" {
		t.Error("expected error message")
	}
}

func TestPathEscapeRejected(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"../../etc/passwd", "/etc/passwd", "a/../../outside"} {
		r := s.Read(p)
		if r.OK {
			t.Errorf("read %q should have been rejected", p)
		}
		if !strings.Contains(r.Error, "escapes allowed root") {
			t.Errorf("read %q error = %q", p, r.Error)
		}
		w := s.Write(p, "x")
		if w.OK {
			t.Errorf("write %q should have been rejected", p)
		}
	}
}

func TestEscapeCheckedBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "base"), "")
	if err != nil {
		t.Fatal(err)
	}
	s.Write("../leak.txt", "secret")
	if _, err := os.Stat(filepath.Join(dir, "leak.txt")); !os.IsNotExist(err) {
		t.Error("escaping write reached the filesystem")
	}
}

func TestAllowedRootWiderThanBase(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "project")
	s, err := NewStore(base, root)
	if err != nil {
		t.Fatal(err)
	}
	// A sibling of base under the allowed root is reachable.
	w := s.Write(filepath.Join(root, "shared", "notes.txt"), "ok")
	if !w.OK {
		t.Fatalf("write under allowed root failed: %+v", w)
	}
	// The allowed root itself resolves.
	l := s.List(root, nil)
	if !l.OK {
		t.Fatalf("list of allowed root failed: %+v", l)
	}
}

func TestReadTruncatesLargeFile(t *testing.T) {
	s := newTestStore(t)
	s.Write("big.txt", strings.Repeat("z", MaxReadChars+5000))
	r := s.Read("big.txt")
	if !r.OK {
		t.Fatalf("read failed: %+v", r)
	}
	if len(r.Content) > MaxReadChars+100 {
		t.Errorf("content length = %d, want <= %d plus marker", len(r.Content), MaxReadChars)
	}
	if !strings.Contains(r.Content, "characters elided") {
		t.Error("expected elision marker")
	}
}

func TestListWithPatterns(t *testing.T) {
	s := newTestStore(t)
	s.Write("a.go", "x")
	s.Write("b.txt", "x")
	s.Write("sub/c.go", "x")

	all := s.List("", nil)
	if !all.OK {
		t.Fatalf("list failed: %+v", all)
	}
	if len(all.Items) != 4 { // a.go, b.txt, sub, sub/c.go
		t.Errorf("items = %v", all.Items)
	}

	goFiles := s.List("", []string{"*.go"})
	if len(goFiles.Items) != 2 {
		t.Errorf("go files = %v", goFiles.Items)
	}
	for _, it := range goFiles.Items {
		if !strings.HasSuffix(it, ".go") {
			t.Errorf("unexpected item %q", it)
		}
	}
}

func TestListMissingDirFails(t *testing.T) {
	s := newTestStore(t)
	l := s.List("missing", nil)
	if l.OK {
		t.Fatal("expected failure for missing directory")
	}
}
