package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func drainNames(t *testing.T, rs *RawSource) []string {
	t.Helper()
	var names []string
	for {
		r, err := rs.NextReader()
		if err == io.EOF {
			return names
		}
		if err != nil {
			t.Fatalf("getting reader: %v", err)
		}
		names = append(names, r.Name())
		r.Close()
	}
}

func TestRawSourceSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", "orderid\n1\n")
	rs, err := NewRawSource(path)
	if err != nil {
		t.Fatalf("creating raw source: %v", err)
	}
	r, err := rs.NextReader()
	if err != nil {
		t.Fatalf("getting reader: %v", err)
	}
	if r.Name() != "orders.csv" {
		t.Fatalf("expected base name, got %q", r.Name())
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(data) != "orderid\n1\n" {
		t.Fatalf("unexpected content: %q", data)
	}
	r.Close()
	if _, err := rs.NextReader(); err != io.EOF {
		t.Fatalf("expected EOF after last file, got %v", err)
	}
}

func TestRawSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "a")
	writeFile(t, dir, "b.csv", "b")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	rs, err := NewRawSource(dir)
	if err != nil {
		t.Fatalf("creating raw source: %v", err)
	}
	names := drainNames(t, rs)
	if len(names) != 2 {
		t.Fatalf("expected 2 files, got %v", names)
	}
}

func TestRawSourceGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders-2.csv", "b")
	writeFile(t, dir, "orders-1.csv", "a")
	writeFile(t, dir, "other.json", "{}")
	rs, err := NewRawSource(filepath.Join(dir, "orders-*.csv"))
	if err != nil {
		t.Fatalf("creating raw source: %v", err)
	}
	names := drainNames(t, rs)
	if len(names) != 2 || names[0] != "orders-1.csv" || names[1] != "orders-2.csv" {
		t.Fatalf("expected sorted glob matches, got %v", names)
	}
}

func TestRawSourceMissing(t *testing.T) {
	_, err := NewRawSource(filepath.Join(t.TempDir(), "nope.csv"))
	if errors.Cause(err) != opk.ErrSourceUnavailable {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	_, err = NewRawSource(filepath.Join(t.TempDir(), "nope-*.csv"))
	if errors.Cause(err) != opk.ErrSourceUnavailable {
		t.Fatalf("expected ErrSourceUnavailable for empty glob, got %v", err)
	}
}
