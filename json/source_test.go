package json

import (
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iomega/opk/file"
)

func drain(t *testing.T, src interface {
	Record() (interface{}, error)
}) []map[string]interface{} {
	t.Helper()
	var recs []map[string]interface{}
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("reading record: %v", err)
		}
		recs = append(recs, rec.(map[string]interface{}))
	}
}

func TestSourceObjectStream(t *testing.T) {
	s := NewSource(strings.NewReader(`
{"productid": 1, "title": "Compact Kettle"}
{"productid": 2, "title": "Deluxe Lamp"}
`))
	recs := drain(t, s)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %v", recs)
	}
	if recs[0]["title"] != "Compact Kettle" || recs[1]["productid"] != float64(2) {
		t.Fatalf("unexpected records: %v", recs)
	}
}

func TestSourceArray(t *testing.T) {
	s := NewSource(strings.NewReader(`  [
  {"productid": 1},
  {"productid": 2},
  {"productid": 3}
]`))
	recs := drain(t, s)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %v", recs)
	}
}

func TestSourceEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n", "[]"} {
		s := NewSource(strings.NewReader(input))
		if recs := drain(t, s); len(recs) != 0 {
			t.Fatalf("input %q: expected no records, got %v", input, recs)
		}
	}
}

func TestSourceMalformed(t *testing.T) {
	s := NewSource(strings.NewReader(`{"productid": }`))
	if _, err := s.Record(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSourceFromRawSource(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json": `[{"productid": 1}, {"productid": 2}]`,
		"b.json": `{"productid": 3}` + "\n" + `{"productid": 4}`,
	}
	for name, content := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	rs, err := file.NewRawSource(dir)
	if err != nil {
		t.Fatalf("creating raw source: %v", err)
	}
	recs := drain(t, NewSourceFromRawSource(rs))
	if len(recs) != 4 {
		t.Fatalf("expected 4 records across files, got %v", recs)
	}
}
