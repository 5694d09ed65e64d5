// Package csv decodes header-rowed CSV data from an opk.RawSource into
// map[string]string records.
package csv

import (
	"bufio"
	"io"
	"log"
	"strings"
	"sync"

	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// Source reads CSV records from each reader a RawSource hands out.
// The first line of every file is a header; keys of the returned
// records are the lowercased header names. Empty lines are skipped;
// empty cells are kept as empty strings. Source is safe for concurrent
// use.
type Source struct {
	rs opk.RawSource

	mu     sync.Mutex
	cur    opk.NamedReadCloser
	scan   *bufio.Scanner
	header []string
	line   int
}

// NewSource creates a Source decoding CSV from rs.
func NewSource(rs opk.RawSource) *Source {
	return &Source{rs: rs}
}

// Record implements opk.Source, returning the next data line of the
// current file as a map[string]string, moving on to the next file as
// each one is exhausted.
func (s *Source) Record() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.cur == nil {
			cur, err := s.rs.NextReader()
			if err == io.EOF {
				return nil, io.EOF
			}
			if err != nil {
				return nil, errors.Wrap(err, "getting next reader")
			}
			s.cur = cur
			s.scan = bufio.NewScanner(cur)
			s.line = 1
			if !s.scan.Scan() {
				// empty file, move on
				if err := s.scan.Err(); err != nil {
					name := s.close()
					return nil, errors.Wrapf(err, "reading header of %s", name)
				}
				s.close()
				continue
			}
			s.header = splitLine(s.scan.Text())
			if err := validateHeader(s.header); err != nil {
				name := s.close()
				return nil, errors.Wrapf(err, "validating header of %s", name)
			}
		}
		for s.scan.Scan() {
			s.line++
			txt := s.scan.Text()
			if strings.TrimSpace(txt) == "" {
				continue // skip empty lines
			}
			rec, err := parseRecord(s.header, strings.Split(txt, ","))
			if err != nil {
				return nil, errors.Wrapf(err, "%s line %d", s.cur.Name(), s.line)
			}
			return rec, nil
		}
		if err := s.scan.Err(); err != nil {
			name := s.close()
			return nil, errors.Wrapf(err, "scanning %s", name)
		}
		s.close()
	}
}

func (s *Source) close() (name string) {
	name = s.cur.Name()
	s.cur.Close()
	s.cur = nil
	s.scan = nil
	return name
}

func splitLine(txt string) []string {
	fields := strings.Split(txt, ",")
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return fields
}

func validateHeader(header []string) error {
	fields := make(map[string]int)
	for i, h := range header {
		if h == "" {
			return errors.Wrapf(opk.ErrSchemaMismatch, "header contains empty name at %d: %v", i, header)
		}
		if pos, exists := fields[h]; exists {
			return errors.Wrapf(opk.ErrSchemaMismatch, "%s appears at both %d and %d in header", h, pos, i)
		}
		fields[h] = i
	}
	return nil
}

func parseRecord(header []string, row []string) (map[string]string, error) {
	if len(header) > len(row) {
		return nil, errors.Errorf("header/row len mismatch: %dvs%d, %v and %v", len(header), len(row), header, row)
	} else if len(row) > len(header) {
		for i := len(header); i < len(row); i++ {
			if strings.TrimSpace(row[i]) != "" {
				log.Printf("data in non headered field: %v, %d", row, i)
			}
		}
	}
	ret := make(map[string]string, len(header))
	for i := 0; i < len(header); i++ {
		// empty cells stay present so a bad value fails only its own
		// row; a field is absent only when the header has no column
		ret[header[i]] = row[i]
	}
	return ret, nil
}
