// Package json decodes JSON records - either a stream of objects or a
// top-level array of objects - into map[string]interface{} records.
package json

import (
	"bufio"
	"encoding/json"
	"io"

	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// Source is an opk.Source for JSON data read from a single reader. It
// accepts both whitespace-separated object streams and one top-level
// array of objects (the "multiline" export shape).
type Source struct {
	br      *bufio.Reader
	dec     *json.Decoder
	inArray bool
}

// NewSource gets a new json source which will decode from r.
func NewSource(r io.Reader) *Source {
	return &Source{br: bufio.NewReader(r)}
}

// Record implements opk.Source. It is guaranteed to return a
// map[string]interface{} if there is no error.
func (s *Source) Record() (interface{}, error) {
	if s.dec == nil {
		if err := s.init(); err != nil {
			return nil, err
		}
	}
	if s.inArray {
		if !s.dec.More() {
			if _, err := s.dec.Token(); err != nil && err != io.EOF {
				return nil, errors.Wrap(err, "reading array end")
			}
			return nil, io.EOF
		}
	}
	var res map[string]interface{}
	err := s.dec.Decode(&res)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// init peeks at the first non-space byte to decide between the array
// and object-stream forms.
func (s *Source) init() error {
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			// empty input, let Decode report EOF
			s.dec = json.NewDecoder(s.br)
			return nil
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		if err := s.br.UnreadByte(); err != nil {
			return errors.Wrap(err, "unreading byte")
		}
		s.dec = json.NewDecoder(s.br)
		if b == '[' {
			if _, err := s.dec.Token(); err != nil {
				return errors.Wrap(err, "reading array start")
			}
			s.inArray = true
		}
		return nil
	}
}

type rawSourceSource struct {
	rs  opk.RawSource
	cur opk.NamedReadCloser
	s   *Source
}

// NewSourceFromRawSource chains a json Source over every reader rs
// hands out.
func NewSourceFromRawSource(rs opk.RawSource) opk.Source {
	return &rawSourceSource{rs: rs}
}

func (r *rawSourceSource) Record() (rec interface{}, err error) {
	if r.s == nil {
		reader, err := r.rs.NextReader()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "getting next reader")
		}
		r.cur = reader
		r.s = NewSource(reader)
	}
	rec, err = r.s.Record()
	if err == io.EOF {
		r.cur.Close()
		r.cur, r.s = nil, nil
		return r.Record()
	}
	return rec, err
}
