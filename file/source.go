// Package file provides an opk.RawSource over local files, so the
// format decoders in csv and json can read from disk the same way they
// read from a blob store.
package file

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// RawSource hands out readers over local files. The configured path
// may name a single file, a directory (every regular file within), or
// a glob pattern like "orders-*.csv".
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource creates a RawSource for pathname.
func NewRawSource(pathname string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fileIdx: &fileIdx,
	}
	if strings.ContainsAny(pathname, "*?[") {
		matches, err := filepath.Glob(pathname)
		if err != nil {
			return nil, errors.Wrapf(opk.ErrSourceUnavailable, "bad glob %q: %v", pathname, err)
		}
		if len(matches) == 0 {
			return nil, errors.Wrapf(opk.ErrSourceUnavailable, "glob %q matched nothing", pathname)
		}
		sort.Strings(matches)
		s.files = matches
		return s, nil
	}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrapf(opk.ErrSourceUnavailable, "statting %s: %v", pathname, err)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(pathname)
		if err != nil {
			return nil, errors.Wrapf(opk.ErrSourceUnavailable, "reading directory %s: %v", pathname, err)
		}
		s.files = make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			s.files = append(s.files, path.Join(pathname, entry.Name()))
		}
	} else {
		s.files = []string{pathname}
	}
	return s, nil
}

// NextReader implements opk.RawSource. It is safe for concurrent use.
func (s *RawSource) NextReader() (opk.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}
	f, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(opk.ErrSourceUnavailable, "opening %s: %v", s.files[idx], err)
	}
	return &metaFile{f}, nil
}

type metaFile struct {
	*os.File
}

func (m *metaFile) Name() string {
	return filepath.Base(m.File.Name())
}

func (m *metaFile) Meta() map[string]interface{} { return nil }
