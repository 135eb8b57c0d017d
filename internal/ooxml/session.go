// Package ooxml provides read/write access to Office Open XML containers
// (.docx, .pptx, .xlsx).
//
// An OOXML file is a ZIP archive of XML parts. Session opens the archive,
// lazily parses individual parts into etree Documents, caches them, and can
// save modifications atomically (write to temp, rename). The docx, pptx and
// xlsx engines all sit on top of this one type.
package ooxml

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// ErrPartNotFound is returned when a named ZIP entry does not exist.
var ErrPartNotFound = errors.New("part not found in archive")

// xmlDoc holds both the raw bytes and parsed DOM for a single ZIP entry.
type xmlDoc struct {
	raw []byte          // original bytes from the ZIP
	doc *etree.Document // lazily parsed XML
}

// Session provides lazy, cached access to the XML parts of an OOXML file.
// Modified parts are tracked and re-serialized on Save; everything else is
// copied verbatim, so unrelated parts survive a round trip untouched.
type Session struct {
	path    string             // original file path
	parts   map[string]*xmlDoc // cached parsed XML DOMs (keyed by ZIP entry name)
	dirty   map[string]bool    // parts that have been modified
	rawData map[string][]byte  // raw bytes for all entries (read eagerly)
}

// Open opens an OOXML container and returns a Session.
// A missing path reports NotFound; bytes that do not parse as a ZIP report
// InvalidFormat.
func Open(path string) (*Session, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errfmt.New(errfmt.NotFound, "file not found: %s", path)
		}

		return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("stat %s: %w", path, err))
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "not a valid OOXML container: %s: %v", path, err)
	}
	defer zr.Close()

	// Read all raw entries eagerly so we can copy them on Save.
	rawData := make(map[string][]byte, len(zr.File))

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, errfmt.New(errfmt.InvalidFormat, "open entry %s: %v", f.Name, err)
		}

		data, err := io.ReadAll(rc)
		_ = rc.Close()

		if err != nil {
			return nil, errfmt.New(errfmt.InvalidFormat, "read entry %s: %v", f.Name, err)
		}

		rawData[f.Name] = data
	}

	return &Session{
		path:    path,
		parts:   make(map[string]*xmlDoc),
		dirty:   make(map[string]bool),
		rawData: rawData,
	}, nil
}

// Part returns the parsed XML document for a given part path
// (e.g. "word/document.xml"). It lazily parses on first access and caches
// the result for subsequent calls.
func (s *Session) Part(name string) (*etree.Document, error) {
	if xd, ok := s.parts[name]; ok && xd.doc != nil {
		return xd.doc, nil
	}

	raw, ok := s.rawData[name]
	if !ok {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, fmt.Errorf("%w: %q", ErrPartNotFound, name))
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "parse xml %s: %v", name, err)
	}

	s.parts[name] = &xmlDoc{raw: raw, doc: doc}

	return doc, nil
}

// HasPart reports whether the archive contains the named entry.
func (s *Session) HasPart(name string) bool {
	_, ok := s.rawData[name]

	return ok
}

// RawPart returns the raw bytes for a ZIP entry without parsing XML.
func (s *Session) RawPart(name string) ([]byte, error) {
	raw, ok := s.rawData[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPartNotFound, name)
	}

	return raw, nil
}

// MarkDirty marks a part as modified. Dirty parts are re-serialized from
// their etree Document when Save is called.
func (s *Session) MarkDirty(name string) {
	s.dirty[name] = true
}

// AddRawPart injects a new ZIP entry with the given raw bytes, overwriting
// any existing entry of the same name. Any stale cached parse is dropped.
func (s *Session) AddRawPart(name string, data []byte) {
	s.rawData[name] = data
	delete(s.parts, name)
	delete(s.dirty, name)
}

// ListParts returns all entry paths in the archive, sorted alphabetically.
func (s *Session) ListParts() []string {
	names := make([]string, 0, len(s.rawData))

	for name := range s.rawData {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// PartsWithPrefix returns entry paths beginning with prefix, sorted.
func (s *Session) PartsWithPrefix(prefix string) []string {
	var names []string

	for name := range s.rawData {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// Path returns the original file path of the container.
func (s *Session) Path() string {
	return s.path
}

var errDirtyPartNoParsed = errors.New("dirty part has no parsed document")

// Save writes the container to outputPath, creating intermediate directories
// as needed. Unmodified entries are copied verbatim; dirty parts are
// serialized from their cached DOM. The write goes to a temp file first and
// is renamed into place, so the destination is never partially overwritten.
func (s *Session) Save(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errfmt.Wrap(errfmt.IOError, fmt.Errorf("create output dir %s: %w", dir, err))
	}

	tmp, err := os.CreateTemp(dir, ".ooxml-save-*.tmp")
	if err != nil {
		return errfmt.Wrap(errfmt.IOError, fmt.Errorf("create temp file: %w", err))
	}

	tmpPath := tmp.Name()

	fail := func(zw *zip.Writer, err error) error {
		if zw != nil {
			_ = zw.Close()
		}

		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return errfmt.Wrap(errfmt.IOError, err)
	}

	zw := zip.NewWriter(tmp)

	for _, name := range s.ListParts() {
		w, err := zw.Create(name)
		if err != nil {
			return fail(zw, fmt.Errorf("create zip entry %s: %w", name, err))
		}

		if s.dirty[name] {
			xd, ok := s.parts[name]
			if !ok || xd.doc == nil {
				return fail(zw, fmt.Errorf("%w: %s", errDirtyPartNoParsed, name))
			}

			b, err := xd.doc.WriteToBytes()
			if err != nil {
				return fail(zw, fmt.Errorf("serialize %s: %w", name, err))
			}

			if _, err := w.Write(b); err != nil {
				return fail(zw, fmt.Errorf("write %s: %w", name, err))
			}
		} else {
			if _, err := w.Write(s.rawData[name]); err != nil {
				return fail(zw, fmt.Errorf("copy %s: %w", name, err))
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fail(nil, fmt.Errorf("close zip writer: %w", err))
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return errfmt.Wrap(errfmt.IOError, fmt.Errorf("close temp file: %w", err))
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)

		return errfmt.Wrap(errfmt.IOError, fmt.Errorf("rename to %s: %w", outputPath, err))
	}

	return nil
}

// SaveInPlace saves the modified container back to its original path.
func (s *Session) SaveInPlace() error {
	return s.Save(s.path)
}
