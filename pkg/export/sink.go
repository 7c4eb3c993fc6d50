// Package export saves generated documents to files or the clipboard.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

const (
	// ContentTypeCSV is used for the institution list
	ContentTypeCSV = "text/csv"
	// ContentTypeBinary is used for the exclusion list
	ContentTypeBinary = "application/octet-stream"
)

var (
	// ErrEmptyName is returned when a document has no file name.
	ErrEmptyName = errors.New("document name is empty")

	// ErrClipboardUnavailable is returned when no clipboard utility is installed.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)

// Document is a named blob ready to be saved
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// CSV wraps a generated list
func CSV(name, data string) Document {
	return Document{Name: name, ContentType: ContentTypeCSV, Data: []byte(data)}
}

// Exclusions wraps a serialized exclusion list
func Exclusions(name, data string) Document {
	return Document{Name: name, ContentType: ContentTypeBinary, Data: []byte(data)}
}

// Sink receives documents
type Sink interface {
	Save(doc Document) error
}

// FileSink writes documents into Dir
type FileSink struct {
	Dir string
}

// Save writes doc to Dir/Name, creating Dir if needed
func (s FileSink) Save(doc Document) error {
	if strings.TrimSpace(doc.Name) == "" {
		return ErrEmptyName
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(doc.Name))
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Path returns where Save would write name
func (s FileSink) Path(name string) string {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.Base(name))
}

// ClipboardSink copies document data to the system clipboard
type ClipboardSink struct {
	// WriteAll replaces clipboard.WriteAll, mainly for tests
	WriteAll func(text string) error
}

// Save copies doc.Data
func (s ClipboardSink) Save(doc Document) error {
	write := s.WriteAll
	if write == nil {
		if clipboard.Unsupported {
			return ErrClipboardUnavailable
		}
		write = clipboard.WriteAll
	}

	if err := write(string(doc.Data)); err != nil {
		return fmt.Errorf("copy %s: %w", doc.Name, err)
	}
	return nil
}
