// Package importer converts spreadsheet, CSV and JSON files into question
// banks. Parsing is stateless: nothing here touches the store except
// LoadPresets, which only saves what the parsers return.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repeatio/examweb/internal/quiz"
)

var (
	// ErrNoQuestions is returned when a file yields no valid question.
	ErrNoQuestions = errors.New("no valid questions found, check the file format")

	// ErrUnsupportedFormat is returned for file extensions with no parser.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Extensions lists the file extensions ImportFile understands.
var Extensions = []string{".xlsx", ".csv", ".json"}

// Skipped describes a row that did not become a question.
type Skipped struct {
	Row    int // 1-based row number in the source sheet
	Reason string
}

// Result is an imported bank plus the rows that were dropped on the way.
type Result struct {
	Bank    *quiz.QuestionBank
	Skipped []Skipped
}

// Importer parses bank files. The zero value is not usable; call New.
type Importer struct {
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// New creates an Importer that logs skipped rows to logger.
func New(logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{
		logger: logger,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ImportFile parses the file at path, choosing the parser by extension.
// Spreadsheet and CSV banks are named after the file.
func (im *Importer) ImportFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return im.Import(BankName(path), filepath.Ext(path), f)
}

// Import parses r according to ext. name is used for tabular formats; JSON
// files carry their own name.
func (im *Importer) Import(name, ext string, r io.Reader) (*Result, error) {
	switch strings.ToLower(ext) {
	case ".xlsx":
		return im.ParseXLSX(name, r)
	case ".csv":
		return im.ParseCSV(name, r)
	case ".json":
		return im.ParseJSON(r)
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions, ", "))
}

// Supported reports whether path has an extension ImportFile can parse.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// BankName derives a bank name from a file path by dropping the directory
// and the extension.
func BankName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (im *Importer) newBank(name string, questions []quiz.Question) *quiz.QuestionBank {
	return &quiz.QuestionBank{
		ID:        im.newID(),
		Name:      name,
		CreatedAt: im.now(),
		Questions: questions,
	}
}
