// =============================================================================
// Sales Aggregator - Summary Writer Module
// =============================================================================
//
// This module renders the final totals of a run and hands them to the file
// manager. One summary file is produced per dimension.
//
// FILE FORMAT:
//   One line per entity, in the order the entity first appeared in the
//   definition file. No header row, no trailing metadata.
//
//   001,Store A,1000
//   002,Store B,2000
//
// COMMIT RULE:
//   Summaries are staged and then renamed into place together. A failure
//   while writing leaves no partially written summary behind.
//
// =============================================================================

package summarywriter

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/sales-aggregator/internal/aggregator"
	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// =============================================================================
// CONTRACT
// =============================================================================

// Summary is the final state of one dimension.
type Summary struct {
	Dimension types.Dimension
	Table     *types.EntityTable
	Totals    *aggregator.RunningTotal
}

// SummaryWriter persists the summaries of a successful run into dir.
type SummaryWriter interface {
	WriteSummaries(dir string, summaries []Summary) error
}

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for rendering a summary.
type GenerateOptions struct {
	// Delimiter separates code, name and total.
	// Default: ","
	Delimiter string

	// LineEnding terminates every line.
	// Default: "\n"
	LineEnding string
}

// DefaultGenerateOptions returns the default rendering options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Delimiter:  ",",
		LineEnding: "\n",
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// Generate renders s with the default options.
func Generate(s Summary) ([]byte, error) {
	return GenerateWithOptions(s, DefaultGenerateOptions())
}

// GenerateWithOptions renders s as "code<delim>name<delim>total" lines.
func GenerateWithOptions(s Summary, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	for _, code := range s.Table.Codes() {
		name, _ := s.Table.Name(code)
		total, ok := s.Totals.Get(code)
		if !ok {
			return nil, fmt.Errorf("%s: code %q has no running total", s.Dimension.Name, code)
		}

		buffer.WriteString(string(code))
		buffer.WriteString(options.Delimiter)
		buffer.WriteString(name)
		buffer.WriteString(options.Delimiter)
		buffer.WriteString(total.String())
		buffer.WriteString(options.LineEnding)
	}

	return buffer.Bytes(), nil
}

// =============================================================================
// FLAT FILE WRITER
// =============================================================================

// FileWriter is the SummaryWriter backed by a FileManager.
type FileWriter struct {
	files   *utils.FileManager
	options GenerateOptions
}

// NewFileWriter returns a FileWriter using the default options.
func NewFileWriter(files *utils.FileManager) *FileWriter {
	return &FileWriter{files: files, options: DefaultGenerateOptions()}
}

// NewFileWriterWithOptions returns a FileWriter using options.
func NewFileWriterWithOptions(files *utils.FileManager, options GenerateOptions) *FileWriter {
	return &FileWriter{files: files, options: options}
}

// WriteSummaries renders every summary and commits them together.
func (w *FileWriter) WriteSummaries(dir string, summaries []Summary) error {
	staged := make([]utils.StagedFile, 0, len(summaries))
	for _, s := range summaries {
		data, err := GenerateWithOptions(s, w.options)
		if err != nil {
			return apperr.Unexpected(err)
		}
		staged = append(staged, utils.StagedFile{
			Path: filepath.Join(dir, s.Dimension.SummaryFile),
			Data: data,
		})
	}

	if err := w.files.WriteAllStaged(staged); err != nil {
		return apperr.IO("write", dir, err)
	}
	return nil
}
