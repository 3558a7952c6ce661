// =============================================================================
// Sales Aggregator - Definition Loader
// =============================================================================
//
// This module reads a definition file (one "code<delim>name" entity per line)
// for a single dimension and builds the dimension's EntityTable together with
// a zeroed RunningTotal.
//
// FORMAT RULES:
//   - Empty lines are ignored
//   - Every other line splits on the delimiter into exactly two fields
//   - The code field must fully match the dimension's code pattern
//   - A repeated code replaces the name; its total stays 0
//
// FAILURES:
//   - Missing file        -> DefinitionFileNotFound
//   - Bad line or code    -> InvalidDefinitionFormat
//   - Any other I/O fault -> IOFailure (generic message)
//
// =============================================================================

package definition

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/sales-aggregator/internal/aggregator"
	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// DefaultDelimiter separates the code from the name.
const DefaultDelimiter = ","

// =============================================================================
// LOADER
// =============================================================================

// Loader reads definition files through a FileManager.
type Loader struct {
	files     *utils.FileManager
	delimiter string
	digits    int
}

// NewLoader returns a Loader. An empty delimiter uses DefaultDelimiter;
// digits is the total width handed to each RunningTotal.
func NewLoader(files *utils.FileManager, delimiter string, digits int) *Loader {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Loader{files: files, delimiter: delimiter, digits: digits}
}

// Load reads the definition file of dim from dir.
//
// RETURNS:
//   - The EntityTable in file order.
//   - A RunningTotal with every code opened at 0.
//   - An *apperr.Error on failure.
func (l *Loader) Load(dir string, dim types.Dimension) (*types.EntityTable, *aggregator.RunningTotal, error) {
	path := filepath.Join(dir, dim.DefinitionFile)

	// A directory with the definition file's name counts as missing.
	exists, err := l.files.FileExists(path)
	if err != nil {
		return nil, nil, apperr.IO("stat", path, err)
	}
	if !exists {
		return nil, nil, apperr.NotFound(dim.Label, os.ErrNotExist)
	}

	lines, err := l.files.ReadLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperr.NotFound(dim.Label, err)
		}
		return nil, nil, apperr.IO("read", path, err)
	}

	table := types.NewEntityTable()
	totals := aggregator.NewRunningTotal(l.digits)

	for _, line := range lines {
		if line == "" {
			continue
		}

		code, name, ok := l.splitLine(line, dim)
		if !ok {
			return nil, nil, apperr.BadDefinition(dim.Label)
		}

		table.Put(code, name)
		totals.Open(code)
	}

	return table, totals, nil
}

// splitLine splits one definition line into its code and name.
func (l *Loader) splitLine(line string, dim types.Dimension) (types.EntityCode, string, bool) {
	fields := strings.Split(line, l.delimiter)
	if len(fields) != 2 {
		return "", "", false
	}
	if dim.CodePattern == nil || !dim.CodePattern.MatchString(fields[0]) {
		return "", "", false
	}
	return types.EntityCode(fields[0]), fields[1], true
}
