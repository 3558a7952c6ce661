// =============================================================================
// Sales Aggregator - File Manager Utility
// =============================================================================
//
// This module provides the file plumbing the aggregation pipeline relies on:
//   - Record file discovery in the run directory
//   - Scoped line-by-line reading (the handle is always released)
//   - Staged writes that become visible only when every file is complete
//
// All access goes through an afero.Fs so the pipeline can run against an
// in-memory filesystem.
//
// STAGING STRATEGY:
//   - Every output is written to a uniquely named temporary file in the
//     destination directory
//   - Only after all temporaries are written are they renamed into place
//   - On any failure the temporaries are removed
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the pipeline.
type FileManager struct {
	fs afero.Fs
}

// NewFileManager returns a FileManager over fs. A nil fs means the OS filesystem.
func NewFileManager(fs afero.Fs) *FileManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileManager{fs: fs}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverFiles lists the regular files directly inside dir whose base name
// matches pattern.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not descended into.
//   - pattern: Matched against the base name; directories never match.
//
// RETURNS:
//   - Base names sorted ascending.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverFiles(dir string, pattern *regexp.Regexp) ([]string, error) {
	// afero.ReadDir returns entries sorted by name.
	entries, err := afero.ReadDir(fm.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

// =============================================================================
// READING
// =============================================================================

// ReadLines returns the lines of the file at path without their line
// terminators ("\n" or "\r\n"). An empty file has no lines.
func (fm *FileManager) ReadLines(path string) (lines []string, err error) {
	file, err := fm.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			lines, err = nil, fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lines, nil
}

// FileExists reports whether path exists and is not a directory.
func (fm *FileManager) FileExists(path string) (bool, error) {
	info, err := fm.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// =============================================================================
// STAGED WRITES
// =============================================================================

// StagedFile is one file to be written by WriteAllStaged.
type StagedFile struct {
	// Path is the final destination.
	Path string

	// Data is the complete file content.
	Data []byte
}

// WriteAllStaged writes every file so that either all of them appear at
// their destinations or, on failure, none of the temporaries are left
// behind.
//
// PROCESS:
//   1. Write each file to "<dir>/.<name>.<uuid>.tmp"
//   2. Rename each temporary onto its destination
//   3. On any error, remove temporaries that were not yet renamed
//
// NOTE: A failure in step 2 after some renames have succeeded leaves those
// destinations replaced; the error is still returned.
func (fm *FileManager) WriteAllStaged(files []StagedFile) error {
	temps := make([]string, 0, len(files))
	cleanup := func(from int) {
		for _, tmp := range temps[from:] {
			_ = fm.fs.Remove(tmp)
		}
	}

	for _, f := range files {
		tmp := stagingPath(f.Path)
		temps = append(temps, tmp)
		if err := afero.WriteFile(fm.fs, tmp, f.Data, 0644); err != nil {
			cleanup(0)
			return fmt.Errorf("write %s: %w", tmp, err)
		}
	}

	for i, f := range files {
		if err := fm.fs.Rename(temps[i], f.Path); err != nil {
			cleanup(i)
			return fmt.Errorf("rename %s: %w", f.Path, err)
		}
	}

	return nil
}

// stagingPath returns a unique hidden sibling of path.
func stagingPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.New().String()))
}
