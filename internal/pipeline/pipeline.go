// =============================================================================
// Sales Aggregator - Pipeline Module
// =============================================================================
//
// This module orchestrates one aggregation run over a single directory.
//
// PIPELINE:
//   1. Load every dimension's definition file
//   2. Discover record files and check their sequence numbers are contiguous
//   3. For each record file, in sequence order:
//      a. Read its lines
//      b. Validate them against the definition tables
//      c. Add the amount to every dimension's running total
//   4. Write one summary file per dimension
//
// ABORT RULE:
//   The first failure at any step ends the run. No further record file is
//   read and no summary file is written. Processing is strictly sequential so
//   the reported error is always the one from the earliest file in sequence.
//
// =============================================================================

package pipeline

import (
	"path/filepath"
	"time"

	"github.com/ginjaninja78/sales-aggregator/internal/aggregator"
	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/definition"
	"github.com/ginjaninja78/sales-aggregator/internal/logger"
	"github.com/ginjaninja78/sales-aggregator/internal/summarywriter"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/internal/validation"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Dir is the directory that was processed.
	Dir string

	// Success indicates whether every step completed.
	Success bool

	// Error is the first failure; nil on success. It is always an *apperr.Error.
	Error error

	// Summaries holds the final totals. Empty if the run failed.
	Summaries []summarywriter.Summary

	// Written lists the summary files written. Empty on dry runs.
	Written []string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// EntitiesLoaded is the number of distinct codes per dimension name.
	EntitiesLoaded map[string]int

	// RecordFilesFound is the number of record files discovered.
	RecordFilesFound int

	// RecordFilesProcessed is the number of record files accumulated.
	RecordFilesProcessed int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs the aggregation for one directory.
type Pipeline struct {
	dir    string
	config *config.MainConfig
	files  *utils.FileManager
	loader *definition.Loader
	writer summarywriter.SummaryWriter
	logger *logger.Logger
	dryRun bool
}

// New creates a Pipeline over dir on the OS filesystem.
//
// PARAMETERS:
//   - dir: The directory holding definition and record files.
//   - cfg: A validated configuration.
//   - log: The logger; nil discards log output.
func New(dir string, cfg *config.MainConfig, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{
		dir:    dir,
		config: cfg,
		logger: log,
	}
	p.SetFS(afero.NewOsFs())
	return p
}

// SetFS replaces the filesystem, e.g. with afero.NewMemMapFs in tests. It
// also resets the summary writer to a FileWriter over fs that uses the
// configured delimiter.
func (p *Pipeline) SetFS(fs afero.Fs) {
	p.files = utils.NewFileManager(fs)
	p.loader = definition.NewLoader(p.files, p.config.Delimiter, p.config.MaxTotalDigits)
	options := summarywriter.DefaultGenerateOptions()
	options.Delimiter = p.config.Delimiter
	p.writer = summarywriter.NewFileWriterWithOptions(p.files, options)
}

// SetWriter replaces the summary writer.
func (p *Pipeline) SetWriter(w summarywriter.SummaryWriter) {
	p.writer = w
}

// SetDryRun makes Run stop before writing summaries.
func (p *Pipeline) SetDryRun(dryRun bool) {
	p.dryRun = dryRun
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline.
//
// RETURNS:
//   - A Result; Result.Error is set on the first failure.
func (p *Pipeline) Run() Result {
	startTime := time.Now()
	result := Result{
		RunID: uuid.New().String(),
		Dir:   p.dir,
		Stats: ProcessingStats{EntitiesLoaded: make(map[string]int)},
	}
	log := p.logger.With("run_id", result.RunID, "dir", p.dir)

	fail := func(err error) Result {
		result.Error = err
		result.Summaries = nil
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error("aggregation aborted",
			"kind", apperr.KindOf(err).String(),
			"message", apperr.Message(err),
			"cause", err.Error())
		return result
	}

	// =========================================================================
	// STEP 1: LOAD DEFINITIONS
	// =========================================================================

	dimensions := p.config.DimensionList()
	summaries := make([]summarywriter.Summary, 0, len(dimensions))
	codeTables := make([]validation.CodeTable, 0, len(dimensions))
	totals := make([]*aggregator.RunningTotal, 0, len(dimensions))

	for _, dim := range dimensions {
		table, running, err := p.loader.Load(p.dir, dim)
		if err != nil {
			return fail(err)
		}

		summaries = append(summaries, summarywriter.Summary{Dimension: dim, Table: table, Totals: running})
		codeTables = append(codeTables, validation.CodeTable{Dimension: dim, Table: table})
		totals = append(totals, running)
		result.Stats.EntitiesLoaded[dim.Name] = table.Len()

		log.Debug("loaded definitions", "dimension", dim.Name, "file", dim.DefinitionFile, "codes", table.Len())
	}

	// =========================================================================
	// STEP 2: DISCOVER AND SEQUENCE-CHECK RECORD FILES
	// =========================================================================

	recordFiles, err := p.discoverRecordFiles()
	if err != nil {
		return fail(err)
	}
	result.Stats.RecordFilesFound = len(recordFiles)

	keys := make([]types.SequenceKey, len(recordFiles))
	for i, rf := range recordFiles {
		keys[i] = rf.Key
	}
	if err := validation.ValidateSequence(keys); err != nil {
		return fail(err)
	}

	log.Debug("record files are sequential", "count", len(recordFiles))

	// =========================================================================
	// STEP 3: VALIDATE AND ACCUMULATE
	// =========================================================================

	agg := aggregator.New(totals)
	lineCount := p.config.RecordLineCount()

	for _, rf := range recordFiles {
		lines, err := p.files.ReadLines(rf.Path)
		if err != nil {
			return fail(apperr.IO("read", rf.Path, err))
		}

		record, err := validation.ValidateRecord(rf.Name, lines, lineCount, codeTables)
		if err != nil {
			return fail(err)
		}

		if err := agg.Apply(record); err != nil {
			return fail(err)
		}

		result.Stats.RecordFilesProcessed++
		log.Debug("accumulated record", "file", rf.Name, "amount", record.Amount.String())
	}

	// =========================================================================
	// STEP 4: WRITE SUMMARIES
	// =========================================================================

	if p.dryRun {
		log.Info("dry run: summaries not written", "records", result.Stats.RecordFilesProcessed)
	} else {
		if err := p.writer.WriteSummaries(p.dir, summaries); err != nil {
			return fail(err)
		}
		for _, s := range summaries {
			result.Written = append(result.Written, filepath.Join(p.dir, s.Dimension.SummaryFile))
		}
		log.Info("wrote summaries", "files", result.Written, "records", result.Stats.RecordFilesProcessed)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Summaries = summaries
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverRecordFiles lists the record files of the run directory sorted by
// name, which for fixed-width numeric stems is sequence order.
func (p *Pipeline) discoverRecordFiles() ([]types.RecordFile, error) {
	names, err := p.files.DiscoverFiles(p.dir, p.config.RecordRegexp())
	if err != nil {
		return nil, apperr.IO("list", p.dir, err)
	}

	recordFiles := make([]types.RecordFile, 0, len(names))
	for _, name := range names {
		key, err := validation.SequenceKeyFromName(name)
		if err != nil {
			return nil, err
		}
		recordFiles = append(recordFiles, types.RecordFile{
			Path: filepath.Join(p.dir, name),
			Name: name,
			Key:  key,
		})
	}

	return recordFiles, nil
}
