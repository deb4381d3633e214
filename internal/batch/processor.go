package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/cfdi"
	"github.com/garyjia/cfdi-extractor/internal/models"
)

// Recorder persists per-document outcomes. Satisfied by
// repository.DocumentRepository; nil disables history recording.
type Recorder interface {
	Create(row *models.DocumentRow) error
}

// Result is the outcome of processing a single document. Exactly one of
// Record and Err is set.
type Result struct {
	Source string
	Record *models.NormalizedRecord
	Err    error
}

// FailureKind returns the stable failure identifier, or "" on success.
func (r Result) FailureKind() string {
	if r.Err == nil {
		return ""
	}
	return cfdi.Classify(r.Err)
}

// Summary aggregates one batch run. One bad document never aborts the run:
// it becomes a failed Result and the batch continues.
type Summary struct {
	Total     int
	Processed int
	Failed    int
	Results   []Result
}

// Records returns the successful records in source order.
func (s *Summary) Records() []*models.NormalizedRecord {
	records := make([]*models.NormalizedRecord, 0, s.Processed)
	for _, res := range s.Results {
		if res.Err == nil {
			records = append(records, res.Record)
		}
	}
	return records
}

// Processor drives the extraction engine over a folder of CFDI files. The
// engine itself is synchronous and stateless, so the pool runs one full
// per-document pipeline per worker invocation; a document is the atomic
// unit of cancellation.
type Processor struct {
	extractor *cfdi.Extractor
	recorder  Recorder
	workers   int
	logger    *zap.Logger
}

// NewProcessor creates a batch processor. recorder may be nil.
func NewProcessor(extractor *cfdi.Extractor, recorder Recorder, workers int, logger *zap.Logger) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		extractor: extractor,
		recorder:  recorder,
		workers:   workers,
		logger:    logger,
	}
}

// ProcessDir scans dir for XML files (case-insensitive extension match) and
// processes each one. It returns an error only when the directory itself
// cannot be scanned; per-document failures are reported in the summary.
func (p *Processor) ProcessDir(ctx context.Context, dir string) (*Summary, error) {
	paths, err := p.findDocuments(dir)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		p.logger.Warn("No CFDI files found", zap.String("dir", dir))
		return &Summary{}, nil
	}

	p.logger.Info("Starting batch run",
		zap.String("dir", dir),
		zap.Int("documents", len(paths)),
		zap.Int("workers", p.workers))

	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- p.processOne(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &Summary{}
	for res := range results {
		summary.Total++
		if res.Err != nil {
			summary.Failed++
			p.logger.Error("Document failed",
				zap.String("source", res.Source),
				zap.String("kind", res.FailureKind()),
				zap.Error(res.Err))
		} else {
			summary.Processed++
		}
		summary.Results = append(summary.Results, res)
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Source < summary.Results[j].Source
	})

	p.logger.Info("Batch run finished",
		zap.Int("total", summary.Total),
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// processOne runs the full pipeline for one path and records the outcome.
func (p *Processor) processOne(path string) Result {
	record, err := p.extractor.ProcessFile(path)
	res := Result{Source: path, Record: record, Err: err}

	if p.recorder != nil {
		var row *models.DocumentRow
		if err != nil {
			row = models.NewFailedDocumentRow(path, res.FailureKind())
		} else {
			row = models.NewDocumentRow(record)
		}
		if recErr := p.recorder.Create(row); recErr != nil {
			// History recording is best effort; the extraction result stands.
			p.logger.Warn("Failed to record document outcome",
				zap.String("source", path),
				zap.Error(recErr))
		}
	}

	return res
}

// findDocuments lists the XML files directly under dir.
func (p *Processor) findDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
