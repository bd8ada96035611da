// Package pipeline runs one annotation build: extract, parse and merge every
// file, then apply the throw policy.
package pipeline

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"apidoc/internal/diag"
	"apidoc/internal/extractor"
	"apidoc/internal/fragment"
	"apidoc/internal/openapi"
	"apidoc/internal/payload"
	"apidoc/internal/source"
)

// Extractor locates the raw annotations of one file in order of appearance.
type Extractor interface {
	Extract(path string, content []byte) ([]fragment.Raw, error)
}

// Options configures a single Build call. The zero value is usable.
type Options struct {
	// ThrowLevel is the minimum severity that fails the build.
	ThrowLevel diag.ThrowLevel
	// Verbose copies every diagnostic into Result.Diagnostics.
	Verbose bool
	// OpenAPIVersion is written to the document; empty means openapi.DefaultVersion.
	OpenAPIVersion string
	// Extractor defaults to the tree-sitter extractor.
	Extractor Extractor
	// PayloadParser defaults to payload.YAML.
	PayloadParser payload.Parser
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Result is the outcome of a successful build.
type Result struct {
	Document *openapi.Document
	// Diagnostics is only filled in verbose mode.
	Diagnostics []diag.Diagnostic
}

type stats struct {
	Files       int
	Annotations int
	Fragments   int
}

type run struct {
	opts   Options
	log    *slog.Logger
	bag    *diag.Bag
	r      diag.Reporter
	parser *fragment.Parser
	acc    *openapi.Accumulator
	stats  stats
}

// Build merges the annotations of files, in sequence order, into one
// document. It fails with a *diag.AggregateError when the highest recorded
// severity reaches opts.ThrowLevel.
func Build(files iter.Seq[source.File], opts Options) (*Result, error) {
	start := time.Now()
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}

	for f := range files {
		r.fileStage(f)
	}

	return r.finishStage(time.Since(start))
}

func newRun(opts Options) (*run, error) {
	if opts.Extractor == nil {
		ext, err := extractor.NewExtractor()
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
		opts.Extractor = ext
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	bag := diag.NewBag()
	r := &run{
		opts:   opts,
		log:    logger,
		bag:    bag,
		parser: fragment.NewParser(opts.PayloadParser),
	}
	r.r = diag.ReporterFunc(r.record)
	r.acc = openapi.NewAccumulator(opts.OpenAPIVersion, r.r)
	return r, nil
}

func (r *run) record(d diag.Diagnostic) {
	r.bag.Add(d)
	if r.opts.Verbose {
		r.log.Debug("diagnostic", "origin", d.Origin.String(), "severity", d.Severity.String(), "code", d.Code.ID(), "message", d.Message)
	}
}

// fileStage extracts, parses and merges the annotations of one file.
func (r *run) fileStage(f source.File) {
	r.stats.Files++
	raws, err := r.opts.Extractor.Extract(f.Path, f.Content)
	if err != nil {
		diag.ReportError(r.r, diag.ExtractFailed, diag.Location{File: f.Path}, "failed to extract annotations: %v", err)
		return
	}
	r.log.Debug("file scanned", "path", f.Path, "annotations", len(raws))

	for _, raw := range raws {
		r.stats.Annotations++
		frag, ok := r.parser.Parse(raw, r.r)
		if !ok {
			continue
		}
		r.stats.Fragments++
		r.acc.Merge(frag)
	}
}

// finishStage applies the throw policy once every file has been merged.
func (r *run) finishStage(elapsed time.Duration) (*Result, error) {
	r.log.Info("build finished",
		"files", r.stats.Files,
		"annotations", r.stats.Annotations,
		"fragments", r.stats.Fragments,
		"errors", r.bag.Count(diag.SevError),
		"warnings", r.bag.Count(diag.SevWarning),
		"infos", r.bag.Count(diag.SevInfo),
		"elapsed", elapsed,
	)

	if r.opts.ThrowLevel.Fails(r.bag) {
		return nil, &diag.AggregateError{Threshold: r.opts.ThrowLevel, Diagnostics: r.bag.Items()}
	}
	res := &Result{Document: r.acc.Document()}
	if r.opts.Verbose {
		res.Diagnostics = r.bag.Items()
	}
	return res, nil
}
