package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/juparave/aprxaudit/internal/aprx"
	"github.com/juparave/aprxaudit/internal/config"
	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/extract"
	"github.com/juparave/aprxaudit/internal/inspect"
	"github.com/juparave/aprxaudit/internal/report"
	"github.com/juparave/aprxaudit/internal/scanner"
)

// Runner orchestrates a crawl: scan, open, extract, write
type Runner struct {
	config    *config.Config
	out       io.Writer
	errOut    io.Writer
	logger    *log.Logger
	errLogger *log.Logger
	console   *console
	scanner   *scanner.Scanner
	inspector inspect.Inspector
	now       func() time.Time
	openSink  func(path string, v domain.Variant) (recordSink, error)
}

// recordSink receives the rows of a run
type recordSink interface {
	Write(domain.Record) error
	Rows() int
	Close() error
}

func openReport(path string, v domain.Variant) (recordSink, error) {
	w, err := report.Create(path, v)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Option customises a Runner
type Option func(*Runner)

// WithInspector replaces the .aprx inspector
func WithInspector(i inspect.Inspector) Option {
	return func(r *Runner) { r.inspector = i }
}

// WithOutput sends progress lines to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithErrorOutput sends warnings to w instead of stderr
func WithErrorOutput(w io.Writer) Option {
	return func(r *Runner) { r.errOut = w }
}

// WithClock sets the time source used for the report
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a new Runner instance
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		config:    cfg,
		out:       os.Stdout,
		errOut:    os.Stderr,
		inspector: aprx.New(),
		now:       time.Now,
		openSink:  openReport,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.console = newConsole(r.out, r.errOut)
	r.logger = r.console.logger
	r.errLogger = r.console.errLogger
	r.scanner = scanner.New(r.errLogger, scanner.Options{
		Suffix:           cfg.ProjectSuffix,
		ExcludeSuffixes:  cfg.ExcludeSuffixes,
		AllowMissingRoot: cfg.AllowMissingRoot,
	})

	return r
}

// Run crawls the configured root and writes every layer to the output file.
// A project that cannot be opened or read is skipped; failing to write the
// output ends the run. Rows written before a failure stay on disk.
func (r *Runner) Run(ctx context.Context) (*domain.Report, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	variant := r.config.OutputVariant()
	rpt := &domain.Report{
		RunID:      uuid.NewString(),
		StartedAt:  r.now(),
		RootPath:   r.config.RootPath,
		OutputPath: r.config.OutputPath,
		Variant:    variant,
	}

	r.console.Infof("Beginning process (run %s)", rpt.RunID)
	r.log("Scanning %s for *%s, excluding %v", rpt.RootPath, r.config.ProjectSuffix, r.config.ExcludeSuffixes)

	w, err := r.openSink(rpt.OutputPath, variant)
	if err != nil {
		return rpt, err
	}

	opts := extract.Options{
		Variant:     variant,
		MissingName: r.config.MissingLayerName,
	}
	if r.config.Verbose {
		opts.Trace = r.logger
	}
	extractor := extract.New(r.errLogger, opts)

	runErr := r.crawl(ctx, rpt, extractor, w)

	stats := extractor.Stats()
	rpt.Maps = stats.Maps
	rpt.LayersSkipped = stats.LayersSkipped
	rpt.Records = w.Rows()

	if err := w.Close(); err != nil && runErr == nil {
		runErr = err
	}
	rpt.FinishedAt = r.now()

	if runErr != nil {
		r.console.Warnf("Stopped after %d projects: %v", rpt.ProjectsFound, runErr)
		return rpt, runErr
	}

	r.console.Infof("Finished process: %d projects (%d failed), %d rows written to %s in %s",
		rpt.ProjectsFound, rpt.ProjectsFailed, rpt.Records, rpt.OutputPath, rpt.Elapsed().Round(time.Millisecond))
	if rpt.LayersSkipped > 0 {
		r.console.Warnf("%d layers could not be read", rpt.LayersSkipped)
	}

	return rpt, nil
}

func (r *Runner) crawl(ctx context.Context, rpt *domain.Report, ex *extract.Extractor, w recordSink) error {
	for pf, err := range r.scanner.Projects(rpt.RootPath) {
		if err != nil {
			return fmt.Errorf("scanning projects: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rpt.ProjectsFound++
		err := inspect.Use(r.inspector, pf.Path, func(p inspect.Project) error {
			for rec, err := range ex.Records(pf, p) {
				if err != nil {
					return err
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})

		switch {
		case err == nil:
			r.console.OKf("Finished processing %s", filepath.Base(pf.Path))
		case report.IsOutputWrite(err):
			return err
		default:
			rpt.ProjectsFailed++
			r.console.Warnf("Skipping %s: %v", pf.Path, err)
		}
	}
	return nil
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.config.Verbose {
		r.logger.Printf(format, args...)
	}
}
