package extract

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"

	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/inspect"
)

// Options controls how records are derived from layers
type Options struct {
	Variant domain.Variant
	// MissingName is written when a layer does not support name lookup
	MissingName string
	// Trace receives one line per record when set
	Trace *log.Logger
}

// Stats counts what the extractor produced and skipped
type Stats struct {
	Maps          int
	MapsSkipped   int
	Records       int
	LayersSkipped int
}

// LayerError reports a layer whose properties could not be read
type LayerError struct {
	Project string
	Map     string
	Index   int
	Cap     inspect.Capability
	Err     error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("%s / %s layer %d: reading %s: %v", e.Project, e.Map, e.Index, e.Cap, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// IsLayerError reports whether err is a LayerError
func IsLayerError(err error) bool {
	var e *LayerError
	return errors.As(err, &e)
}

// Extractor turns an opened project into output records
type Extractor struct {
	logger *log.Logger
	opts   Options
	stats  Stats
}

// New creates a new Extractor. Warnings about skipped maps and layers go to
// logger.
func New(logger *log.Logger, opts Options) *Extractor {
	if opts.Variant == "" {
		opts.Variant = domain.VariantExtended
	}
	return &Extractor{logger: logger, opts: opts}
}

// Stats returns the counters accumulated so far
func (e *Extractor) Stats() Stats {
	return e.stats
}

// Records lazily yields one record per layer, map by map. A layer that fails
// to read is logged and skipped, as is a map whose layers cannot be listed.
// The only error yielded is a failure to list the project's maps, after
// which iteration ends.
func (e *Extractor) Records(pf domain.ProjectFile, p inspect.Project) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		maps, err := p.Maps()
		if err != nil {
			yield(domain.Record{}, fmt.Errorf("listing maps of %s: %w", pf.Path, err))
			return
		}

		for _, m := range maps {
			mapName := m.Name()
			layers, err := m.Layers()
			if err != nil {
				e.stats.MapsSkipped++
				e.logger.Printf("Warning: skipping map %q in %s: %v", mapName, pf.Name, err)
				continue
			}
			e.stats.Maps++

			for i, l := range layers {
				rec, err := e.record(pf, mapName, i, l)
				if err != nil {
					e.stats.LayersSkipped++
					e.logger.Printf("Warning: skipping layer: %v", err)
					continue
				}
				e.stats.Records++
				if e.opts.Trace != nil {
					e.opts.Trace.Printf("  %s / %s / %s", pf.Name, mapName, rec.LayerName)
				}
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

func (e *Extractor) record(pf domain.ProjectFile, mapName string, idx int, l inspect.Layer) (domain.Record, error) {
	rec := domain.Record{
		ProjectName: pf.Name,
		ProjectPath: pf.Path,
		MapName:     mapName,
		DataSource:  domain.NotAvailable,
		HasLabels:   domain.LabelsUnsupported,
	}
	fail := func(c inspect.Capability, err error) (domain.Record, error) {
		return domain.Record{}, &LayerError{Project: pf.Name, Map: mapName, Index: idx, Cap: c, Err: err}
	}

	if l.Supports(inspect.CapName) {
		name, err := l.Name()
		if err != nil {
			return fail(inspect.CapName, err)
		}
		rec.LayerName = name
	} else {
		e.logger.Printf("Warning: no layer name for %s / %s layer %d", pf.Name, mapName, idx)
		rec.LayerName = e.opts.MissingName
	}

	if l.Supports(inspect.CapDataSource) {
		ds, err := l.DataSource()
		if err != nil {
			return fail(inspect.CapDataSource, err)
		}
		rec.DataSource = LastSegment(ds)
	}

	if l.Supports(inspect.CapShowLabels) {
		shown, err := l.ShowLabels()
		if err != nil {
			return fail(inspect.CapShowLabels, err)
		}
		rec.HasLabels = domain.LabelsHidden
		if shown {
			rec.HasLabels = domain.LabelsShown
		}
	}

	if e.opts.Variant == domain.VariantExtended {
		sym, err := symbologyField(l)
		if err != nil {
			return fail(inspect.CapSymbology, err)
		}
		rec.SymbologyField = sym
	}

	return rec, nil
}

func symbologyField(l inspect.Layer) (string, error) {
	if !l.Supports(inspect.CapSymbology) {
		return domain.SymbologyUnsupported, nil
	}
	r, err := l.Renderer()
	if err != nil {
		return "", err
	}
	if !r.IsUniqueValue() {
		return domain.OtherRendererType, nil
	}
	return strings.Join(r.Fields, domain.SymbologyFieldDivider), nil
}

// LastSegment returns the part of a composite data source after the last comma
func LastSegment(ds string) string {
	if i := strings.LastIndex(ds, ","); i >= 0 {
		return ds[i+1:]
	}
	return ds
}
