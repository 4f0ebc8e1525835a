// Package inspect defines the read-only view of a project document that the
// crawler consumes. Implementations live elsewhere (see package aprx).
package inspect

import (
	"errors"
	"fmt"
)

// Capability is a per-layer property that may or may not be available
type Capability int

const (
	CapName Capability = iota
	CapDataSource
	CapShowLabels
	CapSymbology
)

func (c Capability) String() string {
	switch c {
	case CapName:
		return "NAME"
	case CapDataSource:
		return "DATASOURCE"
	case CapShowLabels:
		return "SHOWLABELS"
	case CapSymbology:
		return "SYMBOLOGY"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// RendererUniqueValue is the renderer type whose fields are reported
const RendererUniqueValue = "UniqueValueRenderer"

// Renderer describes a layer's symbology
type Renderer struct {
	Type   string
	Fields []string
}

// IsUniqueValue returns true for unique values renderers
func (r Renderer) IsUniqueValue() bool {
	return r.Type == RendererUniqueValue
}

// Inspector opens project documents
type Inspector interface {
	Open(path string) (Project, error)
}

// Project is an opened project document. Close must be called once done.
type Project interface {
	Maps() ([]Map, error)
	Close() error
}

// Map is a named collection of layers
type Map interface {
	Name() string
	Layers() ([]Layer, error)
}

// Layer exposes capability-gated accessors. Getters are only meaningful when
// Supports returns true for the matching capability.
type Layer interface {
	Supports(c Capability) bool
	Name() (string, error)
	DataSource() (string, error)
	ShowLabels() (bool, error)
	Renderer() (Renderer, error)
}

// ProjectOpenError reports a file that is not a readable project document
type ProjectOpenError struct {
	Path string
	Err  error
}

func (e *ProjectOpenError) Error() string {
	return fmt.Sprintf("opening project %s: %v", e.Path, e.Err)
}

func (e *ProjectOpenError) Unwrap() error { return e.Err }

// IsProjectOpen reports whether err is a ProjectOpenError
func IsProjectOpen(err error) bool {
	var e *ProjectOpenError
	return errors.As(err, &e)
}

// Use opens path, passes the project to fn and closes it afterwards, whether
// or not fn succeeded. Open failures are returned as *ProjectOpenError.
func Use(insp Inspector, path string, fn func(Project) error) (err error) {
	p, err := insp.Open(path)
	if err != nil {
		if !IsProjectOpen(err) {
			err = &ProjectOpenError{Path: path, Err: err}
		}
		return err
	}

	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing project %s: %w", path, cerr)
		}
	}()

	return fn(p)
}
