// Package inspecttest provides in-memory implementations of the inspect
// interfaces for tests.
package inspecttest

import (
	"errors"
	"fmt"

	"github.com/juparave/aprxaudit/internal/inspect"
)

// Layer is a configurable in-memory layer. A capability is supported when
// its value is set; the matching Err field makes the getter fail.
type Layer struct {
	LayerName *string
	Source    *string
	Labels    *bool
	Symbology *inspect.Renderer
	NameErr   error
	SourceErr error
	LabelsErr error
	RenderErr error
}

func (l *Layer) Supports(c inspect.Capability) bool {
	switch c {
	case inspect.CapName:
		return l.LayerName != nil || l.NameErr != nil
	case inspect.CapDataSource:
		return l.Source != nil || l.SourceErr != nil
	case inspect.CapShowLabels:
		return l.Labels != nil || l.LabelsErr != nil
	case inspect.CapSymbology:
		return l.Symbology != nil || l.RenderErr != nil
	}
	return false
}

func (l *Layer) Name() (string, error) {
	if l.NameErr != nil {
		return "", l.NameErr
	}
	if l.LayerName == nil {
		return "", errors.New("name not supported")
	}
	return *l.LayerName, nil
}

func (l *Layer) DataSource() (string, error) {
	if l.SourceErr != nil {
		return "", l.SourceErr
	}
	if l.Source == nil {
		return "", errors.New("data source not supported")
	}
	return *l.Source, nil
}

func (l *Layer) ShowLabels() (bool, error) {
	if l.LabelsErr != nil {
		return false, l.LabelsErr
	}
	if l.Labels == nil {
		return false, errors.New("labels not supported")
	}
	return *l.Labels, nil
}

func (l *Layer) Renderer() (inspect.Renderer, error) {
	if l.RenderErr != nil {
		return inspect.Renderer{}, l.RenderErr
	}
	if l.Symbology == nil {
		return inspect.Renderer{}, errors.New("symbology not supported")
	}
	return *l.Symbology, nil
}

// Map is an in-memory map
type Map struct {
	MapName  string
	Children []*Layer
	Err      error
}

func (m *Map) Name() string { return m.MapName }

func (m *Map) Layers() ([]inspect.Layer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]inspect.Layer, len(m.Children))
	for i, l := range m.Children {
		out[i] = l
	}
	return out, nil
}

// Project is an in-memory project that records Close calls
type Project struct {
	MapList []*Map
	MapsErr error
	Closed  int
}

func (p *Project) Maps() ([]inspect.Map, error) {
	if p.MapsErr != nil {
		return nil, p.MapsErr
	}
	out := make([]inspect.Map, len(p.MapList))
	for i, m := range p.MapList {
		out[i] = m
	}
	return out, nil
}

func (p *Project) Close() error {
	p.Closed++
	return nil
}

// Inspector serves projects by path
type Inspector struct {
	Projects map[string]*Project
	Opened   []string
}

func (i *Inspector) Open(path string) (inspect.Project, error) {
	i.Opened = append(i.Opened, path)
	p, ok := i.Projects[path]
	if !ok {
		return nil, &inspect.ProjectOpenError{Path: path, Err: fmt.Errorf("no fake project")}
	}
	return p, nil
}

// String returns a pointer for Layer fields
func String(s string) *string { return &s }

// Bool returns a pointer for Layer.Labels
func Bool(b bool) *bool { return &b }

// UniqueValues returns a unique values renderer over fields
func UniqueValues(fields ...string) *inspect.Renderer {
	return &inspect.Renderer{Type: inspect.RendererUniqueValue, Fields: fields}
}

// OtherRenderer returns a renderer of the given non unique values type
func OtherRenderer(typ string) *inspect.Renderer {
	return &inspect.Renderer{Type: typ}
}
