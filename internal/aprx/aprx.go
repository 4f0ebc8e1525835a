// Package aprx reads ArcGIS Pro project documents.
//
// An .aprx file is a zip archive of CIM JSON documents. GISProject.json lists
// the project items; each map item points at a map document through a
// CIMPATH= reference, and each map document lists its layers the same way.
// Layer definitions are either embedded in the map document or stored as
// separate archive entries.
package aprx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/juparave/aprxaudit/internal/inspect"
	"github.com/tidwall/gjson"
)

const (
	projectEntry  = "GISProject.json"
	cimPathPrefix = "CIMPATH="
	groupLayer    = "CIMGroupLayer"
	mapItemType   = "Map"
)

// ErrNoProjectDocument is returned for archives without GISProject.json
var ErrNoProjectDocument = errors.New("archive has no " + projectEntry)

// Inspector opens .aprx archives
type Inspector struct{}

// New creates a new Inspector
func New() *Inspector {
	return &Inspector{}
}

// Open reads the project index of the archive at path
func (i *Inspector) Open(path string) (inspect.Project, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &inspect.ProjectOpenError{Path: path, Err: err}
	}

	p := &project{
		path:    path,
		zr:      zr,
		entries: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		p.entries[entryKey(f.Name)] = f
	}

	doc, err := p.readJSON(projectEntry)
	if err != nil {
		zr.Close()
		return nil, &inspect.ProjectOpenError{Path: path, Err: err}
	}
	p.doc = doc

	return p, nil
}

type project struct {
	path    string
	zr      *zip.ReadCloser
	entries map[string]*zip.File
	doc     gjson.Result
}

func (p *project) Close() error {
	return p.zr.Close()
}

func (p *project) Maps() ([]inspect.Map, error) {
	items := p.doc.Get("projectItems")
	if items.Exists() && !items.IsArray() {
		return nil, fmt.Errorf("%s: projectItems is not an array", projectEntry)
	}

	var maps []inspect.Map
	for _, item := range items.Array() {
		if item.Get("itemType").String() != mapItemType {
			continue
		}
		maps = append(maps, p.loadMap(item))
	}
	return maps, nil
}

// loadMap never fails outright: a map whose document cannot be read keeps
// its catalog name and reports the failure from Layers.
func (p *project) loadMap(item gjson.Result) *mapDoc {
	m := &mapDoc{
		project: p,
		name:    item.Get("name").String(),
		defs:    make(map[string]gjson.Result),
	}

	doc, err := p.readJSON(item.Get("catalogPath").String())
	if err != nil {
		m.err = fmt.Errorf("map %q: %w", m.name, err)
		return m
	}

	if name := doc.Get("mapDefinition.name"); name.Exists() {
		m.name = name.String()
	}
	m.layerURIs = stringList(doc.Get("mapDefinition.layers"))
	for _, def := range doc.Get("layerDefinitions").Array() {
		if uri := def.Get("uRI").String(); uri != "" {
			m.defs[entryKey(uri)] = def
		}
	}
	return m
}

// readJSON reads and validates an archive entry. ref may carry a CIMPATH= prefix.
func (p *project) readJSON(ref string) (gjson.Result, error) {
	if ref == "" {
		return gjson.Result{}, errors.New("empty document reference")
	}

	f, ok := p.entries[entryKey(ref)]
	if !ok {
		if entryKey(ref) == entryKey(projectEntry) {
			return gjson.Result{}, ErrNoProjectDocument
		}
		return gjson.Result{}, fmt.Errorf("missing archive entry %s", ref)
	}

	rc, err := f.Open()
	if err != nil {
		return gjson.Result{}, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s is not valid JSON", f.Name)
	}
	return gjson.ParseBytes(data), nil
}

type mapDoc struct {
	project   *project
	name      string
	layerURIs []string
	defs      map[string]gjson.Result
	err       error
}

func (m *mapDoc) Name() string { return m.name }

// Layers lists the map's layers in drawing order. Group layers come before
// their children, matching how the layer tree is presented in the project.
func (m *mapDoc) Layers() ([]inspect.Layer, error) {
	if m.err != nil {
		return nil, m.err
	}

	var layers []inspect.Layer
	seen := make(map[string]bool)

	var walk func(uris []string)
	walk = func(uris []string) {
		for _, uri := range uris {
			key := entryKey(uri)
			if seen[key] {
				continue
			}
			seen[key] = true

			def, err := m.resolve(uri)
			if err != nil {
				layers = append(layers, &brokenLayer{uri: uri, err: err})
				continue
			}
			layers = append(layers, &layer{def: def})

			if def.Get("type").String() == groupLayer {
				walk(stringList(def.Get("layers")))
			}
		}
	}
	walk(m.layerURIs)

	return layers, nil
}

func (m *mapDoc) resolve(uri string) (gjson.Result, error) {
	if def, ok := m.defs[entryKey(uri)]; ok {
		return def, nil
	}
	return m.project.readJSON(uri)
}

// entryKey normalises an archive entry name or CIMPATH reference for lookup
func entryKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) >= len(cimPathPrefix) && strings.EqualFold(ref[:len(cimPathPrefix)], cimPathPrefix) {
		ref = ref[len(cimPathPrefix):]
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	ref = strings.TrimPrefix(path.Clean("/"+ref), "/")
	return strings.ToLower(ref)
}

func stringList(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
