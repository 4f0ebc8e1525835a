// Package aprxtest builds small .aprx archives for tests.
package aprxtest

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Project describes the maps written to GISProject.json
type Project struct {
	Maps []Map
}

// Map is written as its own archive entry
type Map struct {
	Name   string
	Layers []Layer
}

// Layer describes one CIM layer definition. Zero values leave the
// corresponding property out of the definition.
type Layer struct {
	Name      string
	NoName    bool
	Type      string // defaults to CIMFeatureLayer
	Workspace string
	Dataset   string
	Labels    *bool
	Renderer  string
	Fields    []string
	Children  []Layer // for CIMGroupLayer
	Separate  bool    // store as its own archive entry instead of embedding
	Dangling  bool    // reference a definition that does not exist
}

// Bool returns a pointer for Layer.Labels
func Bool(b bool) *bool { return &b }

// Write creates an .aprx archive at path
func Write(t testing.TB, path string, p Project) {
	t.Helper()

	entries := map[string]any{}
	var items []map[string]any

	for i, m := range p.Maps {
		mapEntry := fmt.Sprintf("map/map%d.json", i)
		items = append(items, map[string]any{
			"name":        m.Name,
			"itemType":    "Map",
			"catalogPath": "CIMPATH=" + mapEntry,
		})

		b := &builder{prefix: fmt.Sprintf("map%d", i), entries: entries}
		uris := b.add(m.Layers)

		entries[mapEntry] = map[string]any{
			"type": "CIMMapDocument",
			"mapDefinition": map[string]any{
				"type":   "CIMMap",
				"name":   m.Name,
				"layers": uris,
			},
			"layerDefinitions": b.embedded,
		}
	}

	entries["GISProject.json"] = map[string]any{
		"type":         "CIMGISProject",
		"projectItems": items,
	}

	raw := make(map[string][]byte, len(entries))
	for name, v := range entries {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		raw[name] = data
	}
	WriteRaw(t, path, raw)
}

// WriteRaw creates a zip archive at path holding the given entries
func WriteRaw(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
}

type builder struct {
	prefix   string
	n        int
	entries  map[string]any
	embedded []map[string]any
}

func (b *builder) add(layers []Layer) []string {
	uris := make([]string, 0, len(layers))
	for _, l := range layers {
		b.n++
		entry := fmt.Sprintf("%s/layer%d.json", b.prefix, b.n)
		uri := "CIMPATH=" + entry
		uris = append(uris, uri)

		if l.Dangling {
			continue
		}

		def := b.definition(l, uri)
		if l.Separate {
			b.entries[entry] = def
		} else {
			b.embedded = append(b.embedded, def)
		}
	}
	return uris
}

func (b *builder) definition(l Layer, uri string) map[string]any {
	typ := l.Type
	if typ == "" {
		typ = "CIMFeatureLayer"
		if len(l.Children) > 0 {
			typ = "CIMGroupLayer"
		}
	}

	def := map[string]any{
		"type": typ,
		"uRI":  uri,
	}
	if !l.NoName {
		def["name"] = l.Name
	}
	if l.Workspace != "" || l.Dataset != "" {
		def["featureTable"] = map[string]any{
			"type": "CIMFeatureTable",
			"dataConnection": map[string]any{
				"type":                      "CIMStandardDataConnection",
				"workspaceConnectionString": l.Workspace,
				"dataset":                   l.Dataset,
			},
		}
	}
	if l.Labels != nil {
		def["labelVisibility"] = *l.Labels
	}
	if l.Renderer != "" {
		def["renderer"] = map[string]any{
			"type":   l.Renderer,
			"fields": l.Fields,
		}
	}
	if len(l.Children) > 0 {
		def["layers"] = b.add(l.Children)
	}
	return def
}
