package aprx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/juparave/aprxaudit/internal/inspect"
	"github.com/tidwall/gjson"
)

// layer wraps a CIM layer definition
type layer struct {
	def gjson.Result
}

func (l *layer) Supports(c inspect.Capability) bool {
	switch c {
	case inspect.CapName:
		return l.def.Get("name").Type == gjson.String
	case inspect.CapDataSource:
		return l.connection().IsObject()
	case inspect.CapShowLabels:
		return l.def.Get("labelVisibility").Exists()
	case inspect.CapSymbology:
		return l.def.Get("renderer").IsObject()
	}
	return false
}

func (l *layer) Name() (string, error) {
	name := l.def.Get("name")
	if name.Type != gjson.String {
		return "", errors.New("layer has no name")
	}
	return name.String(), nil
}

// DataSource returns "<workspace connection>,<dataset>"; callers keep the
// last comma-separated segment.
func (l *layer) DataSource() (string, error) {
	conn := l.connection()
	if !conn.IsObject() {
		return "", errors.New("layer has no data connection")
	}

	var parts []string
	for _, key := range []string{"workspaceConnectionString", "dataset"} {
		if v := conn.Get(key).String(); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("data connection %s has no workspace or dataset", conn.Get("type").String())
	}
	return strings.Join(parts, ","), nil
}

func (l *layer) ShowLabels() (bool, error) {
	v := l.def.Get("labelVisibility")
	switch v.Type {
	case gjson.True, gjson.False:
		return v.Bool(), nil
	}
	return false, fmt.Errorf("labelVisibility is not a boolean: %s", v.Raw)
}

func (l *layer) Renderer() (inspect.Renderer, error) {
	r := l.def.Get("renderer")
	if !r.IsObject() {
		return inspect.Renderer{}, errors.New("layer has no renderer")
	}

	out := inspect.Renderer{
		Type: strings.TrimPrefix(r.Get("type").String(), "CIM"),
	}
	for _, f := range r.Get("fields").Array() {
		out.Fields = append(out.Fields, f.String())
	}
	return out, nil
}

// connection finds the layer's data connection. Feature layers keep it on
// the feature table, raster and other layers directly on the definition.
func (l *layer) connection() gjson.Result {
	if c := l.def.Get("featureTable.dataConnection"); c.Exists() {
		return c
	}
	return l.def.Get("dataConnection")
}

// brokenLayer stands in for a layer reference that could not be resolved.
// It claims a name so that extraction surfaces the error.
type brokenLayer struct {
	uri string
	err error
}

func (b *brokenLayer) Supports(c inspect.Capability) bool { return c == inspect.CapName }

func (b *brokenLayer) Name() (string, error) {
	return "", fmt.Errorf("layer %s: %w", b.uri, b.err)
}

func (b *brokenLayer) DataSource() (string, error) { return "", b.err }
func (b *brokenLayer) ShowLabels() (bool, error)   { return false, b.err }
func (b *brokenLayer) Renderer() (inspect.Renderer, error) {
	return inspect.Renderer{}, b.err
}
