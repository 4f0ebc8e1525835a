package extract

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/juparave/aprxaudit/internal/domain"
	"github.com/juparave/aprxaudit/internal/inspect/inspecttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var proj1 = domain.ProjectFile{Name: "proj1", Path: "/data/proj1.aprx"}

func newExtractor(opts Options) (*Extractor, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(log.New(&buf, "", 0), opts), &buf
}

func collect(t *testing.T, e *Extractor, p *inspecttest.Project) []domain.Record {
	t.Helper()
	var out []domain.Record
	for rec, err := range e.Records(proj1, p) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestLastSegment(t *testing.T) {
	tests := map[string]string{
		"A,B,C":    "C",
		"db,Roads": "Roads",
		"NoComma":  "NoComma",
		"":         "",
		"trail,":   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LastSegment(in), "input %q", in)
	}
}

func TestRecords_FieldRules(t *testing.T) {
	p := &inspecttest.Project{MapList: []*inspecttest.Map{{
		MapName: "Map1",
		Children: []*inspecttest.Layer{
			{
				LayerName: inspecttest.String("Roads"),
				Source:    inspecttest.String("db,Roads"),
				Labels:    inspecttest.Bool(true),
				Symbology: inspecttest.UniqueValues("CLASS", "SURFACE"),
			},
			{
				LayerName: inspecttest.String("Parcels"),
				Labels:    inspecttest.Bool(false),
				Symbology: inspecttest.OtherRenderer("SimpleRenderer"),
			},
			{
				LayerName: inspecttest.String("Basemap"),
			},
		},
	}}}

	e, _ := newExtractor(Options{Variant: domain.VariantExtended})
	recs := collect(t, e, p)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.Record{
		ProjectName:    "proj1",
		ProjectPath:    "/data/proj1.aprx",
		MapName:        "Map1",
		LayerName:      "Roads",
		DataSource:     "Roads",
		HasLabels:      "True",
		SymbologyField: "CLASS;SURFACE",
	}, recs[0])

	assert.Equal(t, "N/A", recs[1].DataSource)
	assert.Equal(t, "False", recs[1].HasLabels)
	assert.Equal(t, "uses other renderer type", recs[1].SymbologyField)

	assert.Equal(t, "N/A", recs[2].DataSource)
	assert.Equal(t, "FALSE", recs[2].HasLabels)
	assert.Equal(t, "symbology not supported", recs[2].SymbologyField)
}

func TestRecords_BaseVariantLeavesSymbologyEmpty(t *testing.T) {
	p := &inspecttest.Project{MapList: []*inspecttest.Map{{
		MapName: "Map1",
		Children: []*inspecttest.Layer{
			{LayerName: inspecttest.String("Roads"), RenderErr: errors.New("not read in base")},
		},
	}}}

	e, _ := newExtractor(Options{Variant: domain.VariantBase})
	recs := collect(t, e, p)

	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].SymbologyField)
}

func TestRecords_MissingNameWarnsAndUsesPlaceholder(t *testing.T) {
	p := &inspecttest.Project{MapList: []*inspecttest.Map{{
		MapName:  "Map1",
		Children: []*inspecttest.Layer{{Source: inspecttest.String("x")}},
	}}}

	t.Run("empty by default", func(t *testing.T) {
		e, logs := newExtractor(Options{})
		recs := collect(t, e, p)
		require.Len(t, recs, 1)
		assert.Empty(t, recs[0].LayerName)
		assert.Contains(t, logs.String(), "no layer name for proj1 / Map1 layer 0")
	})

	t.Run("configured placeholder", func(t *testing.T) {
		e, _ := newExtractor(Options{MissingName: domain.UnnamedLayer})
		recs := collect(t, e, p)
		require.Len(t, recs, 1)
		assert.Equal(t, "<unnamed>", recs[0].LayerName)
	})

	t.Run("trace", func(t *testing.T) {
		var trace bytes.Buffer
		e, logs := newExtractor(Options{MissingName: domain.UnnamedLayer, Trace: log.New(&trace, "", 0)})
		collect(t, e, p)
		assert.Equal(t, "  proj1 / Map1 / <unnamed>\n", trace.String())
		assert.NotContains(t, logs.String(), "proj1 / Map1 / <unnamed>")
	})
}

func TestRecords_CountsRowsPerLayer(t *testing.T) {
	mk := func(n int) []*inspecttest.Layer {
		out := make([]*inspecttest.Layer, n)
		for i := range out {
			out[i] = &inspecttest.Layer{LayerName: inspecttest.String("L")}
		}
		return out
	}
	p := &inspecttest.Project{MapList: []*inspecttest.Map{
		{MapName: "A", Children: mk(3)},
		{MapName: "B", Children: mk(0)},
		{MapName: "C", Children: mk(4)},
	}}

	e, _ := newExtractor(Options{})
	recs := collect(t, e, p)

	assert.Len(t, recs, 7)
	// all layers of a map come before the next map
	var order []string
	for _, r := range recs {
		if len(order) == 0 || order[len(order)-1] != r.MapName {
			order = append(order, r.MapName)
		}
	}
	assert.Equal(t, []string{"A", "C"}, order)
	assert.Equal(t, Stats{Maps: 3, Records: 7}, e.Stats())
}

func TestRecords_SkipsBrokenLayersAndMaps(t *testing.T) {
	p := &inspecttest.Project{MapList: []*inspecttest.Map{
		{MapName: "Broken", Err: errors.New("cannot list")},
		{MapName: "Map1", Children: []*inspecttest.Layer{
			{LayerName: inspecttest.String("ok")},
			{NameErr: errors.New("corrupt")},
			{LayerName: inspecttest.String("bad source"), SourceErr: errors.New("corrupt")},
			{LayerName: inspecttest.String("bad labels"), LabelsErr: errors.New("corrupt")},
			{LayerName: inspecttest.String("bad renderer"), RenderErr: errors.New("corrupt")},
			{LayerName: inspecttest.String("also ok")},
		}},
	}}

	e, logs := newExtractor(Options{Variant: domain.VariantExtended})
	recs := collect(t, e, p)

	require.Len(t, recs, 2)
	assert.Equal(t, "ok", recs[0].LayerName)
	assert.Equal(t, "also ok", recs[1].LayerName)
	assert.Equal(t, Stats{Maps: 1, MapsSkipped: 1, Records: 2, LayersSkipped: 4}, e.Stats())
	assert.Contains(t, logs.String(), `skipping map "Broken"`)
	assert.Contains(t, logs.String(), "reading SHOWLABELS")
}

func TestRecords_MapsErrorIsYielded(t *testing.T) {
	p := &inspecttest.Project{MapsErr: errors.New("index unreadable")}

	e, _ := newExtractor(Options{})
	var errs []error
	for _, err := range e.Records(proj1, p) {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "index unreadable")
}

func TestRecords_StopsWhenConsumerStops(t *testing.T) {
	p := &inspecttest.Project{MapList: []*inspecttest.Map{{
		MapName: "Map1",
		Children: []*inspecttest.Layer{
			{LayerName: inspecttest.String("a")},
			{LayerName: inspecttest.String("b")},
		},
	}}}

	e, _ := newExtractor(Options{})
	for range e.Records(proj1, p) {
		break
	}
	assert.Equal(t, 1, e.Stats().Records)
}

func TestLayerError(t *testing.T) {
	cause := errors.New("corrupt")
	err := error(&LayerError{Project: "p", Map: "m", Index: 2, Err: cause})

	assert.True(t, IsLayerError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "p / m layer 2: reading NAME: corrupt", err.Error())
}
