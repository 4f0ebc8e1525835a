package domain

import "fmt"

// Variant selects the column set written to the output file
type Variant string

const (
	VariantBase     Variant = "base"
	VariantExtended Variant = "extended"
)

// Literal values written when a layer lacks a capability
const (
	NotAvailable          = "N/A"
	LabelsUnsupported     = "FALSE"
	OtherRendererType     = "uses other renderer type"
	SymbologyUnsupported  = "symbology not supported"
	LabelsShown           = "True"
	LabelsHidden          = "False"
	SymbologyFieldDivider = ";"
	UnnamedLayer          = "<unnamed>"
)

var baseColumns = []string{
	"Project Document",
	"APRX Path",
	"Map Name",
	"Layer name",
	"Layer Datasource",
	"has Labels",
}

// ParseVariant validates a variant name
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantBase, VariantExtended:
		return Variant(s), nil
	case "":
		return VariantExtended, nil
	}
	return "", fmt.Errorf("unknown variant %q (want %q or %q)", s, VariantBase, VariantExtended)
}

// Columns returns the header row for the variant
func (v Variant) Columns() []string {
	cols := append([]string(nil), baseColumns...)
	if v == VariantExtended {
		cols = append(cols, "Symbology Field")
	}
	return cols
}

// Record is one output row: a single layer of a single map of a project
type Record struct {
	ProjectName    string
	ProjectPath    string
	MapName        string
	LayerName      string
	DataSource     string
	HasLabels      string
	SymbologyField string // Extended variant only
}

// Row flattens the record into the column order of the variant
func (r Record) Row(v Variant) []string {
	row := []string{
		r.ProjectName,
		r.ProjectPath,
		r.MapName,
		r.LayerName,
		r.DataSource,
		r.HasLabels,
	}
	if v == VariantExtended {
		row = append(row, r.SymbologyField)
	}
	return row
}
