// Package render turns extraction results and workflow states into views.
// Everything here is a pure function of its input; WriteText is the only
// function that produces output, and only to the writer it is given.
package render

import (
	"fmt"

	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/types"
)

// Placeholder is shown for empty or null values.
const Placeholder = "—"

// Section titles.
const (
	AllergensTitle = "Allergens"
	NutritionTitle = "Nutritional Values (per 100g)"
	PreviewTitle   = "Text Preview"
	ErrorTitle     = "Error parsing output"
)

// Row is one name/value line of a table.
type Row struct {
	Name  string
	Value string
}

// Table is a titled list of rows.
type Table struct {
	Title string
	Rows  []Row
}

// ErrorPane shows the service's unparsed output.
type ErrorPane struct {
	Title  string
	Raw    string
	Reason string
}

// Controls says which actions are available.
type Controls struct {
	SubmitEnabled   bool
	DownloadVisible bool
	Busy            bool
}

// View is everything shown for one state.
type View struct {
	Status      string
	Tables      []Table
	ShowPreview bool
	Preview     string
	Error       *ErrorPane
	Notice      string // blocking notice, set for transport errors only
	Controls    Controls
}

// Rows returns one row per key of m, in order. Empty and null values are
// replaced by Placeholder; other values are kept verbatim.
func Rows(m types.Mapping) []Row {
	rows := make([]Row, 0, len(m))
	for _, f := range m {
		value := Placeholder
		if f.Value != nil && *f.Value != "" {
			value = *f.Value
		}
		rows = append(rows, Row{Name: f.Name, Value: value})
	}
	return rows
}

// RenderResult renders a result on its own.
func RenderResult(r types.Result) View {
	switch res := r.(type) {
	case *types.Ok:
		if res == nil {
			return View{}
		}
		return View{
			Tables: []Table{
				{Title: AllergensTitle, Rows: Rows(res.Allergens)},
				{Title: NutritionTitle, Rows: Rows(res.Nutrition)},
			},
			ShowPreview: true,
			Preview:     res.Preview,
		}
	case *types.ServiceError:
		if res == nil {
			return View{}
		}
		return View{
			Error: &ErrorPane{Title: ErrorTitle, Raw: res.Raw, Reason: res.Reason},
		}
	default:
		return View{}
	}
}

// ControlsFor applies the visibility rules: submit is disabled and the busy
// indicator shown only while uploading; download is offered only after
// success.
func ControlsFor(s workflow.State) Controls {
	busy := workflow.Busy(s)
	_, succeeded := s.(workflow.Succeeded)
	return Controls{
		SubmitEnabled:   !busy,
		DownloadVisible: succeeded,
		Busy:            busy,
	}
}

// RenderState renders the whole screen for s.
func RenderState(s workflow.State) View {
	var v View

	switch st := s.(type) {
	case workflow.FileSelected:
		v.Status = fmt.Sprintf("Ready to extract %s.", st.File.Name)
	case workflow.Uploading:
		v.Status = "⏳ Processing your file..."
	case workflow.Succeeded:
		v = RenderResult(st.Result)
		v.Status = fmt.Sprintf("Extracted %s.", st.File.Name)
	case workflow.Failed:
		v = RenderResult(st.Result)
		v.Status = fmt.Sprintf("The service could not structure %s.", st.File.Name)
	case workflow.TransportError:
		if st.Prior != nil {
			v = RenderState(st.Prior)
		}
		v.Status = fmt.Sprintf("Upload of %s failed.", st.File.Name)
		v.Notice = "Error uploading file: " + st.Message
	default:
		v.Status = "Choose a PDF file to begin."
	}

	v.Controls = ControlsFor(s)
	return v
}
