// Package output renders calculation reports for the command line.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// InputLine is one labelled field of a report.
type InputLine struct {
	Label string `json:"label" yaml:"label"`
	Key   string `json:"key" yaml:"key"`
	Raw   string `json:"raw" yaml:"raw"`
}

// Report is the outcome of one calculator run.
type Report struct {
	Calculator  string      `json:"calculator" yaml:"calculator"`
	Title       string      `json:"title" yaml:"title"`
	Inputs      []InputLine `json:"inputs" yaml:"inputs"`
	ResultLabel string      `json:"resultLabel" yaml:"resultLabel"`
	Result      *float64    `json:"result" yaml:"result"`
	Display     string      `json:"display,omitempty" yaml:"display,omitempty"`
	Insight     string      `json:"insight,omitempty" yaml:"insight,omitempty"`
	Visitors    *int64      `json:"visitors,omitempty" yaml:"visitors,omitempty"`
}

// NewReport builds a report from a unit's definition and state.
func NewReport(def calculator.Definition, state calculator.State) Report {
	r := Report{
		Calculator:  def.ID,
		Title:       def.Title,
		ResultLabel: def.Result.Label,
		Result:      state.Result,
		Display:     state.Display,
	}
	for _, in := range def.Inputs {
		r.Inputs = append(r.Inputs, InputLine{Label: in.Label, Key: in.Key, Raw: state.RawInputs[in.Key]})
	}
	if state.Insight != nil {
		r.Insight = *state.Insight
	}
	return r
}

// WithVisitors returns a copy of r carrying the visitor count.
func (r Report) WithVisitors(count int64) Report {
	r.Visitors = &count
	return r
}

// Write renders reports in the named format.
func Write(w io.Writer, outputFormat string, reports []Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, reports)
	case constants.OutputFormatCSV:
		return CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return JSONFormat(w, reports)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, reports)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, reports []Report) error {
	p := message.NewPrinter(language.English)
	for i, r := range reports {
		if i > 0 {
			if _, err := p.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := p.Fprintf(w, "--- %s ---\n", r.Title); err != nil {
			return err
		}
		for _, in := range r.Inputs {
			raw := in.Raw
			if raw == "" {
				raw = "-"
			}
			if _, err := p.Fprintf(w, "%-20s %s\n", in.Label+":", raw); err != nil {
				return err
			}
		}
		display := r.Display
		if r.Result == nil {
			display = "-"
		}
		if _, err := p.Fprintf(w, "%-20s %s\n", r.ResultLabel+":", display); err != nil {
			return err
		}
		if r.Insight != "" {
			if _, err := p.Fprintf(w, "%-20s %s\n", "Insight:", r.Insight); err != nil {
				return err
			}
		}
		if r.Visitors != nil {
			if _, err := p.Fprintf(w, "%-20s %s\n", "Visitors:", format.Count(*r.Visitors)); err != nil {
				return err
			}
		}
	}
	return nil
}

// CsvFormat outputs one row per report in comma-separated value format.
func CsvFormat(w io.Writer, reports []Report) error {
	cw := csv.NewWriter(w)
	header := []string{"calculator", "first", "second", "result", "display", "insight", "visitors"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range reports {
		row := make([]string, 0, len(header))
		row = append(row, r.Calculator)
		for i := 0; i < calculator.InputCount; i++ {
			raw := ""
			if i < len(r.Inputs) {
				raw = r.Inputs[i].Raw
			}
			row = append(row, raw)
		}
		result := ""
		if r.Result != nil {
			result = strconv.FormatFloat(*r.Result, 'f', -1, 64)
		}
		visitors := ""
		if r.Visitors != nil {
			visitors = strconv.FormatInt(*r.Visitors, 10)
		}
		row = append(row, result, r.Display, r.Insight, visitors)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the reports as an indented JSON array.
func JSONFormat(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// YAMLFormat outputs the reports as a YAML sequence.
func YAMLFormat(w io.Writer, reports []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCatalog lists calculator definitions in the named format.
func WriteCatalog(w io.Writer, outputFormat string, defs []calculator.Definition) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		for _, def := range defs {
			keys := make([]string, 0, len(def.Inputs))
			for _, in := range def.Inputs {
				keys = append(keys, in.Key)
			}
			if _, err := fmt.Fprintf(w, "%-20s %-24s inputs=%v\n", def.ID, def.Title, keys); err != nil {
				return err
			}
		}
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"id", "title", "first", "second", "result"}); err != nil {
			return err
		}
		for _, def := range defs {
			row := []string{def.ID, def.Title}
			for _, in := range def.Inputs {
				row = append(row, in.Key)
			}
			row = append(row, def.Result.Label)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	case constants.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(defs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
