// Package render prints reports for people and for other programs: terminal
// and Markdown tables through lipgloss, HTML through gomarkdown, plus CSV,
// JSON and YAML.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"apareport/domain/core"
	"apareport/domain/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// Format selects an output representation
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format
var Formats = []Format{FormatTable, FormatMarkdown, FormatHTML, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat maps a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatMarkdown, FormatHTML, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", core.NewInputShapeError("output format", fmt.Sprintf("unknown format %q", s))
	}
}

// Grid is a header plus string rows, the common shape of everything printed
type Grid struct {
	Title  string
	Header []string
	Rows   [][]string
}

// ComparisonGrid lays out a comparison table with its row labels as the
// first column
func ComparisonGrid(t *stats.ComparisonTable) Grid {
	g := Grid{
		Title:  "Model comparison",
		Header: append([]string{"Term"}, t.Columns...),
		Rows:   make([][]string, len(t.Cells)),
	}
	for i, cells := range t.Cells {
		g.Rows[i] = append([]string{t.RowLabels[i]}, cells...)
	}
	return g
}

// StringsGrid lays out keyed strings, one row per key and one column per map.
// Missing entries print as empty cells.
func StringsGrid(title string, keys []string, columns []string, values ...map[string]string) Grid {
	g := Grid{
		Title:  title,
		Header: append([]string{"Term"}, columns...),
		Rows:   make([][]string, len(keys)),
	}
	for i, key := range keys {
		row := make([]string, 0, len(values)+1)
		row = append(row, key)
		for _, m := range values {
			row = append(row, m[key])
		}
		g.Rows[i] = row
	}
	return g
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Terminal renders a bordered table for interactive use
func Terminal(g Grid) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(g.Header...).
		Rows(g.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if g.Title == "" {
		return t.String()
	}
	return titleStyle.Render(g.Title) + "\n" + t.String()
}

// Markdown renders a GitHub-flavored Markdown table
func Markdown(g Grid) string {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(g.Header...).
		Rows(g.Rows...).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle })
	if g.Title == "" {
		return t.String() + "\n"
	}
	return "### " + g.Title + "\n\n" + t.String() + "\n"
}

// HTML renders the Markdown form of g as an HTML fragment
func HTML(g Grid) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(g)), p, renderer))
}

// WriteCSV writes the header and rows; the title is omitted
func WriteCSV(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Write prints report in format. Tabular formats print grids one after the
// other; JSON and YAML encode report itself.
func Write(w io.Writer, format Format, report interface{}, grids ...Grid) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	var buf bytes.Buffer
	for i, g := range grids {
		if i > 0 {
			buf.WriteString("\n")
		}
		switch format {
		case FormatTable:
			buf.WriteString(Terminal(g) + "\n")
		case FormatMarkdown:
			buf.WriteString(Markdown(g))
		case FormatHTML:
			buf.WriteString(HTML(g))
		case FormatCSV:
			if err := WriteCSV(&buf, g); err != nil {
				return err
			}
		default:
			return core.NewInputShapeError("output format", fmt.Sprintf("unknown format %q", format))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
