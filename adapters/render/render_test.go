package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"apareport/domain/core"
	"apareport/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleTable() *stats.ComparisonTable {
	return &stats.ComparisonTable{
		RowLabels: []string{"(Intercept)", "x1", stats.LabelR2, stats.LabelDeltaR2},
		Columns:   []string{"Model 1", "Model 2"},
		Cells: [][]string{
			{"1.00 [0.60, 1.40]", "1.00 [0.60, 1.40]"},
			{"", "0.50 [0.10, 0.90]"},
			{".10", ".25"},
			{"", ".15"},
		},
		NumTerms: 2,
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, got)

	_, err = ParseFormat("latex")
	assert.True(t, core.IsInputShapeError(err))
}

func TestComparisonGrid(t *testing.T) {
	g := ComparisonGrid(sampleTable())
	assert.Equal(t, []string{"Term", "Model 1", "Model 2"}, g.Header)
	require.Len(t, g.Rows, 4)
	assert.Equal(t, []string{"x1", "", "0.50 [0.10, 0.90]"}, g.Rows[1])
	assert.Equal(t, []string{"ΔR²", "", ".15"}, g.Rows[3])
}

func TestStringsGrid(t *testing.T) {
	est := map[string]string{"m2": "ΔR² = .15"}
	stat := map[string]string{"m2": "F(1, 46) = 9.40, p = .004", "m3": "F(1, 46) = 3.29, p = .076"}
	g := StringsGrid("Inline", []string{"m2", "m3"}, []string{"est", "stat"}, est, stat)
	assert.Equal(t, [][]string{
		{"m2", "ΔR² = .15", "F(1, 46) = 9.40, p = .004"},
		{"m3", "", "F(1, 46) = 3.29, p = .076"},
	}, g.Rows)
}

func TestMarkdownAndHTML(t *testing.T) {
	g := ComparisonGrid(sampleTable())

	md := Markdown(g)
	assert.True(t, strings.HasPrefix(md, "### Model comparison\n\n"))
	assert.Contains(t, md, "| Term")
	assert.Contains(t, md, "0.50 [0.10, 0.90]")
	assert.Contains(t, md, "---")

	out := HTML(g)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<th>Model 2</th>")
	assert.Contains(t, out, "<td>0.50 [0.10, 0.90]</td>")
}

func TestTerminal(t *testing.T) {
	out := Terminal(ComparisonGrid(sampleTable()))
	assert.Contains(t, out, "Model comparison")
	assert.Contains(t, out, "Model 1")
	assert.Contains(t, out, "1.00 [0.60, 1.40]")
}

func TestWrite(t *testing.T) {
	g := ComparisonGrid(sampleTable())
	report := map[string]string{"m2": "ΔR² = .15"}

	var csvOut bytes.Buffer
	require.NoError(t, Write(&csvOut, FormatCSV, report, g))
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Term,Model 1,Model 2", lines[0])
	assert.Equal(t, "x1,,\"0.50 [0.10, 0.90]\"", lines[2])

	var jsonOut bytes.Buffer
	require.NoError(t, Write(&jsonOut, FormatJSON, report, g))
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, report, decoded)

	var yamlOut bytes.Buffer
	require.NoError(t, Write(&yamlOut, FormatYAML, report, g))
	decoded = nil
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &decoded))
	assert.Equal(t, report, decoded)

	assert.Error(t, Write(&bytes.Buffer{}, Format("pdf"), report, g))
}
