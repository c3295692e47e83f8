package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"apareport/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadFrame_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	content := "x, y ,group\n1,2.5,0\n2,NA,1\n3,4.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	frame, err := NewDataReader(path, nil).ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "group"}, frame.Names())
	assert.Equal(t, 3, frame.NumRows())
	assert.Equal(t, 2.5, frame.Value("y", 0))
	assert.True(t, math.IsNaN(frame.Value("y", 1)))
	assert.True(t, math.IsNaN(frame.Value("group", 2)), "short rows are padded")

	complete, err := frame.CompleteCases("x", "y", "group")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, complete)
}

func TestReadFrame_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A1", &[]interface{}{"x", "y"}))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A2", &[]interface{}{1, 2.5}))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A3", &[]interface{}{2, 3.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	frame, err := NewDataReader(path, nil).ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, frame.Names())
	assert.Equal(t, 2, frame.NumRows())
	assert.Equal(t, 3.5, frame.Value("y", 1))

	_, err = NewDataReader(path, nil).WithSheet("Missing").ReadFrame()
	assert.Error(t, err)
}

func TestReadFrame_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv"), nil).ReadFrame()
	assert.True(t, core.IsMissingReferenceError(err))

	tests := []struct {
		name  string
		rows  [][]string
		check func(error) bool
	}{
		{"header only", [][]string{{"x"}}, core.IsInsufficientDataError},
		{"blank header", [][]string{{"x", " "}, {"1", "2"}}, core.IsInputShapeError},
		{"text cell", [][]string{{"x"}, {"abc"}}, core.IsInputShapeError},
		{"duplicate column", [][]string{{"x", "x"}, {"1", "2"}}, core.IsInputShapeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.rows)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}
