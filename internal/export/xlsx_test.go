package export

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

func printPreset(name string, layerHeight float64) *preset.Preset {
	cfg := model.SchemaFor(model.TypePrint).Defaults()
	cfg.Set("layer_height", model.Float(layerHeight))
	return &preset.Preset{Name: name, Config: cfg}
}

func TestComparisonXLSX(t *testing.T) {
	schema := model.SchemaFor(model.TypePrint)
	path := filepath.Join(t.TempDir(), "compare.xlsx")

	presets := []*preset.Preset{printPreset("0.20mm QUALITY", 0.2), printPreset("0.15mm DETAIL", 0.15)}
	require.NoError(t, ComparisonXLSX(path, schema, presets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{comparisonSheet}, f.GetSheetList())
	rows, err := f.GetRows(comparisonSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(schema.Keys())+1)
	assert.Equal(t, []string{"Category", "Option", "Key", "0.20mm QUALITY", "0.15mm DETAIL"}, rows[0])

	byKey := make(map[string][]string)
	for _, r := range rows[1:] {
		byKey[r[2]] = r
	}
	assert.Equal(t, []string{"Layers and perimeters", "Layer height", "layer_height", "0.2", "0.15"}, byKey["layer_height"])
	assert.Equal(t, "3", byKey["perimeters"][3])
	assert.Equal(t, "3", byKey["perimeters"][4])

	layerRow := 0
	for i, key := range schema.Keys() {
		if key == "layer_height" {
			layerRow = i + 2
		}
	}
	diffStyle, err := f.GetCellStyle(comparisonSheet, "D"+strconv.Itoa(layerRow))
	require.NoError(t, err)
	sameStyle, err := f.GetCellStyle(comparisonSheet, "D"+strconv.Itoa(layerRow+1))
	require.NoError(t, err)
	assert.NotEqual(t, sameStyle, diffStyle, "differing rows are highlighted")
}

func TestComparisonXLSXNoPresets(t *testing.T) {
	err := ComparisonXLSX(filepath.Join(t.TempDir(), "x.xlsx"), model.SchemaFor(model.TypePrint), nil)
	assert.Error(t, err)
}
