package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

const comparisonSheet = "Comparison"

// ComparisonXLSX writes a workbook with one row per option of schema and one
// column per preset. Rows whose values differ between presets are highlighted.
func ComparisonXLSX(path string, schema *model.Schema, presets []*preset.Preset) error {
	if len(presets) == 0 {
		return fmt.Errorf("no presets to compare")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), comparisonSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Category", "Option", "Key"}
	for _, p := range presets {
		header = append(header, p.Name)
	}
	if err := f.SetSheetRow(comparisonSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	diff, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(comparisonSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, key := range schema.Keys() {
		row := i + 2
		label, category := schema.Describe(key)
		values := []any{category, label, key}
		differs := false
		for j, p := range presets {
			v := p.Config.String(key)
			if j > 0 && v != presets[0].Config.String(key) {
				differs = true
			}
			values = append(values, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(comparisonSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		if differs {
			if err := f.SetCellStyle(comparisonSheet, cell, fmt.Sprintf("%s%d", lastCol, row), diff); err != nil {
				return fmt.Errorf("failed to highlight %s: %w", key, err)
			}
		}
	}

	if err := f.SetColWidth(comparisonSheet, "A", "C", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(comparisonSheet, "D", lastCol, 28); err != nil {
		return err
	}

	return f.SaveAs(path)
}
