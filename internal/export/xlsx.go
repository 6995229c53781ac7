package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/usestring/labelscan/pkg/types"
)

// Sheet names used by SerializeXLSX.
const (
	AllergensSheet = "Allergens"
	NutritionSheet = "Nutrition"
	PreviewSheet   = "Preview"
)

// SerializeXLSX builds a workbook with one sheet per table and one for the
// preview text. Null values are left as empty cells.
func SerializeXLSX(ok *types.Ok) (Artifact, error) {
	if ok == nil {
		return Artifact{}, ErrNoResult
	}

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it rather than leave it empty
	if err := f.SetSheetName("Sheet1", AllergensSheet); err != nil {
		return Artifact{}, err
	}
	if err := writeMappingSheet(f, AllergensSheet, "Allergen", "Presence", ok.Allergens); err != nil {
		return Artifact{}, err
	}

	if _, err := f.NewSheet(NutritionSheet); err != nil {
		return Artifact{}, err
	}
	if err := writeMappingSheet(f, NutritionSheet, "Nutrient", "Per 100 g", ok.Nutrition); err != nil {
		return Artifact{}, err
	}

	if _, err := f.NewSheet(PreviewSheet); err != nil {
		return Artifact{}, err
	}
	if err := f.SetCellValue(PreviewSheet, "A1", ok.Preview); err != nil {
		return Artifact{}, err
	}
	_ = f.SetColWidth(PreviewSheet, "A", "A", 100)

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("xlsx write: %w", err)
	}
	return Artifact{
		Data:     buf.Bytes(),
		Filename: XLSXFilename,
		MIMEType: XLSXMIMEType,
	}, nil
}

func writeMappingSheet(f *excelize.File, sheet, nameHeader, valueHeader string, m types.Mapping) error {
	if err := f.SetSheetRow(sheet, "A1", &[]any{nameHeader, valueHeader}); err != nil {
		return err
	}

	for i, field := range m {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{field.Name, nil}
		if field.Value != nil {
			row[1] = *field.Value
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	return nil
}
