package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter builds a single-sheet .xlsx workbook with a styled,
// frozen header row
type ExcelWriter struct {
	file      *excelize.File
	sheetName string
	nextRow   int
	colWidths map[int]float64
}

func NewExcelWriter(sheetName string) *ExcelWriter {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", sheetName)

	return &ExcelWriter{
		file:      file,
		sheetName: sheetName,
		nextRow:   1,
		colWidths: make(map[int]float64),
	}
}

func (e *ExcelWriter) WriteHeader(columns []string) error {
	styleID, err := e.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.file.SetCellValue(e.sheetName, cell, col)
		e.file.SetCellStyle(e.sheetName, cell, cell, styleID)
		e.trackWidth(i, col)
	}

	e.file.SetPanes(e.sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	e.nextRow = 2
	return nil
}

func (e *ExcelWriter) WriteRow(row []interface{}) error {
	for i, val := range row {
		cell, _ := excelize.CoordinatesToCellName(i+1, e.nextRow)
		if err := e.setCell(cell, val); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
		e.trackWidth(i, fmt.Sprintf("%v", val))
	}
	e.nextRow++
	return nil
}

func (e *ExcelWriter) WriteTo(w io.Writer) error {
	for colIdx, width := range e.colWidths {
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		colName, _ := excelize.ColumnNumberToName(colIdx + 1)
		e.file.SetColWidth(e.sheetName, colName, colName, width)
	}
	if err := e.file.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return e.file.Close()
}

func (e *ExcelWriter) setCell(cell string, val interface{}) error {
	switch v := val.(type) {
	case nil:
		return e.file.SetCellValue(e.sheetName, cell, "")
	case *time.Time:
		if v == nil {
			return e.file.SetCellValue(e.sheetName, cell, "")
		}
		if err := e.file.SetCellValue(e.sheetName, cell, *v); err != nil {
			return err
		}
		styleID, _ := e.file.NewStyle(&excelize.Style{NumFmt: 14})
		return e.file.SetCellStyle(e.sheetName, cell, cell, styleID)
	default:
		return e.file.SetCellValue(e.sheetName, cell, v)
	}
}

func (e *ExcelWriter) trackWidth(colIdx int, val string) {
	width := float64(len(val)) * 1.2
	if width > e.colWidths[colIdx] {
		e.colWidths[colIdx] = width
	}
}
