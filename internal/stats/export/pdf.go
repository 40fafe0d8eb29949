package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFWriter renders tabular rows as a landscape A4 summary document
type PDFWriter struct {
	pdf       *gofpdf.Fpdf
	title     string
	colWidths []float64
}

func NewPDFWriter(title string) *PDFWriter {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)

	return &PDFWriter{pdf: pdf, title: title}
}

func (p *PDFWriter) WriteHeader(columns []string) error {
	p.pdf.AddPage()

	p.pdf.SetFont("Arial", "B", 16)
	p.pdf.CellFormat(0, 10, p.title, "", 1, "C", false, 0, "")

	p.pdf.SetFont("Arial", "", 9)
	p.pdf.SetTextColor(128, 128, 128)
	p.pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02")),
		"", 1, "R", false, 0, "")
	p.pdf.Ln(4)

	pageWidth, _ := p.pdf.GetPageSize()
	available := pageWidth - 30
	p.colWidths = make([]float64, len(columns))
	for i := range columns {
		p.colWidths[i] = available / float64(len(columns))
	}

	p.pdf.SetFont("Arial", "B", 10)
	p.pdf.SetFillColor(68, 114, 196)
	p.pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		p.pdf.CellFormat(p.colWidths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)

	p.pdf.SetFont("Arial", "", 9)
	p.pdf.SetTextColor(0, 0, 0)
	return nil
}

func (p *PDFWriter) WriteRow(row []interface{}) error {
	for i, val := range row {
		p.pdf.CellFormat(p.colWidths[i], 7, p.format(val), "1", 0, "L", false, 0, "")
	}
	p.pdf.Ln(-1)
	return nil
}

func (p *PDFWriter) WriteTo(w io.Writer) error {
	return p.pdf.Output(w)
}

func (p *PDFWriter) format(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}
