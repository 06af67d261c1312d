package codec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// ExportPDF renders the collection as a printable landscape table.
func ExportPDF(leads []lead.Lead, now time.Time) ([]byte, error) {
	pdf := gofpdf.New(config.PDFOrientation, config.PDFUnit, config.PDFSize, "")
	pdf.SetTitle(config.PDFTitle, true)
	pdf.SetAuthor(config.PDFAuthor, true)
	pdf.SetMargins(config.PDFMargin, config.PDFMargin, config.PDFMargin)
	pdf.SetAutoPageBreak(true, config.PDFMargin)

	// Core fonts are cp1252; names are translated so accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	generated := now.UTC().Format(config.DateLayout)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-config.PDFMargin)
		pdf.SetFont(config.PDFFont, "", config.PDFBodySize)
		pdf.CellFormat(0, config.PDFRowHeight,
			fmt.Sprintf(config.PDFFooter, len(leads), generated, pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(config.PDFFont, "B", config.PDFTitleSize)
		pdf.CellFormat(0, config.PDFRowHeight*2, tr(config.PDFTitle), "", 1, "L", false, 0, "")
		tableHeader(pdf)
	})

	pdf.AddPage()
	pdf.SetFont(config.PDFFont, "", config.PDFBodySize)

	for i, l := range leads {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		for c, cell := range pdfRow(l) {
			pdf.CellFormat(config.PDFWidths[c], config.PDFRowHeight,
				fit(pdf, tr(cell), config.PDFWidths[c]), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPDFRender, err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(config.PDFFont, "B", config.PDFBodySize)
	pdf.SetFillColor(210, 210, 210)
	for c, h := range config.PDFColumns {
		pdf.CellFormat(config.PDFWidths[c], config.PDFRowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(config.PDFFont, "", config.PDFBodySize)
}

func pdfRow(l lead.Lead) []string {
	created := l.CreatedAt
	if t, ok := l.Created(); ok {
		created = t.UTC().Format("2006-01-02 15:04")
	}
	return []string{
		created,
		string(l.Type),
		l.Name,
		l.Email,
		l.Phone,
		string(l.Service),
		l.StatusOrDefault(),
		string(l.Language),
	}
}

// fit truncates s so it stays inside a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= w-pad {
		return s
	}
	r := []byte(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..") > w-pad {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}
