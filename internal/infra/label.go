package infra

// label.go renders a printable item label with go-pdf/fpdf on a 58x40mm
// sticker: item name, barcode in large type, SKU, location and stock.

import (
	"bytes"
	"fmt"
	"time"

	"diplomsklad/internal/model"

	"github.com/go-pdf/fpdf"
)

// RenderItemLabel returns the label PDF bytes. loc may be nil.
func RenderItemLabel(item *model.Item, loc *model.Location, printedAt time.Time) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 40, Ht: 58},
	})
	pdf.SetMargins(3, 3, 3)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Core fonts are cp1252; transliterate anything outside it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 6

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr(truncate(item.Name, 34)), "", 1, "L", false, 0, "")

	pdf.Line(3, pdf.GetY(), pageW-3, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Courier", "B", 16)
	pdf.CellFormat(contentW, 10, item.Barcode, "1", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 7)
	if item.SKU != nil {
		pdf.CellFormat(contentW, 4, tr("SKU: "+*item.SKU), "", 1, "L", false, 0, "")
	}
	where := "-"
	if loc != nil {
		where = fmt.Sprintf("%s (%s)", loc.Name, loc.Code)
	}
	pdf.CellFormat(contentW, 4, tr("Location: "+where), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, fmt.Sprintf("On hand: %d", item.Quantity), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 5)
	pdf.CellFormat(contentW, 3, fmt.Sprintf("#%d  %s", item.ID, printedAt.UTC().Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("label: render: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
