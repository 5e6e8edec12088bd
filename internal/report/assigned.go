package report

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"equiptrack/internal/domain"
)

var reUnsafe = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// Filename is the download name for a store's sheet, e.g.
// Assigned_Lyon_Part-Dieu_20250314_101500.pdf. Runs of anything but letters,
// digits, dot, dash and underscore collapse to one underscore.
func Filename(store domain.Store, at time.Time) string {
	name := strings.Trim(reUnsafe.ReplaceAllString(store.Name, "_"), "_")
	return fmt.Sprintf("Assigned_%s_%s.pdf", name, at.Format("20060102_150405"))
}

// Rows keeps the assignments that still have units out at the store.
func Rows(as []domain.Assignment) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(as))
	for _, a := range as {
		if !a.IsArchived() && a.Outstanding() > 0 {
			out = append(out, a)
		}
	}
	return out
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Reference", 35, "L"},
	{"Equipment", 70, "L"},
	{"Assigned on", 30, "C"},
	{"Assigned", 20, "R"},
	{"Returned", 20, "R"},
	{"Remaining", 15, "R"},
}

// AssignedSheet writes an A4 portrait PDF listing the equipment still
// assigned to store.
func AssignedSheet(w io.Writer, store domain.Store, rows []domain.Assignment, at time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Assigned equipment - "+store.Name, true)
	pdf.SetCreator("equiptrack", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s - page %d/{nb}", at.Format("2006-01-02 15:04"), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Assigned equipment"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(store.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(store.Address), "", 1, "L", false, 0, "")
	if store.Manager != "" {
		pdf.CellFormat(0, 6, tr("Manager: "+store.Manager), "", 1, "L", false, 0, "")
	}
	if store.CodeFR != "" || store.Region != "" {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Site %s  Region %s", store.CodeFR, store.Region)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(rows) == 0 {
		pdf.CellFormat(190, 8, "No equipment currently assigned.", "1", 1, "C", false, 0, "")
	}
	total := 0
	for _, a := range rows {
		cells := []string{
			tr(a.EquipmentReference),
			tr(a.EquipmentName),
			a.AssignedAt.Format("2006-01-02"),
			strconv.Itoa(a.Quantity),
			strconv.Itoa(a.ReturnedQuantity),
			strconv.Itoa(a.Outstanding()),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
		total += a.Outstanding()
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(175, 8, "Total remaining", "1", 0, "R", false, 0, "")
	pdf.CellFormat(15, 8, strconv.Itoa(total), "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}
