package certificate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const DateLayout = "January 02, 2006"

type Data struct {
	RecipientName string
	CourseTitle   string
	CompletedAt   time.Time
	Number        string
	Issuer        string
}

// Render writes a landscape A4 certificate of completion to w.
func Render(w io.Writer, d Data) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor(d.Issuer, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	width, height := pdf.GetPageSize()

	pdf.SetDrawColor(59, 130, 246)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, width-20, height-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(14, 14, width-28, height-28, "D")

	centered := func(y float64, size float64, style, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetXY(20, y)
		pdf.CellFormat(width-40, size/2+2, tr(text), "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(30, 64, 175)
	centered(35, 36, "B", "Certificate of Completion")
	pdf.SetTextColor(55, 65, 81)
	centered(62, 16, "", "This is to certify that")
	pdf.SetTextColor(15, 23, 42)
	centered(78, 28, "B", d.RecipientName)
	pdf.SetTextColor(55, 65, 81)
	centered(100, 16, "", "has successfully completed the course")
	pdf.SetTextColor(30, 64, 175)
	centered(114, 22, "B", fmt.Sprintf("%q", d.CourseTitle))
	pdf.SetTextColor(55, 65, 81)
	centered(134, 14, "", "on "+d.CompletedAt.Format(DateLayout))

	lineY := height - 40
	pdf.SetDrawColor(156, 163, 175)
	pdf.Line(40, lineY, 110, lineY)
	pdf.Line(width-110, lineY, width-40, lineY)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(40, lineY+2)
	pdf.CellFormat(70, 6, "Date", "", 0, "C", false, 0, "")
	pdf.SetXY(width-110, lineY+2)
	pdf.CellFormat(70, 6, tr(d.Issuer+" Signature"), "", 0, "C", false, 0, "")

	if d.Number != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(20, height-22)
		pdf.CellFormat(width-40, 5, "Certificate No. "+d.Number, "", 0, "C", false, 0, "")
	}

	return pdf.Output(w)
}

// FileName mirrors the download name users expect: "<name>-<course>-certificate.pdf".
func FileName(recipient, course string) string {
	clean := func(s string) string {
		s = strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
				return -1
			}
			return r
		}, s)
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%s-%s-certificate.pdf", clean(recipient), clean(course))
}
