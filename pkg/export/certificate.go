package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries the fields printed on a clearance certificate.
type CertificateData struct {
	StudentName  string
	RegNo        string
	Departments  []string
	AcademicYear string
	IssuedAt     time.Time
}

// CertificateRenderer produces the graduation clearance certificate PDF.
type CertificateRenderer struct {
	university string
}

// NewCertificateRenderer builds a renderer with the issuing institution name.
func NewCertificateRenderer(university string) *CertificateRenderer {
	if university == "" {
		university = "Dedan Kimathi University of Technology"
	}
	return &CertificateRenderer{university: university}
}

// Render creates the certificate document.
func (r *CertificateRenderer) Render(data CertificateData) ([]byte, error) {
	if data.StudentName == "" || data.RegNo == "" {
		return nil, fmt.Errorf("certificate requires student name and registration number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, r.university, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Office of the Registrar (Academic Affairs)", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "CERTIFICATE OF CLEARANCE", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 7, fmt.Sprintf(
		"This is to certify that %s (Registration No. %s) has been cleared by all required departments and has no outstanding obligations to the University.",
		data.StudentName, data.RegNo), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, "Clearing departments:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, dept := range data.Departments {
		pdf.CellFormat(0, 6, "  - "+dept, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	if data.AcademicYear != "" {
		pdf.CellFormat(0, 7, "Academic year: "+data.AcademicYear, "", 1, "L", false, 0, "")
	}
	issued := data.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	pdf.CellFormat(0, 7, "Issued on: "+issued.Format("2 January 2006"), "", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
