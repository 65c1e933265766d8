package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ErrTemplateNotFound means the background template asset is missing. This is
// a deployment problem, not a per-request one: the renderer refuses to start
// rather than produce blank certificates.
var ErrTemplateNotFound = errors.New("certificate template not found")

// Text bands as ratios of the page height, derived from the original layout
// on landscape A4 (842x595pt). Ratios keep the layout resolution-independent.
const (
	nameBand   = 0.445
	courseBand = 0.513
	hoursBand  = 0.554
	dateBand   = 0.731

	nameFontSize   = 34
	courseFontSize = 18
	hoursFontSize  = 16
	dateFontSize   = 14

	fontFamily = "Helvetica"
)

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// CertificateData is the denormalized content painted onto one certificate.
type CertificateData struct {
	ParticipantName string
	CourseName      string
	Hours           uint // 0 when the course defines no standard hours
	IssuedAt        time.Time
}

// DocumentRenderer paints certificate PDFs over a fixed background template.
// It is stateless after construction and safe for concurrent use.
type DocumentRenderer struct {
	template  []byte
	imageType string
}

// NewDocumentRenderer loads the background template once, up front, so a
// missing asset fails the process at startup instead of the first request.
func NewDocumentRenderer(path string) (*DocumentRenderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	imageType := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if imageType == "" {
		imageType = "png"
	}
	return &DocumentRenderer{template: data, imageType: imageType}, nil
}

type overlayLine struct {
	text  string
	size  float64
	band  float64
	style string
}

// overlayLines builds the four text bands, top to bottom.
func overlayLines(data CertificateData) []overlayLine {
	return []overlayLine{
		{text: data.ParticipantName, size: nameFontSize, band: nameBand, style: "B"},
		{text: "Curso: " + data.CourseName, size: courseFontSize, band: courseBand},
		{text: fmt.Sprintf("Carga horária: %d horas", data.Hours), size: hoursFontSize, band: hoursBand},
		{text: "Emitido em " + formatLongDatePT(data.IssuedAt), size: dateFontSize, band: dateBand},
	}
}

// Render produces the single-page landscape certificate PDF.
func (r *DocumentRenderer) Render(data CertificateData) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	opts := gofpdf.ImageOptions{ImageType: r.imageType}
	pdf.RegisterImageOptionsReader("template", opts, bytes.NewReader(r.template))
	pdf.ImageOptions("template", 0, 0, pageW, pageH, false, opts, 0, "")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range overlayLines(data) {
		pdf.SetFont(fontFamily, line.style, line.size)
		pdf.SetXY(0, pageH*line.band)
		pdf.CellFormat(pageW, line.size, tr(line.text), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// formatLongDatePT renders the issuance date in the fixed pt-BR long form,
// e.g. "12 de janeiro de 2026".
func formatLongDatePT(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}
