package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// enrollmentPath is the fixed public form path the QR codes open.
const enrollmentPath = "/inscricao"

// qrImageSize is the edge length in pixels of generated QR rasters.
const qrImageSize = 320

// LinkEncoder builds public enrollment URLs and their QR images. Pure and
// deterministic: the same input always yields byte-identical output.
type LinkEncoder struct {
	baseURL string
}

func NewLinkEncoder(baseURL string) *LinkEncoder {
	return &LinkEncoder{baseURL: strings.TrimRight(baseURL, "/")}
}

// EnrollmentURL is the canonical public link for a session's enrollment form.
func (e *LinkEncoder) EnrollmentURL(sessionID string) string {
	return fmt.Sprintf("%s%s?agendamento=%s", e.baseURL, enrollmentPath, sessionID)
}

// QRCodePNG encodes the given URL as a PNG raster.
func (e *LinkEncoder) QRCodePNG(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// QRCodeBase64 returns the PNG pre-encoded for inline embedding in a preview
// surface (data URI image).
func (e *LinkEncoder) QRCodeBase64(url string) (string, error) {
	png, err := e.QRCodePNG(url)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
