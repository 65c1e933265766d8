package mailer

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMIMEMessage(t *testing.T) {
	msg := testMessage()
	raw := string(buildMIMEMessage("certificado@example.com", msg))

	assert.Contains(t, raw, "From: certificado@example.com\r\n")
	assert.Contains(t, raw, "To: ana.silva@example.com\r\n")
	assert.Contains(t, raw, "Subject: Seu certificado - Lean Six Sigma\r\n")
	assert.Contains(t, raw, "Content-Type: multipart/mixed;")
	assert.Contains(t, raw, "Content-Type: application/pdf")
	assert.Contains(t, raw, `Content-Disposition: attachment; filename="certificado_abc.pdf"`)
	assert.Contains(t, raw, "Olá, Ana Silva!")
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString(msg.Attachment))

	// Closing boundary terminates the message.
	assert.True(t, strings.HasSuffix(raw, "--"+mimeBoundary+"--\r\n"))
}

func TestBuildMIMEMessageWrapsBase64(t *testing.T) {
	msg := testMessage()
	msg.Attachment = make([]byte, 600)
	raw := string(buildMIMEMessage("certificado@example.com", msg))

	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	// Long payloads get split into 76-column lines.
	assert.NotContains(t, raw, encoded)
	assert.Contains(t, raw, encoded[:76]+"\r\n")
}
