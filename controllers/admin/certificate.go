package adminController

import (
	"errors"
	"fmt"

	"certificados/middleware"
	"certificados/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller serves the administrative re-issue and QR actions. Staff
// authentication happens upstream of this service.
type Controller struct {
	db       *gorm.DB
	workflow *services.IssuanceWorkflow
	links    *services.LinkEncoder
}

func New(db *gorm.DB, workflow *services.IssuanceWorkflow, links *services.LinkEncoder) *Controller {
	return &Controller{db: db, workflow: workflow, links: links}
}

// ReissueCertificate renders the certificate for (session, participant),
// re-attempts delivery, and streams the PDF back for download. The delivery
// outcome travels in response headers so the document body stays a plain PDF.
func (ctl *Controller) ReissueCertificate(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(string)
	participantID := c.Locals("participantID").(uint)

	pdf, certificate, outcome, err := ctl.workflow.Reissue(c.Context(), sessionID, participantID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		case errors.Is(err, services.ErrNotEnrolled):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Participant not enrolled in this session!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
		}
	}

	c.Set("X-Delivery-Status", string(outcome.Status))
	if outcome.Error != "" {
		c.Set("X-Delivery-Error", outcome.Error)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "certificado_"+certificate.Code+".pdf"))
	return c.Send(pdf)
}

// DownloadSessionQRCode streams the enrollment QR for a session as a PNG
// attachment.
func (ctl *Controller) DownloadSessionQRCode(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(string)

	session, err := ctl.workflow.Session(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load session!", nil)
	}

	url := ctl.links.EnrollmentURL(session.ID)
	png, err := ctl.links.QRCodePNG(url)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate QR code!", nil)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "qrcode_"+session.ID+".png"))
	return c.Send(png)
}

// GetEnrollmentLink returns the public enrollment URL plus the QR image
// pre-encoded for inline preview.
func (ctl *Controller) GetEnrollmentLink(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(string)

	session, err := ctl.workflow.Session(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load session!", nil)
	}

	url := ctl.links.EnrollmentURL(session.ID)
	qrBase64, err := ctl.links.QRCodeBase64(url)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate QR code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment link generated!", fiber.Map{
		"url":           url,
		"qrcode_base64": qrBase64,
	})
}
