package adminRoutes

import (
	adminController "certificados/controllers/admin"
	adminValidator "certificados/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the administrative re-issue and QR actions.
func SetupAdminRoutes(app *fiber.App, ctl *adminController.Controller) {
	admin := app.Group("/admin/agendamentos")

	admin.Get("/:id/qrcode", adminValidator.SessionParam(), ctl.DownloadSessionQRCode)
	admin.Get("/:id/inscricao-url", adminValidator.SessionParam(), ctl.GetEnrollmentLink)
	admin.Post("/:id/clientes/:clienteId/certificado", adminValidator.ReissueParams(), ctl.ReissueCertificate)
}
