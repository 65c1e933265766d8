package enrollmentRoutes

import (
	enrollmentController "certificados/controllers/enrollment"
	enrollmentValidator "certificados/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes wires the public enrollment surface.
func SetupEnrollmentRoutes(app *fiber.App, ctl *enrollmentController.Controller) {
	public := app.Group("/inscricao")
	public.Get("/", enrollmentValidator.SessionQuery(), ctl.GetSession)
	public.Post("/", enrollmentValidator.PublicEnrollment(), ctl.Enroll)

	app.Get("/clientes/lookup", enrollmentValidator.LookupParticipant(), ctl.LookupParticipant)
}
