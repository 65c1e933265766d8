package enrollmentController

import (
	"errors"

	"certificados/middleware"
	"certificados/models"
	"certificados/services"
	enrollmentValidator "certificados/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	msgEnrolledDelivered = "Inscrição realizada! Enviamos o certificado por e-mail."
	msgEnrolledNotSent   = "Inscrição realizada, mas não foi possível enviar o e-mail agora."
)

// Controller serves the public enrollment surface.
type Controller struct {
	db       *gorm.DB
	workflow *services.IssuanceWorkflow
}

func New(db *gorm.DB, workflow *services.IssuanceWorkflow) *Controller {
	return &Controller{db: db, workflow: workflow}
}

// GetSession returns the course summary for the enrollment form.
func (ctl *Controller) GetSession(c *fiber.Ctx) error {
	sessionID := c.Locals("sessionID").(string)

	session, err := ctl.workflow.Session(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Agendamento não encontrado!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", fiber.Map{
		"agendamento": session.ID,
		"curso": fiber.Map{
			"nome":          session.Course.Name,
			"descricao":     session.Course.Description,
			"carga_horaria": session.Course.StandardHours,
		},
		"data": session.Date.Format("2006-01-02"),
	})
}

// Enroll handles a validated public enrollment submission end to end.
func (ctl *Controller) Enroll(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEnrollment").(*enrollmentValidator.EnrollmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := ctl.workflow.Enroll(c.Context(), services.EnrollRequest{
		SessionID: reqData.Agendamento,
		Participant: services.ParticipantInput{
			CPF:       reqData.CPF,
			Name:      reqData.Nome,
			Email:     reqData.Email,
			BirthDate: reqData.BirthDate,
			Phone:     reqData.Telefone,
			Address:   reqData.Endereco,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Agendamento inválido.", nil)
		case errors.Is(err, services.ErrInvalidCPF):
			return middleware.ValidationErrorResponse(c, map[string]string{"cpf": "CPF inválido!"})
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process enrollment!", nil)
		}
	}

	message := msgEnrolledDelivered
	if result.Delivery.Status == services.DeliveryFailed {
		message = msgEnrolledNotSent
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"cliente": fiber.Map{
			"nome":  result.Participant.Name,
			"email": result.Participant.Email,
		},
		"agendamento": fiber.Map{
			"id":    result.Session.ID,
			"curso": result.Session.Course.Name,
			"data":  result.Session.Date.Format("2006-01-02"),
		},
		"certificado": fiber.Map{
			"codigo":       result.Certificate.Code,
			"data_emissao": result.Certificate.IssuedAt.Format("2006-01-02"),
		},
		"entrega": result.Delivery,
	})
}

// LookupParticipant pre-fills the public form for a returning participant.
// The stored CPF itself is never echoed back beyond what the caller sent.
func (ctl *Controller) LookupParticipant(c *fiber.Ctx) error {
	cpf := c.Locals("lookupCPF").(string)

	var participant models.Participant
	if err := ctl.db.Where("cpf = ?", cpf).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cliente não encontrado.", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to look up participant!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cliente encontrado.", fiber.Map{
		"nome":            participant.Name,
		"email":           participant.Email,
		"telefone":        participant.Phone,
		"endereco":        participant.Address,
		"data_nascimento": participant.BirthDate.Format("2006-01-02"),
	})
}
