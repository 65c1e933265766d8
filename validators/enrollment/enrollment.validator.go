package enrollmentValidator

import (
	"regexp"
	"strings"
	"time"

	"certificados/middleware"
	"certificados/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper to validate email format
func isValidEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

// EnrollmentRequest is the validated public enrollment submission handed to
// the controller via c.Locals.
type EnrollmentRequest struct {
	Agendamento    string `json:"agendamento"`
	CPF            string `json:"cpf"`
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	DataNascimento string `json:"data_nascimento"`
	Telefone       string `json:"telefone"`
	Endereco       string `json:"endereco"`
	LGPDConsent    bool   `json:"lgpd_consent"`

	BirthDate time.Time `json:"-"`
}

// PublicEnrollment validates the public enrollment form, including the
// mandatory LGPD consent. Nothing reaches the workflow until every field
// check passes.
func PublicEnrollment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EnrollmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Agendamento = strings.TrimSpace(reqData.Agendamento)
		reqData.Nome = strings.TrimSpace(reqData.Nome)
		reqData.Email = strings.TrimSpace(reqData.Email)
		reqData.Telefone = strings.TrimSpace(reqData.Telefone)
		reqData.Endereco = strings.TrimSpace(reqData.Endereco)

		// The session may come in the body or, like the QR link, as a query
		// parameter.
		if reqData.Agendamento == "" {
			reqData.Agendamento = strings.TrimSpace(c.Query("agendamento"))
		}
		if reqData.Agendamento == "" {
			errors["agendamento"] = "Agendamento é obrigatório!"
		} else if _, err := uuid.Parse(reqData.Agendamento); err != nil {
			errors["agendamento"] = "Agendamento inválido!"
		}

		if !services.ValidCPF(services.NormalizeCPF(reqData.CPF)) {
			errors["cpf"] = "CPF inválido!"
		}

		if len(reqData.Nome) < 3 {
			errors["nome"] = "Nome deve ter pelo menos 3 caracteres!"
		}

		if reqData.Email == "" || !isValidEmail(reqData.Email) {
			errors["email"] = "E-mail inválido!"
		}

		if reqData.DataNascimento == "" {
			errors["data_nascimento"] = "Data de nascimento é obrigatória!"
		} else {
			birthDate, err := time.Parse("2006-01-02", reqData.DataNascimento)
			if err != nil {
				errors["data_nascimento"] = "Data de nascimento inválida! Use o formato AAAA-MM-DD."
			} else {
				reqData.BirthDate = birthDate
			}
		}

		if !reqData.LGPDConsent {
			errors["lgpd_consent"] = "Você precisa aceitar o termo LGPD para concluir a inscrição."
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnrollment", reqData)
		return c.Next()
	}
}

// SessionQuery validates the agendamento query parameter on the session
// summary endpoint.
func SessionQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Query("agendamento"))
		if sessionID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Agendamento é obrigatório!", nil)
		}
		if _, err := uuid.Parse(sessionID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Agendamento inválido!", nil)
		}
		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}

// LookupParticipant validates the cpf query parameter on the pre-fill lookup.
func LookupParticipant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cpf := services.NormalizeCPF(c.Query("cpf"))
		if !services.ValidCPF(cpf) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "CPF inválido!", nil)
		}
		c.Locals("lookupCPF", cpf)
		return c.Next()
	}
}
