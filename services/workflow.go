package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"certificados/mailer"
	"certificados/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrSessionNotFound means the submitted session identifier matches nothing.
// No writes happen when it is returned.
var ErrSessionNotFound = errors.New("course session not found")

// ErrNotEnrolled is returned by the admin re-issue path when the participant
// never enrolled in the session.
var ErrNotEnrolled = errors.New("participant not enrolled in session")

// DeliveryStatus is the terminal delivery state of one issuance request.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

// DeliveryOutcome reports how the email leg ended. A failed delivery is data,
// not an error: the certificate it describes is already persisted.
type DeliveryOutcome struct {
	Status DeliveryStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// EnrollRequest is a validated public enrollment submission.
type EnrollRequest struct {
	SessionID   string
	Participant ParticipantInput
}

// EnrollResult is the summary returned to the caller after a successful
// issuance, whatever the delivery outcome was.
type EnrollResult struct {
	Participant *models.Participant   `json:"participant"`
	Session     *models.CourseSession `json:"session"`
	Enrollment  *models.Enrollment    `json:"enrollment"`
	Certificate *models.Certificate   `json:"certificate"`
	Delivery    DeliveryOutcome       `json:"delivery"`
}

// IssuanceWorkflow drives one enrollment submission end to end: resolve
// identity, record enrollment, issue certificate, render the PDF, deliver it.
type IssuanceWorkflow struct {
	db        *gorm.DB
	identity  *IdentityResolver
	ledger    *IssuanceLedger
	renderer  *DocumentRenderer
	mailer    mailer.Mailer
	transport string
}

func NewIssuanceWorkflow(db *gorm.DB, renderer *DocumentRenderer, m mailer.Mailer, transport string) *IssuanceWorkflow {
	return &IssuanceWorkflow{
		db:        db,
		identity:  NewIdentityResolver(db),
		ledger:    NewIssuanceLedger(db),
		renderer:  renderer,
		mailer:    m,
		transport: transport,
	}
}

// Session loads a session with its course, or ErrSessionNotFound.
func (w *IssuanceWorkflow) Session(sessionID string) (*models.CourseSession, error) {
	var session models.CourseSession
	err := w.db.Preload("Course").Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session, nil
}

// Enroll runs the issuance pipeline for one submission. A bad session or a
// rendering failure aborts the request (already-persisted rows stay); a
// delivery failure only shows up in the returned outcome.
func (w *IssuanceWorkflow) Enroll(ctx context.Context, req EnrollRequest) (*EnrollResult, error) {
	session, err := w.Session(req.SessionID)
	if err != nil {
		return nil, err
	}

	participant, _, err := w.identity.Resolve(req.Participant)
	if err != nil {
		return nil, err
	}

	enrollment, err := w.ledger.EnsureEnrollment(session.ID, participant.ID)
	if err != nil {
		return nil, err
	}

	certificate, err := w.ledger.EnsureCertificate(participant.ID, session.CourseID, session.ID)
	if err != nil {
		return nil, err
	}

	pdf, err := w.renderCertificate(participant, &session.Course, certificate)
	if err != nil {
		// The certificate row persists; the admin re-issue path can retry.
		return nil, err
	}

	outcome := w.deliver(ctx, certificate, participant, &session.Course, pdf)

	return &EnrollResult{
		Participant: participant,
		Session:     session,
		Enrollment:  enrollment,
		Certificate: certificate,
		Delivery:    outcome,
	}, nil
}

// Reissue re-enters the pipeline at the rendering stage for an existing
// enrollment and re-attempts delivery. The certificate is fetched or created
// idempotently; the rendered PDF is returned for download either way.
func (w *IssuanceWorkflow) Reissue(ctx context.Context, sessionID string, participantID uint) ([]byte, *models.Certificate, DeliveryOutcome, error) {
	session, err := w.Session(sessionID)
	if err != nil {
		return nil, nil, DeliveryOutcome{}, err
	}

	var participant models.Participant
	if err := w.db.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, DeliveryOutcome{}, ErrNotEnrolled
		}
		return nil, nil, DeliveryOutcome{}, fmt.Errorf("load participant: %w", err)
	}

	var enrollment models.Enrollment
	if err := w.db.Where("session_id = ? AND participant_id = ?", session.ID, participant.ID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, DeliveryOutcome{}, ErrNotEnrolled
		}
		return nil, nil, DeliveryOutcome{}, fmt.Errorf("load enrollment: %w", err)
	}

	certificate, err := w.ledger.EnsureCertificate(participant.ID, session.CourseID, session.ID)
	if err != nil {
		return nil, nil, DeliveryOutcome{}, err
	}

	pdf, err := w.renderCertificate(&participant, &session.Course, certificate)
	if err != nil {
		return nil, nil, DeliveryOutcome{}, err
	}

	outcome := w.deliver(ctx, certificate, &participant, &session.Course, pdf)
	return pdf, certificate, outcome, nil
}

// Redeliver re-renders and re-sends an already-issued certificate. Used by
// the redelivery sweep; never touches the certificate row itself.
func (w *IssuanceWorkflow) Redeliver(ctx context.Context, certificateID uint) (DeliveryOutcome, error) {
	var certificate models.Certificate
	if err := w.db.Preload("Participant").Preload("Course").First(&certificate, certificateID).Error; err != nil {
		return DeliveryOutcome{}, fmt.Errorf("load certificate: %w", err)
	}

	pdf, err := w.renderCertificate(&certificate.Participant, &certificate.Course, &certificate)
	if err != nil {
		return DeliveryOutcome{}, err
	}

	return w.deliver(ctx, &certificate, &certificate.Participant, &certificate.Course, pdf), nil
}

func (w *IssuanceWorkflow) renderCertificate(p *models.Participant, course *models.Course, cert *models.Certificate) ([]byte, error) {
	hours := uint(0)
	if course.StandardHours != nil {
		hours = *course.StandardHours
	}
	return w.renderer.Render(CertificateData{
		ParticipantName: p.Name,
		CourseName:      course.Name,
		Hours:           hours,
		IssuedAt:        cert.IssuedAt,
	})
}

// deliver emails the rendered certificate and records the attempt. Any send
// error is converted into a FAILED outcome; it never propagates upward.
func (w *IssuanceWorkflow) deliver(ctx context.Context, cert *models.Certificate, p *models.Participant, course *models.Course, pdf []byte) DeliveryOutcome {
	msg := mailer.Message{
		To:             p.Email,
		Subject:        "Seu certificado - " + course.Name,
		Body:           fmt.Sprintf("Olá, %s!\n\nSegue em anexo o seu certificado do curso %s.\n", p.Name, course.Name),
		AttachmentName: "certificado_" + cert.Code + ".pdf",
		AttachmentType: "application/pdf",
		Attachment:     pdf,
	}

	err := w.mailer.Send(ctx, msg)

	entry := models.DeliveryLog{
		CertificateID: cert.ID,
		Transport:     w.transport,
		Recipient:     p.Email,
		Succeeded:     err == nil,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
		var deliveryErr *mailer.DeliveryError
		if errors.As(err, &deliveryErr) {
			if payload, marshalErr := json.Marshal(map[string]interface{}{
				"status_code": deliveryErr.StatusCode,
				"detail":      deliveryErr.Detail,
			}); marshalErr == nil {
				entry.ProviderResponse = datatypes.JSON(payload)
			}
		}
	}
	if dbErr := w.db.Create(&entry).Error; dbErr != nil {
		log.Printf("[ISSUANCE] failed to record delivery attempt for certificate %d: %v", cert.ID, dbErr)
	}

	if err != nil {
		log.Printf("[ISSUANCE] delivery failed for certificate %s: %v", cert.Code, err)
		return DeliveryOutcome{Status: DeliveryFailed, Error: err.Error()}
	}
	return DeliveryOutcome{Status: DeliveryDelivered}
}
