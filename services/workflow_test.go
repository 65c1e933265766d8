package services

import (
	"context"
	"testing"
	"time"

	"certificados/mailer"
	"certificados/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer records sent messages and optionally fails every send.
type fakeMailer struct {
	sent    []mailer.Message
	failure error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.failure != nil {
		return f.failure
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestWorkflow(t *testing.T, db *gorm.DB, m mailer.Mailer) *IssuanceWorkflow {
	t.Helper()
	renderer, err := NewDocumentRenderer(writeTemplate(t))
	require.NoError(t, err)
	return NewIssuanceWorkflow(db, renderer, m, "fake")
}

func enrollRequest(sessionID string) EnrollRequest {
	return EnrollRequest{
		SessionID: sessionID,
		Participant: ParticipantInput{
			CPF:       "12345678901",
			Name:      "Ana Silva",
			Email:     "ana.silva@example.com",
			BirthDate: time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestEnrollHappyPath(t *testing.T) {
	db := newTestDB(t)
	sent := &fakeMailer{}
	workflow := newTestWorkflow(t, db, sent)
	session := seedSession(t, db, uintPtr(40))

	result, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)

	assert.Equal(t, DeliveryDelivered, result.Delivery.Status)
	assert.NotEmpty(t, result.Certificate.Code)
	assert.Equal(t, "Ana Silva", result.Participant.Name)

	var enrollments, certificates int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	require.NoError(t, db.Model(&models.Certificate{}).Count(&certificates).Error)
	assert.EqualValues(t, 1, enrollments)
	assert.EqualValues(t, 1, certificates)

	require.Len(t, sent.sent, 1)
	msg := sent.sent[0]
	assert.Equal(t, "ana.silva@example.com", msg.To)
	assert.Equal(t, "Seu certificado - Lean Six Sigma", msg.Subject)
	assert.Equal(t, "certificado_"+result.Certificate.Code+".pdf", msg.AttachmentName)
	assert.Equal(t, "application/pdf", msg.AttachmentType)
	assert.NotEmpty(t, msg.Attachment)

	var logEntry models.DeliveryLog
	require.NoError(t, db.First(&logEntry).Error)
	assert.True(t, logEntry.Succeeded)
	assert.Equal(t, result.Certificate.ID, logEntry.CertificateID)
}

func TestEnrollDeliveryFailureKeepsCertificate(t *testing.T) {
	db := newTestDB(t)
	failing := &fakeMailer{failure: &mailer.DeliveryError{Provider: "fake", StatusCode: 502, Detail: "bad gateway"}}
	workflow := newTestWorkflow(t, db, failing)
	session := seedSession(t, db, uintPtr(40))

	result, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)

	// The issuance survives; only the delivery leg reports failure.
	assert.Equal(t, DeliveryFailed, result.Delivery.Status)
	assert.Contains(t, result.Delivery.Error, "bad gateway")

	var certificates int64
	require.NoError(t, db.Model(&models.Certificate{}).Count(&certificates).Error)
	assert.EqualValues(t, 1, certificates)

	var logEntry models.DeliveryLog
	require.NoError(t, db.First(&logEntry).Error)
	assert.False(t, logEntry.Succeeded)
	assert.NotEmpty(t, logEntry.ErrorMessage)
	assert.NotEmpty(t, logEntry.ProviderResponse)
}

func TestEnrollInvalidSessionWritesNothing(t *testing.T) {
	db := newTestDB(t)
	workflow := newTestWorkflow(t, db, &fakeMailer{})

	_, err := workflow.Enroll(context.Background(), enrollRequest("7f000000-0000-4000-8000-000000000000"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	var participants, enrollments, certificates int64
	require.NoError(t, db.Model(&models.Participant{}).Count(&participants).Error)
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	require.NoError(t, db.Model(&models.Certificate{}).Count(&certificates).Error)
	assert.Zero(t, participants)
	assert.Zero(t, enrollments)
	assert.Zero(t, certificates)
}

func TestEnrollTwiceReturnsSameCertificate(t *testing.T) {
	db := newTestDB(t)
	workflow := newTestWorkflow(t, db, &fakeMailer{})
	session := seedSession(t, db, uintPtr(40))

	first, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)
	second, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)

	assert.Equal(t, first.Certificate.Code, second.Certificate.Code)
	assert.Equal(t, first.Certificate.IssuedAt.Unix(), second.Certificate.IssuedAt.Unix())

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)
}

func TestReissueReattemptsDelivery(t *testing.T) {
	db := newTestDB(t)
	sent := &fakeMailer{}
	workflow := newTestWorkflow(t, db, sent)
	session := seedSession(t, db, uintPtr(40))

	result, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)

	pdf, certificate, outcome, err := workflow.Reissue(context.Background(), session.ID, result.Participant.ID)
	require.NoError(t, err)

	assert.Equal(t, result.Certificate.Code, certificate.Code)
	assert.Equal(t, DeliveryDelivered, outcome.Status)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	assert.Len(t, sent.sent, 2)
}

func TestReissueUnknownParticipant(t *testing.T) {
	db := newTestDB(t)
	workflow := newTestWorkflow(t, db, &fakeMailer{})
	session := seedSession(t, db, uintPtr(40))

	_, _, _, err := workflow.Reissue(context.Background(), session.ID, 999)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestRedeliverUsesStoredCertificate(t *testing.T) {
	db := newTestDB(t)
	failing := &fakeMailer{failure: &mailer.DeliveryError{Provider: "fake", Detail: "down"}}
	workflow := newTestWorkflow(t, db, failing)
	session := seedSession(t, db, uintPtr(40))

	result, err := workflow.Enroll(context.Background(), enrollRequest(session.ID))
	require.NoError(t, err)
	require.Equal(t, DeliveryFailed, result.Delivery.Status)

	// Transport recovers.
	failing.failure = nil

	outcome, err := workflow.Redeliver(context.Background(), result.Certificate.ID)
	require.NoError(t, err)
	assert.Equal(t, DeliveryDelivered, outcome.Status)
	require.Len(t, failing.sent, 1)
	assert.Equal(t, "certificado_"+result.Certificate.Code+".pdf", failing.sent[0].AttachmentName)
}
