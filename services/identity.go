package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"certificados/models"

	"gorm.io/gorm"
)

// ErrInvalidCPF is returned when the normalized identifier fails the format
// check. The validators catch this earlier; the resolver enforces it again
// so no caller can sneak an unkeyed participant into the store.
var ErrInvalidCPF = errors.New("invalid CPF")

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeCPF strips everything but digits, so "123.456.789-01" and
// "12345678901" dedupe to the same participant.
func NormalizeCPF(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// ValidCPF reports whether a normalized CPF has the expected 11 digits.
func ValidCPF(cpf string) bool {
	return len(cpf) == 11
}

// ParticipantInput carries the submitted form fields for one enrollment.
type ParticipantInput struct {
	CPF       string
	Name      string
	Email     string
	BirthDate time.Time
	Phone     string
	Address   string
}

// IdentityResolver owns Participant upserts keyed by normalized CPF.
type IdentityResolver struct {
	db *gorm.DB
}

func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{db: db}
}

// Resolve upserts the participant for input.CPF and returns it together with
// a flag telling whether it was newly created. Existing participants get all
// mutable fields overwritten with the submitted values.
func (r *IdentityResolver) Resolve(input ParticipantInput) (*models.Participant, bool, error) {
	cpf := NormalizeCPF(input.CPF)
	if !ValidCPF(cpf) {
		return nil, false, ErrInvalidCPF
	}

	var participant models.Participant
	err := r.db.Where("cpf = ?", cpf).First(&participant).Error
	switch {
	case err == nil:
		applyParticipantUpdate(&participant, input)
		if err := r.db.Save(&participant).Error; err != nil {
			return nil, false, fmt.Errorf("update participant: %w", err)
		}
		return &participant, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		participant = models.Participant{CPF: cpf}
		applyParticipantUpdate(&participant, input)
		if err := r.db.Create(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent submission created the row first; update it.
				return r.updateExisting(cpf, input)
			}
			return nil, false, fmt.Errorf("create participant: %w", err)
		}
		return &participant, true, nil

	default:
		return nil, false, fmt.Errorf("load participant: %w", err)
	}
}

func (r *IdentityResolver) updateExisting(cpf string, input ParticipantInput) (*models.Participant, bool, error) {
	var participant models.Participant
	if err := r.db.Where("cpf = ?", cpf).First(&participant).Error; err != nil {
		return nil, false, fmt.Errorf("reload participant: %w", err)
	}
	applyParticipantUpdate(&participant, input)
	if err := r.db.Save(&participant).Error; err != nil {
		return nil, false, fmt.Errorf("update participant: %w", err)
	}
	return &participant, false, nil
}

// applyParticipantUpdate enumerates every mutable Participant field. CPF is
// the identity key and stays untouched.
func applyParticipantUpdate(p *models.Participant, input ParticipantInput) {
	p.Name = input.Name
	p.Email = input.Email
	p.BirthDate = input.BirthDate
	p.Phone = input.Phone
	p.Address = input.Address
}
