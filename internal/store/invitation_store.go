package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"orghub/internal/models"
)

// Invitation token configuration. The prefix makes tokens recognizable in
// logs and support tickets; the random part keeps them unguessable.
const (
	InvitationTokenPrefix = "inv-"
	InvitationTokenLength = 48 // random alphanumerics; total length 52 with prefix
	DefaultExpirationDays = 7
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// InvitationStore manages org_invitation rows.
type InvitationStore struct{ DB *gorm.DB }

// GenerateToken returns a new invitation token: the fixed prefix followed by
// length cryptographically random alphanumeric characters. The result is
// URL-safe without encoding.
func GenerateToken(length int) (string, error) {
	var b strings.Builder
	b.Grow(len(InvitationTokenPrefix) + length)
	b.WriteString(InvitationTokenPrefix)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invitation token: %w", err)
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create persists a new pending invitation with a fresh token and the
// default expiration window. The email is stored normalized.
func (s InvitationStore) Create(orgID, email string, roleID int64, inviterID string) (*models.OrgInvitation, error) {
	token, err := GenerateToken(InvitationTokenLength)
	if err != nil {
		return nil, err
	}
	inv := models.OrgInvitation{
		Token:     token,
		OrgID:     orgID,
		Email:     NormalizeEmail(email),
		RoleID:    roleID,
		InviterID: inviterID,
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().UTC().Add(DefaultExpirationDays * 24 * time.Hour),
	}
	if err := s.DB.Create(&inv).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Role").First(&inv, inv.ID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// ByToken resolves an invitation by its token, or nil if none exists.
func (s InvitationStore) ByToken(token string) (*models.OrgInvitation, error) {
	var inv models.OrgInvitation
	err := s.DB.Preload("Org").Preload("Role").
		Where("token = ?", token).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// PendingFor returns the pending invitation for an email in an org, if any.
func (s InvitationStore) PendingFor(orgID, email string) (*models.OrgInvitation, error) {
	var inv models.OrgInvitation
	err := s.DB.Where("org_id = ? AND email = ? AND status = ?",
		orgID, NormalizeEmail(email), models.InvitationPending).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// UpdateStatus transitions an invitation. For the accepted status it also
// stamps accepted_at and accepted_by_user_id.
func (s InvitationStore) UpdateStatus(tx *gorm.DB, invitationID int64, status string, acceptedByUserID string) (*models.OrgInvitation, error) {
	if tx == nil {
		tx = s.DB
	}
	var inv models.OrgInvitation
	if err := tx.First(&inv, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	inv.Status = status
	if status == models.InvitationAccepted && acceptedByUserID != "" {
		now := time.Now().UTC()
		inv.AcceptedAt = &now
		inv.AcceptedByUserID = &acceptedByUserID
	}
	if err := tx.Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// IsExpired reports whether the invitation's window has passed.
func IsExpired(inv *models.OrgInvitation) bool {
	return inv.ExpiresAt.Before(time.Now().UTC())
}

// MarkExpiredIfNeeded transitions a pending, past-expiry invitation to
// expired. Returns true only when the transition happened; calling it again
// on the same invitation is a no-op.
func (s InvitationStore) MarkExpiredIfNeeded(inv *models.OrgInvitation) (bool, error) {
	if inv.Status != models.InvitationPending || !IsExpired(inv) {
		return false, nil
	}
	updated, err := s.UpdateStatus(nil, inv.ID, models.InvitationExpired, "")
	if err != nil {
		return false, err
	}
	if updated != nil {
		inv.Status = updated.Status
	}
	return true, nil
}

// ListPendingExpired returns pending invitations whose window has passed,
// for the periodic sweep.
func (s InvitationStore) ListPendingExpired(limit int) ([]models.OrgInvitation, error) {
	var invs []models.OrgInvitation
	err := s.DB.Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now().UTC()).
		Limit(limit).
		Find(&invs).Error
	return invs, err
}

// NormalizeEmail lowercases and trims an email address. All invitation email
// comparisons are done on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
