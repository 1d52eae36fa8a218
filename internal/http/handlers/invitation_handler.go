package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"orghub/internal/auth"
	"orghub/internal/ratelimit"
	"orghub/internal/service"
)

// CreateInvitations creates invitations for multiple email addresses.
//
// The shared permission gate runs once; past it, emails succeed and fail
// independently and the response carries both lists. Rate limited per
// caller so a compromised account cannot spray invitations.
func CreateInvitations(invitations *service.InvitationService, limiter ratelimit.Limiter, adb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Emails []string `json:"emails" binding:"required,min=1,dive,email"`
			Role   string   `json:"role"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Role == "" {
			input.Role = "member"
		}

		userID := auth.UserID(c)
		allowed, err := limiter.Allow(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many invitation requests, slow down"})
			return
		}

		orgID := c.Param("org_id")
		successful, failed, err := invitations.CreateInvitationsBatch(
			c.Request.Context(), orgID, input.Emails, input.Role, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		views := make([]service.InvitationView, 0, len(successful))
		for _, inv := range successful {
			views = append(views, service.NewInvitationView(inv))
			recordAudit(c, adb, orgID, "invitations.create", "org_invitation",
				inv.Token[:12], map[string]interface{}{"email": inv.Email})
		}
		if failed == nil {
			failed = []service.InvitationFailure{}
		}

		c.JSON(http.StatusCreated, gin.H{
			"successful": views,
			"failed":     failed,
		})
	}
}

// AcceptInvitation redeems an invitation token from the email link.
//
// Unauthenticated callers are bounced to login with the token preserved so
// the flow can resume after sign-in. Authenticated callers are redirected
// home, with a query flag naming the failure when the acceptance is
// rejected.
func AcceptInvitation(invitations *service.InvitationService, adb *gorm.DB, webHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
			return
		}

		userID := auth.UserID(c)
		if userID == "" {
			c.Redirect(http.StatusFound, webHost+"/login?invitation_token="+token)
			return
		}

		inv, err := invitations.AcceptInvitation(c.Request.Context(), token, userID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvitationExpired):
				c.Redirect(http.StatusFound, webHost+"/?invitation_expired=true")
			case errors.Is(err, service.ErrAlreadyMember):
				c.Redirect(http.StatusFound, webHost+"/?already_member=true")
			case errors.Is(err, service.ErrEmailMismatch):
				c.Redirect(http.StatusFound, webHost+"/?email_mismatch=true")
			case errors.Is(err, service.ErrInvitationInvalid):
				c.Redirect(http.StatusFound, webHost+"/?invitation_invalid=true")
			default:
				c.Redirect(http.StatusFound, webHost+"/?invitation_error=true")
			}
			return
		}

		recordAudit(c, adb, inv.OrgID, "invitations.accept", "org_invitation",
			inv.Token[:12], map[string]interface{}{"email": inv.Email})
		c.Redirect(http.StatusFound, webHost+"/")
	}
}
