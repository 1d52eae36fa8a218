package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"orghub/internal/auth"
	"orghub/internal/models"
)

// recordAudit writes an audit row for a membership or invitation action.
// Audit writes never fail the request.
func recordAudit(c *gin.Context, db *gorm.DB, orgID, action, resourceType, resourceID string, meta map[string]interface{}) {
	metaJSON, _ := json.Marshal(meta)

	entry := models.AuditLog{
		OrgID:        orgID,
		UserID:       auth.UserID(c),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     datatypes.JSON(metaJSON),
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		CreatedAt:    time.Now(),
	}
	if claims, ok := c.Get("claims"); ok {
		if cl, ok := claims.(*auth.Claims); ok {
			entry.InitiatorName = cl.Email
		}
	}
	_ = db.Create(&entry).Error
}
