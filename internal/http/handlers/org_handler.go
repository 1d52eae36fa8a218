package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"orghub/internal/auth"
	"orghub/internal/service"
)

// ListOrgs returns the orgs the caller belongs to.
func ListOrgs(orgs *service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := orgs.ListUserOrgs(auth.UserID(c), c.Query("page_id"), 100)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// CreateOrg creates an organization; the creator becomes its owner.
func CreateOrg(orgs *service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name         string `json:"name" binding:"required"`
			ContactName  string `json:"contact_name"`
			ContactEmail string `json:"contact_email" binding:"omitempty,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		org, err := orgs.CreateOrgWithOwner(input.Name, input.ContactName, input.ContactEmail, auth.UserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, service.NewOrgView(org))
	}
}

// GetOrg returns org details. The view permission gate runs upstream.
func GetOrg(orgs *service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := orgs.GetOrg(c.Param("org_id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, service.NewOrgView(org))
	}
}

// UpdateOrg updates org settings. The edit permission gate runs upstream;
// renaming is re-checked against the owner-only permission inside the
// service.
func UpdateOrg(orgs *service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input service.OrgUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		org, err := orgs.UpdateOrg(c.Param("org_id"), input, c.GetString("role_name"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, service.NewOrgView(org))
	}
}

// SwitchOrg changes the caller's current organization.
func SwitchOrg(orgs *service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := orgs.SwitchOrg(c.Param("org_id"), auth.UserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, service.NewOrgView(org))
	}
}

// DeleteOrg cascades an org deletion. The delete permission gate (owner
// only) runs upstream.
func DeleteOrg(orgs *service.OrgService, adb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("org_id")
		org, err := orgs.DeleteOrgWithCleanup(c.Request.Context(), orgID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		recordAudit(c, adb, orgID, "organizations.delete", "organization", orgID,
			map[string]interface{}{"name": org.Name})
		c.JSON(http.StatusOK, gin.H{
			"message": "Organization deleted successfully",
			"organization": gin.H{
				"id":            org.ID,
				"name":          org.Name,
				"contact_name":  org.ContactName,
				"contact_email": org.ContactEmail,
			},
		})
	}
}
