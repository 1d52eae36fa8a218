package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"orghub/internal/auth"
	"orghub/internal/authz"
	"orghub/internal/service"
)

// RequirePermission gates a route on the caller holding a permission in the
// path org. The check runs fresh on every request; on success the caller's
// role name is stored in the context for handlers that need it.
func RequirePermission(members *service.MemberService, p authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, err := members.RequirePermission(c.Param("org_id"), auth.UserID(c), p)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}
		c.Set("role_name", roleName)
		c.Next()
	}
}

// ListMembers returns one offset page of an org's members.
func ListMembers(members *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if v, ok := c.GetQuery("limit"); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 100 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}
		page, err := members.ListMembers(c.Param("org_id"), auth.UserID(c), c.Query("page_id"), limit)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetMe returns the caller's own membership in the path org.
func GetMe(members *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := members.GetMe(c.Param("org_id"), auth.UserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, me)
	}
}

// RemoveMember removes a member from an org.
//
// Owners can remove admins and regular members; admins can only remove
// regular members. Nobody removes themselves, and the last owner cannot be
// removed.
func RemoveMember(members *service.MemberService, adb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("org_id")
		targetID := c.Param("user_id")

		if err := members.RemoveMember(orgID, targetID, auth.UserID(c)); err != nil {
			respondServiceError(c, err)
			return
		}

		recordAudit(c, adb, orgID, "members.remove", "org_member", targetID, nil)
		c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
	}
}

// UpdateMemberRole changes a member's role.
//
// Admins can move regular members to admin or member; owners can move
// admins and members to any role. Nobody modifies a peer, a superior or
// themselves, and the last owner cannot be demoted.
func UpdateMemberRole(members *service.MemberService, adb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Role string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		orgID := c.Param("org_id")
		targetID := c.Param("user_id")

		view, err := members.UpdateMemberRole(orgID, targetID, input.Role, auth.UserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		recordAudit(c, adb, orgID, "members.update_role", "org_member", targetID,
			map[string]interface{}{"new_role": input.Role})
		c.JSON(http.StatusOK, view)
	}
}
