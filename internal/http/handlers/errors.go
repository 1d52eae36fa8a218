package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"orghub/internal/service"
)

// respondServiceError maps each enumerable service failure to its status
// code. Nothing expected ends up as a log-and-500; consistency faults do,
// with a generic body.
func respondServiceError(c *gin.Context, err error) {
	var orphanErr *service.OrphanedUsersError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	case errors.Is(err, service.ErrNotAMember),
		errors.Is(err, service.ErrInsufficientPermission),
		errors.Is(err, service.ErrCannotRemoveSelf),
		errors.Is(err, service.ErrCannotModifySelf):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrOrgNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrgNameExists),
		errors.Is(err, service.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidPageCursor),
		errors.Is(err, service.ErrLastOwner),
		errors.As(err, &orphanErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoleConfiguration):
		log.Printf("error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Role configuration error"})
	case errors.Is(err, service.ErrIntegrationFailure):
		log.Printf("error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		log.Printf("error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}
