package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"orghub/internal/auth"
	"orghub/internal/authz"
	"orghub/internal/http/handlers"
	"orghub/internal/ratelimit"
	"orghub/internal/service"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	DB          *gorm.DB
	JWTSecret   string
	WebHost     string
	Redis       *redis.Client
	Members     *service.MemberService
	Invitations *service.InvitationService
	Orgs        *service.OrgService
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	r.POST("/api/auth/login", handlers.LoginHandler(d.DB, d.JWTSecret))

	// Invitation acceptance is reached from an email link, so authentication
	// is optional here: unauthenticated callers get bounced to login with
	// the token preserved.
	r.GET("/api/organizations/members/invite/accept",
		auth.OptionalJWT(d.DB, d.JWTSecret),
		handlers.AcceptInvitation(d.Invitations, d.DB, d.WebHost))

	// One invitation request per caller every six seconds.
	inviteLimiter := ratelimit.Limiter{
		RDB:    d.Redis,
		Prefix: "org_invitation_create",
		Window: 6 * time.Second,
	}

	authMW := auth.JWT(d.DB, d.JWTSecret)

	api := r.Group("/api", authMW)
	{
		orgs := api.Group("/organizations")

		orgs.GET("", handlers.ListOrgs(d.Orgs))
		orgs.POST("", handlers.CreateOrg(d.Orgs))

		orgs.GET("/:org_id",
			handlers.RequirePermission(d.Members, authz.ViewOrgSettings),
			handlers.GetOrg(d.Orgs))
		orgs.PATCH("/:org_id",
			handlers.RequirePermission(d.Members, authz.EditOrgSettings),
			handlers.UpdateOrg(d.Orgs))
		orgs.DELETE("/:org_id",
			handlers.RequirePermission(d.Members, authz.DeleteOrganization),
			handlers.DeleteOrg(d.Orgs, d.DB))
		orgs.POST("/:org_id/switch", handlers.SwitchOrg(d.Orgs))

		orgs.GET("/:org_id/me", handlers.GetMe(d.Members))
		orgs.GET("/:org_id/members", handlers.ListMembers(d.Members))
		orgs.DELETE("/:org_id/members/:user_id", handlers.RemoveMember(d.Members, d.DB))
		orgs.PATCH("/:org_id/members/:user_id", handlers.UpdateMemberRole(d.Members, d.DB))

		orgs.POST("/:org_id/members/invite", handlers.CreateInvitations(d.Invitations, inviteLimiter, d.DB))
	}

	return r
}
