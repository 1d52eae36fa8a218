package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"orghub/internal/authz"
	"orghub/internal/config"
	"orghub/internal/db"
	"orghub/internal/email"
	httpserver "orghub/internal/http"
	"orghub/internal/identity"
	"orghub/internal/llmproxy"
	"orghub/internal/models"
	"orghub/internal/seed"
	"orghub/internal/service"
	"orghub/internal/store"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DSN)
	db.AutoMigrate(gdb,
		&models.Role{},
		&models.User{},
		&models.Organization{},
		&models.OrgMember{},
		&models.OrgInvitation{},
		&models.AuditLog{},
		&models.Conversation{},
		&models.BillingSession{},
		&models.CustomSecret{},
		&models.APIKey{},
	)

	if err := seed.Roles(gdb); err != nil {
		log.Fatalf("role seed failed: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	perms := authz.NewConfig()
	orgs := store.OrgStore{DB: gdb}
	members := store.MemberStore{DB: gdb}
	roles := store.RoleStore{DB: gdb}
	users := store.UserStore{DB: gdb}
	invitations := store.InvitationStore{DB: gdb}

	mailer := email.NewResendMailer(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.WebHost)

	var provisioner service.TeamProvisioner
	if cfg.LLMProxyURL != "" {
		provisioner = llmproxy.NewClient(cfg.LLMProxyURL, cfg.LLMProxyKey)
	}

	memberSvc := &service.MemberService{
		DB:      gdb,
		Perms:   perms,
		Members: members,
		Roles:   roles,
		Users:   users,
	}
	invitationSvc := &service.InvitationService{
		DB:          gdb,
		Perms:       perms,
		Orgs:        orgs,
		Members:     members,
		Roles:       roles,
		Users:       users,
		Invitations: invitations,
		Mailer:      mailer,
		Provisioner: provisioner,
		Identity:    identity.NewClient(cfg.IdentityURL, cfg.IdentityToken),
	}
	orgSvc := &service.OrgService{
		DB:          gdb,
		Perms:       perms,
		Orgs:        orgs,
		Members:     members,
		Roles:       roles,
		Users:       users,
		Provisioner: provisioner,
	}

	r := httpserver.NewRouter(httpserver.Deps{
		DB:          gdb,
		JWTSecret:   cfg.JWTSecret,
		WebHost:     cfg.WebHost,
		Redis:       rdb,
		Members:     memberSvc,
		Invitations: invitationSvc,
		Orgs:        orgSvc,
	})

	log.Printf("api listening on :%s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
