// Package main is the entry point for the AuthBox service.
// It initializes the database connection, the authentication backend chain,
// the security components, and all HTTP routes.
package main

import (
	"log"
	"time"

	"github.com/avissapr/authbox/internal/backends"
	"github.com/avissapr/authbox/internal/config"
	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/handlers"
	"github.com/avissapr/authbox/internal/middleware"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

func main() {
	cfg := config.Load()

	database.MustConnect(nil)
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Security components
	securityConfig := security.DefaultSecurityConfig()
	securityConfig.BcryptCost = cfg.BcryptCost
	securityConfig.SessionSecure = cfg.SessionSecure

	securityLogger := security.NewLogger()
	securityLogger.Info("authbox starting")

	securityMiddleware := middleware.NewSecurityMiddleware(securityLogger, securityConfig)
	defer securityMiddleware.Stop()

	// Authentication backend chain, in configuration order
	userRepo := repository.NewUserRepository()
	chain, err := backends.Build(cfg.AuthBackends, userRepo)
	if err != nil {
		log.Fatalf("Failed to build authentication backends: %v", err)
	}

	// Services
	authService := services.NewAuthService(chain, securityConfig.BcryptCost)
	userService := services.NewUserService(userRepo, authService)
	permService := services.NewPermissionService(repository.NewPermissionRepository())

	tokens := security.NewTokenGenerator(cfg.JWTSecret, cfg.JWTIssuer,
		time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	// Session store backed by hardened cookie settings
	store := session.New(session.Config{
		Expiration:     securityConfig.SessionTimeout,
		KeyLookup:      "cookie:" + securityConfig.SessionCookieName,
		CookieSecure:   securityConfig.SessionSecure,
		CookieHTTPOnly: securityConfig.SessionHTTPOnly,
		CookieSameSite: securityConfig.SessionSameSite,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(store, authService, tokens, securityMiddleware, securityLogger)
	adminHandler := handlers.NewAdminHandler(userService, permService, securityLogger)
	profileHandler := handlers.NewProfileHandler(userService, securityLogger)

	app := fiber.New(fiber.Config{
		AppName:      "AuthBox",
		ReadTimeout:  securityConfig.QueryTimeout,
		WriteTimeout: securityConfig.QueryTimeout,
	})

	app.Use(recover.New())
	app.Use(securityMiddleware.RequestLogger())
	app.Use(securityMiddleware.SecureHeaders())

	// Public routes
	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Post("/api/token", authHandler.Token)

	app.Get("/health", func(c *fiber.Ctx) error {
		if !database.IsConnected() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Authenticated self-service routes
	me := app.Group("/me", middleware.AuthRequired(store))
	me.Get("/", authHandler.Me)
	me.Get("/profile", profileHandler.Show)
	me.Patch("/profile", profileHandler.Update)
	me.Post("/profile/picture", profileHandler.AttachPicture)
	me.Delete("/profile/picture", profileHandler.RemovePicture)

	// Admin routes, session authenticated
	admin := app.Group("/admin", middleware.AuthRequired(store), middleware.AdminOnly())

	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users", adminHandler.CreateUser)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Patch("/users/:id/active", adminHandler.SetUserActive)

	admin.Get("/groups", adminHandler.ListGroups)
	admin.Post("/groups", adminHandler.CreateGroup)
	admin.Delete("/groups/:id", adminHandler.DeleteGroup)
	admin.Get("/groups/:id/members", adminHandler.ListGroupMembers)
	admin.Post("/groups/:id/members", adminHandler.AddGroupMember)
	admin.Delete("/groups/:id/members/:user_id", adminHandler.RemoveGroupMember)

	admin.Get("/permissions", adminHandler.ListPermissions)
	admin.Post("/permissions", adminHandler.CreatePermission)

	admin.Get("/users/:id/permissions", adminHandler.ListUserPermissions)
	admin.Post("/users/:id/permissions", adminHandler.GrantUserPermission)
	admin.Delete("/users/:id/permissions/:codename", adminHandler.RevokeUserPermission)

	admin.Get("/groups/:id/permissions", adminHandler.ListGroupPermissions)
	admin.Post("/groups/:id/permissions", adminHandler.GrantGroupPermission)
	admin.Delete("/groups/:id/permissions/:codename", adminHandler.RevokeGroupPermission)

	admin.Post("/assign", adminHandler.Assign)

	admin.Get("/stats", adminHandler.Dashboard)
	admin.Get("/audit", adminHandler.AuditLog)

	// Token-authenticated API mirror for non-browser clients
	api := app.Group("/api/v1", middleware.TokenRequired(tokens))
	api.Get("/me", authHandler.Me)
	api.Get("/me/profile", profileHandler.Show)

	apiAdmin := api.Group("/admin", middleware.AdminOnly())
	apiAdmin.Post("/assign", adminHandler.Assign)
	apiAdmin.Get("/users", adminHandler.ListUsers)
	apiAdmin.Get("/permissions", adminHandler.ListPermissions)

	log.Printf("AuthBox listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
