package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"league-night-system/middleware"
)

// AppOptions carries what NewApp needs to mount every route.
type AppOptions struct {
	AllowedOrigins    string
	CommissionerToken string
	Public            *PublicHandler
	Roster            *RosterHandler
	Session           *SessionHandler
}

// NewApp builds the fiber app: public read view at the root, commissioner
// routes behind the shared token.
func NewApp(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "league-night-system",
		BodyLimit: 4 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, Cache-Control",
		MaxAge:       86400,
	}))

	SetupPublicRoutes(app, opts.Public)

	commissioner := app.Group("/", middleware.CommissionerAuthMiddleware(opts.CommissionerToken))
	SetupRosterRoutes(commissioner, opts.Roster)
	SetupSessionRoutes(commissioner, opts.Session)
	return app
}
