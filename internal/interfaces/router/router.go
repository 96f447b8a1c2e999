package router

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	assignsvc "planora-backend/internal/application/assignments"
	authsvc "planora-backend/internal/application/auth"
	budgetsvc "planora-backend/internal/application/budgets"
	ledgersvc "planora-backend/internal/application/ledger"
	wfsvc "planora-backend/internal/application/workforce"
	"planora-backend/internal/config"
	"planora-backend/internal/constants"
	"planora-backend/internal/infrastructure/database"
	assignhandler "planora-backend/internal/interfaces/handlers/assignments"
	authhandler "planora-backend/internal/interfaces/handlers/auth"
	budgethandler "planora-backend/internal/interfaces/handlers/budgets"
	healthhandler "planora-backend/internal/interfaces/handlers/health"
	ledgerhandler "planora-backend/internal/interfaces/handlers/ledger"
	wfhandler "planora-backend/internal/interfaces/handlers/workforce"
	"planora-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
		DB:         db,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		// User management
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Patch("/:id/role", middleware.AuthorizePermission(constants.AssignRole), ah.UpdateRole)

		// Ledger
		ls := &ledgersvc.Service{DB: db}
		lh := &ledgerhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/budget-transactions", middleware.RequireAuth())
		lg.Get("/", middleware.AuthorizePermission(constants.ViewData), lh.GetTransactions)
		lg.Post("/", middleware.AuthorizePermission(constants.RecordTransaction), lh.CreateTransaction)

		// Position budgets
		bs := &budgetsvc.Service{DB: db}
		bh := &budgethandler.Handlers{Service: bs}
		bg := app.Group("/api/v1/position-budgets", middleware.RequireAuth())
		bg.Get("/:id", middleware.AuthorizePermission(constants.ViewData), bh.GetPositionBudget)
		bg.Put("/:id", middleware.AuthorizePermission(constants.ManageBudgets), bh.UpdatePositionBudget)
		bg.Delete("/:id", middleware.AuthorizePermission(constants.ManageBudgets), bh.DeletePositionBudget)

		// Assignments
		as := &assignsvc.Service{DB: db}
		anh := &assignhandler.Handlers{Service: as}
		ag := app.Group("/api/v1/assignments", middleware.RequireAuth())
		ag.Get("/", middleware.AuthorizePermission(constants.ViewData), anh.GetAssignments)
		ag.Post("/", middleware.AuthorizePermission(constants.ManageAssignments), anh.CreateAssignment)
		ag.Patch("/:id/end", middleware.AuthorizePermission(constants.ManageAssignments), anh.EndAssignment)

		// Workforce plans
		ws := &wfsvc.Service{DB: db}
		wh := &wfhandler.Handlers{Service: ws}
		wg := app.Group("/api/v1/workforce-plans", middleware.RequireAuth())
		wg.Get("/:id/entries", middleware.AuthorizePermission(constants.ViewData), wh.GetEntries)
		wg.Put("/:id/entries", middleware.AuthorizePermission(constants.ManagePlans), wh.UpsertEntries)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
