package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go-helpdesk/internal/analysis"
	common_api "go-helpdesk/internal/common/api"
	"go-helpdesk/internal/config"
	"go-helpdesk/internal/database"
	"go-helpdesk/internal/engine"
	"go-helpdesk/internal/features/activity"
	"go-helpdesk/internal/features/auth"
	"go-helpdesk/internal/features/notification"
	"go-helpdesk/internal/features/rule"
	"go-helpdesk/internal/features/scheduler"
	"go-helpdesk/internal/features/ticket"
	"go-helpdesk/internal/logger"
	"go-helpdesk/internal/middleware"
	"go-helpdesk/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// NewAnalyzer selects the scoring backend. When ANALYZER_SCRIPT points at a
// tengo script file the script analyzer is used, otherwise the built-in
// lexical one.
func NewAnalyzer(cfg *config.Config, log *zap.Logger) (analysis.Analyzer, error) {
	if cfg.AnalyzerScript == "" {
		return analysis.NewLexicalAnalyzer(), nil
	}
	source, err := os.ReadFile(cfg.AnalyzerScript)
	if err != nil {
		return nil, fmt.Errorf("read analyzer script: %w", err)
	}
	log.Info("using script analyzer", zap.String("path", cfg.AnalyzerScript))
	return analysis.NewScriptAnalyzer(string(source)), nil
}

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Repositories
			rule.NewRepository,
			ticket.NewRepository,
			activity.NewRepository,

			// Engine wiring
			NewAnalyzer,
			ticket.NewMutator,
			activity.NewHub,
			engine.NewExecutor,
			engine.NewDispatcher,

			// Services
			notification.NewService,
			activity.NewService,
			ticket.NewService,
			scheduler.NewService,
			rule.NewService,

			// Interface adapters to satisfy Fx
			func(m *ticket.Mutator) engine.MutationSurface { return m },
			func(m *ticket.Mutator) engine.TicketChecker { return m },
			func(s notification.Service) engine.Notifier { return s },
			func(s activity.Service) engine.ReportSink { return s },
			func(r rule.Repository) engine.RuleSource { return r },
			func(d *engine.Dispatcher) ticket.Automation { return d },
			func(s scheduler.Service) rule.Refresher { return s },

			// Controllers
			auth.NewController,
			rule.NewController,
			ticket.NewController,
			notification.NewController,
			activity.NewController,

			// API Routes
			AsRoute(auth.NewApi),
			AsRoute(rule.NewApi),
			AsRoute(ticket.NewApi),
			AsRoute(notification.NewApi),
			AsRoute(activity.NewApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, schedulerService scheduler.Service) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return schedulerService.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						schedulerService.Stop()
						return nil
					},
				})
			},
		),
	)

	app.Run()
}
