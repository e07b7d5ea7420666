package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/edumeal/backoffice/pkg"
	"github.com/edumeal/backoffice/pkg/event"
	"github.com/edumeal/backoffice/services/backoffice/internal/backoffice"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/mongo"
)

const (
	AppName    = "backoffice"
	AppVersion = "0.1.0"
)

// App encapsulates the back-office service application
type App struct {
	config *aqm.Config
	logger aqm.Logger
	micro  *aqm.Micro
}

func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	client, err := edumeal.NewClient(a.config, a.logger)
	if err != nil {
		return err
	}

	var lifecycles []interface{}

	// Child selections persist in MongoDB when configured, otherwise they
	// live as long as the process.
	var selections backoffice.SelectionRepo
	if mongoURL, _ := a.config.GetString("db.mongo.url"); mongoURL != "" {
		repo := mongo.NewSelectionRepo(a.config, a.logger)
		selections = repo
		lifecycles = append(lifecycles, repo)
	} else {
		a.logger.Info("db.mongo.url not configured; child selections kept in memory")
		selections = backoffice.NewMemorySelectionRepo()
	}

	publisher, closer := a.newPublisher()
	if closer != nil {
		lifecycles = append(lifecycles, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return closer() },
		})
	}

	handler := backoffice.NewHandler(backoffice.HandlerDeps{
		Backend:    client,
		Selections: selections,
		Publisher:  publisher,
		Config:     a.config,
		Logger:     a.logger,
	})
	lifecycles = append(lifecycles, handler.Sessions(), handler.Drafts())

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: false,
	})

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// newPublisher picks the workflow event transport. Events are best effort:
// a NATS server that cannot be reached downgrades to dropping them.
func (a *App) newPublisher() (aqmevents.Publisher, func() error) {
	natsURL, _ := a.config.GetString("nats.url")
	if natsURL == "" {
		a.logger.Info("nats.url not configured; workflow events disabled")
		return backoffice.NoopPublisher{}, nil
	}

	streamEnabled, _ := a.config.GetString("nats.stream.enabled")
	if streamEnabled == "true" {
		stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
			URL:        natsURL,
			StreamName: "PLANNING_EVENTS",
			Topic:      event.PlanningWorkflowTopic,
			MaxAge:     7 * 24 * time.Hour,
		})
		if err != nil {
			a.logger.Error("cannot open NATS stream; workflow events disabled", "error", err)
			return backoffice.NoopPublisher{}, nil
		}
		a.logger.Info("NATS stream initialized for workflow events")
		return stream, stream.Close
	}

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		a.logger.Error("cannot connect to NATS; workflow events disabled", "error", err)
		return backoffice.NoopPublisher{}, nil
	}
	return publisher, publisher.Close
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return fmt.Errorf("%s not initialized", AppName)
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
