package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/internal/config"
	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
	"github.com/jakechorley/catering-ops/pkg/core/services"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg        *config.Config
	Database   db.Database
	Migrator   Migrator
	Cache      *cache.QueryCache
	Controller *optimistic.Controller
	Mailer     services.Mailer // nil when invitation emails are disabled
	Logger     *zap.Logger
	Session    model.Session
	Out        io.Writer
	Color      bool
	Ctx        context.Context
}

// Migrator applies pending schema migrations
type Migrator interface {
	RunMigrations(ctx context.Context) error
}

// Env is the services environment for the current session
func (app *AppContext) Env() services.Env {
	return services.Env{
		Cache:      app.Cache,
		Controller: app.Controller,
		Logger:     app.Logger,
		Session:    app.Session,
	}
}

const skipMailerAnnotation = "skipMailer"

// NeedsMailer reports whether cmd may send invitation emails
func NeedsMailer(cmd *cobra.Command) bool {
	return cmd.Annotations[skipMailerAnnotation] != "true"
}
