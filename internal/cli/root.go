// Package cli exposes the rental operations as a cobra command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/rentals/internal/config"
	"github.com/fastygo/rentals/internal/services/lifecycle"
	"github.com/fastygo/rentals/pkg/logger"
	"github.com/fastygo/rentals/pkg/photo"
	"github.com/fastygo/rentals/repository/remote"
	"github.com/fastygo/rentals/usecase/contract"
	"github.com/fastygo/rentals/usecase/installment"
	"github.com/fastygo/rentals/usecase/property"
)

// offlineAnnotation marks commands that never talk to the store.
const offlineAnnotation = "offline"

// App is the runtime shared by every command of one invocation.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Encoder      *photo.Encoder
	Properties   *property.UseCase
	Contracts    *contract.UseCase
	Installments *installment.UseCase

	out       io.Writer
	format    string
	dial      fasthttp.DialFunc
	lifecycle *lifecycle.Manager
}

// Option customises the command tree, mostly for tests.
type Option func(*App)

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithDialer routes store connections through dial.
func WithDialer(dial fasthttp.DialFunc) Option {
	return func(a *App) { a.dial = dial }
}

// NewRootCmd builds the rentalctl command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	return newRootCmd(newApp(opts))
}

// Execute runs the command tree with args and releases the store client and
// logger afterwards, whether or not the command succeeded.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	app := newApp(opts)
	root := newRootCmd(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if stopErr := app.stop(ctx); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

func newApp(opts []Option) *App {
	app := &App{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func newRootCmd(app *App) *cobra.Command {
	var (
		envFile  string
		storeURL string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "rentalctl",
		Short:         "Manage properties, rental contracts and installments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.format != "table" && app.format != "json" {
				return fmt.Errorf("unknown output format %q", app.format)
			}
			if cmd.Annotations[offlineAnnotation] == "true" {
				return nil
			}
			cfg, err := config.Load(envFile, config.WithStoreURL(storeURL), config.WithLogLevel(logLevel))
			if err != nil {
				return err
			}
			if err := app.start(cfg); err != nil {
				return err
			}
			ctx, cancel := app.lifecycle.Context(cmd.Context())
			app.lifecycle.Register("signals", func(context.Context) error {
				cancel()
				return nil
			})
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.SetOut(app.out)

	flags := root.PersistentFlags()
	flags.StringVar(&envFile, "env-file", "", "read settings from this env file instead of ./.env")
	flags.StringVar(&storeURL, "store-url", "", "store base URL (overrides STORE_BASE_URL)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.StringVarP(&app.format, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		PropertyCmd(app),
		ContractCmd(app),
		InstallmentCmd(app),
		PhotoCmd(app),
	)
	return root
}

func (a *App) start(cfg *config.Config) error {
	log, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	a.lifecycle = lifecycle.New(cfg.Context.ShutdownTimeout, log)
	a.lifecycle.Register("logger", func(context.Context) error {
		_ = log.Sync()
		return nil
	})

	client, err := remote.NewClient(remote.Options{
		BaseURL:  cfg.Store.BaseURL,
		Timeout:  cfg.Store.RequestTimeout,
		MaxConns: cfg.Store.MaxConns,
		Dial:     a.dial,
		Logger:   log.Named("store"),
	})
	if err != nil {
		return err
	}
	a.lifecycle.Register("store_client", func(context.Context) error {
		return client.Close()
	})

	properties := remote.NewPropertyRepository(client)
	contracts := remote.NewContractRepository(client)
	installments := remote.NewInstallmentRepository(client)

	a.Config = cfg
	a.Logger = log
	a.Encoder = photo.NewEncoder(cfg.Photo.MaxWidth, cfg.Photo.Quality)
	a.Properties = property.New(properties, contracts, a.Encoder, log.Named("property"))
	a.Contracts = contract.New(contracts, installments, properties, log.Named("contract"))
	a.Installments = installment.New(installments, log.Named("installment"))
	return nil
}

func (a *App) stop(ctx context.Context) error {
	if a.lifecycle == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.lifecycle.Shutdown(context.WithoutCancel(ctx))
}
