/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/merchke/storefront/config"
	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/endpoints"
	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "merchke",
	Short: "Merch KE storefront client",
	Long: `Merch KE storefront client. Browse the shop, manage your cart and
orders, run the admin pages from the terminal, or serve the storefront
gateway over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Level, err)
	}
	l.SetLevel(level)

	if strings.EqualFold(c.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// openSession wires the services for the terminal user. Credentials persist
// in the configured storage between invocations.
func openSession(cmd *cobra.Command) (*services.Set, func(), error) {
	store, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := apiclient.New(store.WithPrefix("cli:"), apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
		OnAuthExpired: func(_ context.Context) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Your session has expired. Run `merchke login` to sign in again.")
		},
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}
	return services.NewSet(endpoints.New(client), logger), closeFn, nil
}

// present turns err into the message shown to the terminal user.
func present(err error) error {
	if err == nil {
		return nil
	}
	logger.WithError(err).Debug("command failed")

	var validation *forms.ValidationError
	if errors.As(err, &validation) && len(validation.Fields) > 1 {
		lines := make([]string, 0, len(validation.Fields)+1)
		lines = append(lines, validation.UserMessage()+":")
		for _, f := range validation.Fields {
			lines = append(lines, "  "+f.Message)
		}
		return errors.New(strings.Join(lines, "\n"))
	}
	return errors.New(apiclient.UserMessage(err))
}
