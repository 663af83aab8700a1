// Command casectl runs operator tasks against the casetrack database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"casetrack/internal/app"
	"casetrack/internal/audit"
	jwttoken "casetrack/internal/jwt_token"
	"casetrack/internal/platform/kafka"
	"casetrack/internal/platform/logger"
)

var (
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "casectl",
	Short:         "Operator tasks for casetrack",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if databaseURL == "" {
			return errors.New("a database is required: set DATABASE_URL or --database-url")
		}
		return nil
	},
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(seedCmd, createOfficerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withServices opens the database, wires the services and flushes audit
// events once fn returns.
func withServices(ctx context.Context, fn func(svcs *app.Services) error) error {
	log := logger.NewWithWriter(os.Stderr, logLevel)
	stores, err := app.OpenStores(ctx, databaseURL, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	publisher := kafka.NewLogPublisher(log)
	auditPublisher := audit.NewPublisher(64, log)
	worker := audit.NewWorker(audit.NewTopicSink(publisher, "casetrack.audit"), auditPublisher.Inbox(), log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(workerCtx)
	}()
	defer func() {
		stopWorker()
		<-done
	}()

	svcs := app.NewServices(stores, app.Deps{
		Logger:             log,
		Audit:              auditPublisher,
		Publisher:          publisher,
		NotificationsTopic: "casetrack.notifications",
		Tokens:             jwttoken.NewJWTService(os.Getenv("JWT_SIGNING_KEY"), "casetrack", "casetrack-api"),
		TokenTTL:           time.Hour,
	})
	return fn(svcs)
}

