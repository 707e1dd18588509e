package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

// Version is set at build time with -ldflags "-X .../commands.Version=...".
var Version = "dev"

var (
	// Global flags, they override the LMS_* environment variables
	dbDSN        string
	dbReplicaDSN string
	dbAdapter    string
	logLevel     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lms",
	Short: "Library management system backend",
	Long: `lms runs the library management REST API and its maintenance tasks.

Books, users and loans are stored in PostgreSQL. Borrowing and returning
keep the available copies of a book consistent under concurrent requests.

Configuration is read from LMS_* environment variables, flags take precedence.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCodeError carries a process exit code other than 1.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	return e.err.Error()
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var coded exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}

	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "PostgreSQL connection URL ("+config.EnvDBDSN+")")
	rootCmd.PersistentFlags().StringVar(&dbReplicaDSN, "db-replica", "", "PostgreSQL replica URL for list queries ("+config.EnvDBReplicaDSN+")")
	rootCmd.PersistentFlags().StringVar(&dbAdapter, "db-adapter", "", "Database adapter: pgx, sql or sqlx ("+config.EnvDBAdapter+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error ("+config.EnvLogLevel+")")
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if dbDSN != "" {
		cfg.DBDSN = dbDSN
	}

	if dbReplicaDSN != "" {
		cfg.DBReplicaDSN = dbReplicaDSN
	}

	if dbAdapter != "" {
		cfg.DBAdapter = dbAdapter
	}

	if logLevel != "" {
		level, levelErr := config.ParseLogLevel(logLevel)
		if levelErr != nil {
			return config.Config{}, levelErr
		}
		cfg.LogLevel = level
	}

	if err = cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}
