package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/client"
	"github.com/AntonStoeckl/library-loans-go/cmd/lms/loadgen"
	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

var (
	// Loadgen flags
	loadRate         int
	loadBorrowWeight int
	loadDuration     time.Duration
	loadMembers      []string
	loadPassword     string
)

// loadgenCmd drives a running server with borrow and return traffic
var loadgenCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Generate borrow and return traffic against a running server",
	Long: `Generate borrow and return traffic against a running server.

Each member logs in once, then scenarios are started at the given rate until the
duration is over or SIGINT/SIGTERM is received.

Examples:
  lms loadgen --rate 50 --duration 1m
  lms loadgen --members john_doe,jane_smith --password password123`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadgen(cmd.Context())
	},
}

func init() {
	loadgenCmd.Flags().StringVar(&apiURL, "server", envOr(envAPIURL, defaultAPIURL), "Base URL of the API ("+envAPIURL+")")
	loadgenCmd.Flags().IntVar(&loadRate, "rate", 20, "Scenarios started per second")
	loadgenCmd.Flags().IntVar(&loadBorrowWeight, "borrow-weight", 60, "Percentage of scenarios that borrow, the rest return")
	loadgenCmd.Flags().DurationVar(&loadDuration, "duration", 0, "Stop after this duration, 0 runs until interrupted")
	loadgenCmd.Flags().StringSliceVar(&loadMembers, "members",
		[]string{"john_doe", "jane_smith", "bob_wilson", "alice_johnson", "charlie_brown"}, "Usernames to send requests as")
	loadgenCmd.Flags().StringVar(&loadPassword, "password", "password123", "Password shared by all members")

	rootCmd.AddCommand(loadgenCmd)
}

func runLoadgen(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	level := config.Default().LogLevel
	if logLevel != "" {
		parsed, err := config.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		level = parsed
	}
	logger := config.NewLogger(os.Stdout, level)

	members := make([]loadgen.Member, 0, len(loadMembers))
	for _, username := range loadMembers {
		c := client.New(apiURL)
		if _, err := c.Login(ctx, username, loadPassword); err != nil {
			return fmt.Errorf("login of %q failed: %w", username, err)
		}

		me, err := c.Me(ctx)
		if err != nil {
			return err
		}

		members = append(members, loadgen.Member{UserID: me.ID, API: c})
	}

	lg, err := loadgen.NewLoadGenerator(members, loadgen.Config{Rate: loadRate, BorrowWeight: loadBorrowWeight}, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if loadDuration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, loadDuration)
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- lg.Start(runCtx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal, stopping", "signal", sig.String())
	case err = <-errChan:
		if err != nil && runCtx.Err() == nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = lg.Stop(shutdownCtx); err != nil {
		return err
	}

	stats := lg.Stats()
	output.Success("%d requests, %d rejected, %d errors", stats.Requests, stats.Rejected, stats.Errors)

	return nil
}
