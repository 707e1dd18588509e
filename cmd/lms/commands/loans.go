package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/client"
	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
)

const (
	envAPIURL      = "LMS_API_URL"
	envAPIUsername = "LMS_API_USERNAME"
	envAPIPassword = "LMS_API_PASSWORD"

	defaultAPIURL = "http://localhost:8000"
)

var (
	// Loans flags
	apiURL        string
	apiUsername   string
	apiPassword   string
	loanStatus    string
	loanUser      int64
	borrowFor     int64
	borrowDueDate string
)

// loansCmd groups the client commands
var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List, borrow and return loans on a running server",
	Long: `List, borrow and return loans through the REST API of a running server.

Credentials are taken from --username/--password or from ` + envAPIUsername + `/` + envAPIPassword + `.

Subcommands:
  list    - List loans, optionally filtered by user and status
  borrow  - Borrow a book
  return  - Return a loan`,
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans",
	Long: `List loans.

Examples:
  lms loans list                    # All loans
  lms loans list --status borrowed  # Open loans only
  lms loans list --user 7           # Loans of user 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient(cmd.Context())
		if err != nil {
			return err
		}

		filter := client.LoanFilter{Status: loanStatus}
		if cmd.Flags().Changed("user") {
			filter.User = &loanUser
		}

		return listLoans(cmd.Context(), c, filter, os.Stdout)
	},
}

var loansBorrowCmd = &cobra.Command{
	Use:   "borrow <book-id>",
	Short: "Borrow a book",
	Long: `Borrow a copy of a book. Staff can borrow on behalf of another user with --for.

Examples:
  lms loans borrow 3                       # Due after the default loan period
  lms loans borrow 3 --due 2025-12-24      # Due on a given day
  lms loans borrow 3 --for 7               # Staff only: lend to user 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0])
		if err != nil {
			return err
		}

		input := client.BorrowInput{Book: bookID}
		if cmd.Flags().Changed("for") {
			input.User = &borrowFor
		}

		if borrowDueDate != "" {
			due, parseErr := time.Parse(time.DateOnly, borrowDueDate)
			if parseErr != nil {
				return fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", borrowDueDate)
			}
			input.DueDate = &due
		}

		c, err := loggedInClient(cmd.Context())
		if err != nil {
			return err
		}

		return borrowBook(cmd.Context(), c, input)
	},
}

var loansReturnCmd = &cobra.Command{
	Use:   "return <loan-id>",
	Short: "Return a loan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loanID, err := parseID(args[0])
		if err != nil {
			return err
		}

		c, err := loggedInClient(cmd.Context())
		if err != nil {
			return err
		}

		return returnLoan(cmd.Context(), c, loanID)
	},
}

func init() {
	loansCmd.PersistentFlags().StringVar(&apiURL, "server", envOr(envAPIURL, defaultAPIURL), "Base URL of the API ("+envAPIURL+")")
	loansCmd.PersistentFlags().StringVarP(&apiUsername, "username", "u", os.Getenv(envAPIUsername), "Username ("+envAPIUsername+")")
	loansCmd.PersistentFlags().StringVarP(&apiPassword, "password", "p", os.Getenv(envAPIPassword), "Password ("+envAPIPassword+")")

	loansListCmd.Flags().StringVar(&loanStatus, "status", "", "Filter by status: borrowed or returned")
	loansListCmd.Flags().Int64Var(&loanUser, "user", 0, "Filter by user id")

	loansBorrowCmd.Flags().Int64Var(&borrowFor, "for", 0, "Borrow on behalf of this user id (staff only)")
	loansBorrowCmd.Flags().StringVar(&borrowDueDate, "due", "", "Due date as YYYY-MM-DD")

	loansCmd.AddCommand(loansListCmd, loansBorrowCmd, loansReturnCmd)
	rootCmd.AddCommand(loansCmd)
}

func loggedInClient(ctx context.Context) (*client.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if apiUsername == "" {
		return nil, fmt.Errorf("no username given, use --username or %s", envAPIUsername)
	}

	c := client.New(apiURL)
	if _, err := c.Login(ctx, apiUsername, apiPassword); err != nil {
		return nil, err
	}

	return c, nil
}

func listLoans(ctx context.Context, c *client.Client, filter client.LoanFilter, w io.Writer) error {
	loans, err := c.ListLoans(ctx, filter)
	if err != nil {
		return err
	}

	if len(loans) == 0 {
		output.Info("no loans found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tBOOK\tUSER\tDUE\tSTATUS\tOVERDUE")
	_, _ = fmt.Fprintln(tw, "--\t----\t----\t---\t------\t-------")

	for _, loan := range loans {
		overdue := "-"
		if loan.DaysOverdue > 0 {
			overdue = strconv.Itoa(loan.DaysOverdue) + "d"
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %s\t%s\n",
			loan.ID,
			loan.BookTitle,
			loan.Username,
			loan.DueDate.Format(time.DateOnly),
			output.LoanStatusIcon(loan.Status, loan.DaysOverdue),
			loan.Status,
			overdue,
		)
	}

	return tw.Flush()
}

func borrowBook(ctx context.Context, c *client.Client, input client.BorrowInput) error {
	loan, err := c.Borrow(ctx, input)
	if err != nil {
		return err
	}

	output.Success("loan %d: %q borrowed by %s, due %s", loan.ID, loan.BookTitle, loan.Username, loan.DueDate.Format(time.DateOnly))

	return nil
}

func returnLoan(ctx context.Context, c *client.Client, loanID int64) error {
	loan, err := c.ReturnLoan(ctx, loanID)
	if err != nil {
		return err
	}

	output.Success("loan %d: %q returned", loan.ID, loan.BookTitle)

	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}

	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
