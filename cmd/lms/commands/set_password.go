package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/setpassword"
)

// Exit codes of set-password besides 1 for usage and other errors.
const (
	exitUserNotFound      = 2
	exitPasswordsMismatch = 3
)

var errPasswordsMismatch = errors.New("passwords do not match, aborting")

// setPasswordCmd replaces the password of a user
var setPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Set the password of a user",
	Long: `Set the password of a user. The new password is read twice from stdin.

Exit codes:
  1  usage or other error
  2  the user does not exist
  3  the passwords do not match`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *postgresengine.Store) error {
			return runSetPassword(ctx, store, auth.NewBcryptHasher(0), args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
		})
	},
}

func init() {
	rootCmd.AddCommand(setPasswordCmd)
}

func runSetPassword(
	ctx context.Context,
	store setpassword.Store,
	hasher setpassword.PasswordHasher,
	username string,
	in io.Reader,
	prompt io.Writer,
) error {
	if _, err := store.FindUserByUsername(ctx, strings.TrimSpace(username)); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return exitCodeError{code: exitUserNotFound, err: fmt.Errorf("user %q does not exist", username)}
		}

		return err
	}

	reader := bufio.NewReader(in)

	password, err := readLine(reader, prompt, fmt.Sprintf("Enter new password for '%s': ", username))
	if err != nil {
		return err
	}

	confirmation, err := readLine(reader, prompt, "Confirm password: ")
	if err != nil {
		return err
	}

	if password != confirmation {
		return exitCodeError{code: exitPasswordsMismatch, err: errPasswordsMismatch}
	}

	handler := setpassword.NewCommandHandler(store, hasher)
	if _, _, err = handler.Handle(ctx, setpassword.BuildCommand(username, password)); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return exitCodeError{code: exitUserNotFound, err: err}
		}

		return err
	}

	output.Success("password updated for user '%s'", username)

	return nil
}

func readLine(reader *bufio.Reader, prompt io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(prompt, label)

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}
