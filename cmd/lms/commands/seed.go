package commands

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/addbook"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/registeruser"
)

//go:embed seed_data.json
var defaultSeedData []byte

var errInvalidSeedFile = errors.New("invalid seed file")

var (
	// Seed flags
	seedFile string
)

// seedCmd loads sample data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample books and users",
	Long: `Populate the database with sample books and users.

Books are matched by ISBN and users by username, existing records are left alone.

Examples:
  lms seed                     # Load the built-in sample data
  lms seed --file library.json # Load books and users from a JSON file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data := defaultSeedData
		if seedFile != "" {
			raw, err := os.ReadFile(seedFile)
			if err != nil {
				return err
			}
			data = raw
		}

		seed, err := parseSeedData(data)
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *postgresengine.Store) error {
			report, seedErr := applySeed(ctx, store, auth.NewBcryptHasher(0), seed)
			if seedErr != nil {
				return seedErr
			}

			output.Success("database population complete: %d books and %d users created", report.booksCreated, report.usersCreated)

			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file with books and users")

	rootCmd.AddCommand(seedCmd)
}

type seedBook struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	Available   *int   `json:"available"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

type seedUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	Password  string `json:"password"`
}

type seedData struct {
	Books []seedBook `json:"books"`
	Users []seedUser `json:"users"`
}

type seedReport struct {
	booksCreated int
	usersCreated int
}

// seedStore is what seeding needs besides the write ports of the handlers.
type seedStore interface {
	addbook.Store
	registeruser.Store
	FindBookByISBN(ctx context.Context, isbn string) (ledger.Book, error)
	FindUserByUsername(ctx context.Context, username string) (ledger.User, error)
}

func parseSeedData(raw []byte) (seedData, error) {
	var data seedData
	if err := jsoniter.ConfigFastest.Unmarshal(raw, &data); err != nil {
		return seedData{}, errors.Join(errInvalidSeedFile, err)
	}

	for i, book := range data.Books {
		if book.ISBN == "" {
			return seedData{}, fmt.Errorf("%w: book %d (%q) has no isbn", errInvalidSeedFile, i, book.Title)
		}
	}

	return data, nil
}

// applySeed creates the missing books and users through the regular command handlers.
// Staff accounts in the seed are created on behalf of a staff actor.
func applySeed(ctx context.Context, store seedStore, hasher auth.BcryptHasher, data seedData) (seedReport, error) {
	var report seedReport
	seeder := ledger.Actor{IsStaff: true}

	addBook := addbook.NewCommandHandler(store)
	registerUser := registeruser.NewCommandHandler(store, hasher)

	output.Section("Adding Books")

	for _, book := range data.Books {
		if _, err := store.FindBookByISBN(ctx, book.ISBN); err == nil {
			output.Muted("book already exists: %s", book.Title)
			continue
		} else if !errors.Is(err, ledger.ErrBookNotFound) {
			return report, err
		}

		fields := ledger.BookFields{
			Title:       book.Title,
			Author:      book.Author,
			ISBN:        book.ISBN,
			Category:    book.Category,
			Quantity:    book.Quantity,
			Available:   book.Available,
			Description: book.Description,
			CoverURL:    book.CoverURL,
		}

		created, _, err := addBook.Handle(ctx, addbook.BuildCommand(seeder, fields))
		if err != nil {
			return report, fmt.Errorf("book %q: %w", book.Title, err)
		}

		output.Success("created book: %s", created.Title)
		report.booksCreated++
	}

	output.Section("Adding Users")

	for _, user := range data.Users {
		if _, err := store.FindUserByUsername(ctx, user.Username); err == nil {
			output.Muted("user already exists: %s", user.Username)
			continue
		} else if !errors.Is(err, ledger.ErrUserNotFound) {
			return report, err
		}

		fields := ledger.UserFields{
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsStaff:   user.IsStaff,
		}

		created, _, err := registerUser.Handle(ctx, registeruser.BuildCommand(&seeder, fields, user.Password))
		if err != nil {
			return report, fmt.Errorf("user %q: %w", user.Username, err)
		}

		output.Success("created user: %s", created.Username)
		report.usersCreated++
	}

	return report, nil
}
