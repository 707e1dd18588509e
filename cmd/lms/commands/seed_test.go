package commands

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func silenceOutput(t *testing.T) {
	t.Helper()
	output.SetOutput(io.Discard)
	t.Cleanup(func() { output.SetOutput(nil) })
}

func Test_ParseSeedData_DefaultData(t *testing.T) {
	// act
	data, err := parseSeedData(defaultSeedData)

	// assert
	require.NoError(t, err, "Should parse the embedded sample data")
	assert.Len(t, data.Books, 10, "Should contain the sample books")
	assert.Len(t, data.Users, 5, "Should contain the sample users")
	assert.Equal(t, "978-0-452-28423-4", data.Books[1].ISBN)
}

func Test_ParseSeedData_Errors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "malformed json", raw: `{"books": [`},
		{name: "book without isbn", raw: `{"books": [{"title": "Untitled", "quantity": 1}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSeedData([]byte(tc.raw))

			assert.ErrorIs(t, err, errInvalidSeedFile)
		})
	}
}

func Test_ApplySeed_CreatesMissingRecordsOnce(t *testing.T) {
	// arrange
	silenceOutput(t)
	ctx := context.Background()
	store := memledger.New()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	data, err := parseSeedData(defaultSeedData)
	require.NoError(t, err)

	// act
	first, firstErr := applySeed(ctx, store, hasher, data)
	second, secondErr := applySeed(ctx, store, hasher, data)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, seedReport{booksCreated: 10, usersCreated: 5}, first, "Should create all sample records")
	assert.Equal(t, seedReport{}, second, "Should skip existing records")

	book, err := store.FindBookByISBN(ctx, "978-0-439-70818-8")
	require.NoError(t, err)
	assert.Equal(t, 7, book.Available, "Should put all copies on the shelf")

	user, err := store.FindUserByUsername(ctx, "john_doe")
	require.NoError(t, err)
	assert.True(t, hasher.Matches(user.PasswordHash, "password123"), "Should store a usable password")
	assert.False(t, user.IsStaff)
}

func Test_ApplySeed_CreatesStaffAccounts(t *testing.T) {
	// arrange
	silenceOutput(t)
	ctx := context.Background()
	store := memledger.New()
	data := seedData{Users: []seedUser{{Username: "librarian", Email: "librarian@library.com", Password: "shelves-and-stacks", IsStaff: true}}}

	// act
	_, err := applySeed(ctx, store, auth.NewBcryptHasher(bcrypt.MinCost), data)

	// assert
	require.NoError(t, err)
	user, err := store.FindUserByUsername(ctx, "librarian")
	require.NoError(t, err)
	assert.True(t, user.IsStaff, "Should keep the staff flag of seeded users")
}

func Test_ApplySeed_Error_OnInvalidBook(t *testing.T) {
	// arrange
	silenceOutput(t)
	data := seedData{Books: []seedBook{{ISBN: "978-0-00-000000-0", Quantity: 1}}}

	// act
	report, err := applySeed(context.Background(), memledger.New(), auth.NewBcryptHasher(bcrypt.MinCost), data)

	// assert
	assert.ErrorIs(t, err, ledger.ErrInvalidBook, "Should reject a book without a title")
	assert.Zero(t, report.booksCreated)
}
