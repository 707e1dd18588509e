package loadgen_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/client"
	"github.com/AntonStoeckl/library-loans-go/cmd/lms/loadgen"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/service/httpapi"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func givenMembers(t *testing.T, store *memledger.Store, count int) ([]loadgen.Member, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	server := httptest.NewServer(httpapi.NewRouter(httpapi.Dependencies{
		Handlers: httpapi.NewCoreHandlers(store, hasher),
		Auth:     auth.NewAuthenticator(store, hasher, issuer),
		Health:   store,
	}))
	t.Cleanup(server.Close)

	members := make([]loadgen.Member, count)
	for i := range members {
		user := store.AddUser(ledger.User{Username: fmt.Sprintf("reader_%d", i), PasswordHash: hash})

		c := client.New(server.URL)
		_, err = c.Login(context.Background(), user.Username, "password123")
		require.NoError(t, err)

		members[i] = loadgen.Member{UserID: user.ID, API: c}
	}

	return members, server
}

func Test_LoadGenerator_KeepsAvailabilityConsistent(t *testing.T) {
	// arrange
	store := memledger.New()
	books := []ledger.Book{store.AddBook("Clean Code", 2, 2), store.AddBook("Refactoring", 1, 1)}
	members, server := givenMembers(t, store, 5)

	lg, err := loadgen.NewLoadGenerator(members, loadgen.Config{Rate: 200, BorrowWeight: 70}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// act
	startErr := lg.Start(ctx)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	stopErr := lg.Stop(stopCtx)
	server.Close() // waits for requests the server is still handling

	// assert
	assert.ErrorIs(t, startErr, context.DeadlineExceeded, "Should run until the context ends")
	assert.NoError(t, stopErr, "Should drain the running scenarios")

	stats := lg.Stats()
	assert.Positive(t, stats.Requests, "Should have sent requests")
	assert.Zero(t, stats.Errors, "Should only see expected rejections")

	borrowed := ledger.LoanBorrowed
	for _, book := range books {
		reloaded, getErr := store.GetBook(context.Background(), book.ID)
		require.NoError(t, getErr)

		open, listErr := store.ListLoans(context.Background(), ledger.LoanFilter{Status: &borrowed})
		require.NoError(t, listErr)

		onLoan := 0
		for _, loan := range open {
			if loan.BookID == book.ID {
				onLoan++
			}
		}

		assert.GreaterOrEqual(t, reloaded.Available, 0, "Should never oversell")
		assert.Equal(t, reloaded.Quantity, reloaded.Available+onLoan, "Should match availability and open loans")
	}
}

func Test_NewLoadGenerator_RejectsInvalidConfig(t *testing.T) {
	member := loadgen.Member{UserID: 1, API: client.New("http://localhost")}

	testCases := []struct {
		name    string
		members []loadgen.Member
		config  loadgen.Config
	}{
		{name: "no members", config: loadgen.Config{Rate: 1, BorrowWeight: 50}},
		{name: "zero rate", members: []loadgen.Member{member}, config: loadgen.Config{Rate: 0, BorrowWeight: 50}},
		{name: "weight above 100", members: []loadgen.Member{member}, config: loadgen.Config{Rate: 1, BorrowWeight: 101}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadgen.NewLoadGenerator(tc.members, tc.config, nil)

			assert.ErrorIs(t, err, loadgen.ErrInvalidConfig)
		})
	}
}

func Test_LoadGenerator_Error_OnEmptyCatalog(t *testing.T) {
	// arrange
	members, _ := givenMembers(t, memledger.New(), 1)
	lg, err := loadgen.NewLoadGenerator(members, loadgen.Config{Rate: 10, BorrowWeight: 50}, nil)
	require.NoError(t, err)

	// act
	startErr := lg.Start(context.Background())

	// assert
	assert.ErrorIs(t, startErr, loadgen.ErrInvalidConfig, "Should refuse to run without books")
}
