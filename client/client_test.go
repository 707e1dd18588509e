package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-loans-go/client"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/service/httpapi"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func givenServer(t *testing.T) (*httptest.Server, *memledger.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("admin123456")
	require.NoError(t, err)

	store := memledger.New()
	store.AddUser(ledger.User{Username: "admin", Email: "admin@library.com", IsStaff: true, PasswordHash: hash})

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	server := httptest.NewServer(httpapi.NewRouter(httpapi.Dependencies{
		Handlers: httpapi.NewCoreHandlers(store, hasher),
		Auth:     auth.NewAuthenticator(store, hasher, issuer),
		Health:   store,
	}))
	t.Cleanup(server.Close)

	return server, store
}

func Test_Client_FullLoanCycle(t *testing.T) {
	// arrange
	server, _ := givenServer(t)
	ctx := context.Background()
	c := client.New(server.URL)

	_, err := c.Login(ctx, "admin", "admin123456")
	require.NoError(t, err, "Should log in")

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.True(t, me.IsStaff)

	book, err := c.CreateBook(ctx, client.BookInput{Title: "Clean Code", Author: "Robert C. Martin", Category: "Technology", Quantity: 3})
	require.NoError(t, err)

	password := "password123"
	member, err := c.CreateUser(ctx, client.UserInput{Username: "john_doe", Password: &password})
	require.NoError(t, err)

	due := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)

	// act
	loan, err := c.Borrow(ctx, client.BorrowInput{Book: book.ID, User: &member.ID, DueDate: &due})
	require.NoError(t, err)

	returned, err := c.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	// assert
	assert.Equal(t, member.ID, loan.User, "Should lend to the named member")
	assert.True(t, due.Equal(loan.DueDate), "Should keep the due date")
	assert.True(t, loan.Fine.IsZero(), "Should carry a zero fine")
	assert.Equal(t, "returned", returned.Status)
	require.NotNil(t, returned.ReturnDate)

	loans, err := c.ListLoans(ctx, client.LoanFilter{User: &member.ID, Status: "returned"})
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	reloaded, err := c.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Available, "Should restore availability")
}

func Test_Client_APIError(t *testing.T) {
	// arrange
	server, store := givenServer(t)
	ctx := context.Background()
	book := store.AddBook("Dune", 1, 1)
	c := client.New(server.URL)

	_, err := c.Login(ctx, "admin", "admin123456")
	require.NoError(t, err)

	loan, err := c.Borrow(ctx, client.BorrowInput{Book: book.ID})
	require.NoError(t, err)
	_, err = c.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	// act
	_, err = c.ReturnLoan(ctx, loan.ID)

	// assert
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr, "Should surface a typed error")
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Loan already returned", apiErr.Detail)
	assert.Equal(t, http.StatusBadRequest, client.StatusOf(err))
}

func Test_Client_Unauthenticated(t *testing.T) {
	server, _ := givenServer(t)

	_, err := client.New(server.URL).ListBooks(context.Background())

	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
}

func Test_Client_Refresh(t *testing.T) {
	server, _ := givenServer(t)
	ctx := context.Background()
	c := client.New(server.URL)

	tokens, err := c.Login(ctx, "admin", "admin123456")
	require.NoError(t, err)

	access, err := c.Refresh(ctx)

	require.NoError(t, err)
	assert.NotEqual(t, tokens.Access, access, "Should issue a new access token")
	assert.Equal(t, access, c.Tokens().Access)
}

func Test_Client_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := client.New(server.URL).ListBooks(context.Background())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Detail)
}
