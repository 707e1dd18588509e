//go:build integration

package postgresengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
)

func givenBookInDB(t testing.TB, store *postgresengine.Store, title string, quantity int) ledger.Book {
	t.Helper()

	book, err := store.CreateBook(context.Background(), ledger.BookFields{Title: title, Author: "Unknown", Quantity: quantity})
	require.NoError(t, err, "error in arranging test data")

	return book
}

func givenUserInDB(t testing.TB, store *postgresengine.Store, username string) ledger.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), ledger.UserFields{Username: username, Email: username + "@university.edu"}, "hash")
	require.NoError(t, err, "error in arranging test data")

	return user
}

func ptrTo[T any](v T) *T {
	return &v
}
