package removebook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/removebook"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func Test_CommandHandler_Handle_Success_CascadesLoans(t *testing.T) {
	// arrange
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})
	book := store.AddBook("1984", 2, 2)
	_, err := store.BorrowBook(context.Background(), ledger.BorrowRequest{BookID: book.ID, UserID: member.ID})
	require.NoError(t, err)

	// act
	_, _, err = removebook.NewCommandHandler(store).Handle(context.Background(), removebook.BuildCommand(ledger.Actor{UserID: 9, IsStaff: true}, book.ID))

	// assert
	require.NoError(t, err, "Should delete the book")

	_, err = store.GetBook(context.Background(), book.ID)
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)

	loans, err := store.ListLoans(context.Background(), ledger.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans, "Should delete the book's loans")
}

func Test_CommandHandler_Handle_Error_NotStaff(t *testing.T) {
	store := memledger.New()
	book := store.AddBook("1984", 2, 2)

	_, _, err := removebook.NewCommandHandler(store).Handle(context.Background(), removebook.BuildCommand(ledger.Actor{UserID: 3}, book.ID))

	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
}

func Test_CommandHandler_Handle_Error_BookNotFound(t *testing.T) {
	store := memledger.New()

	_, _, err := removebook.NewCommandHandler(store).Handle(context.Background(), removebook.BuildCommand(ledger.Actor{UserID: 9, IsStaff: true}, 5))

	assert.ErrorIs(t, err, ledger.ErrBookNotFound)
}
