package returnloan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/returnloan"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	store, member, book, loan := givenBorrowedCopy(t)
	handler := returnloan.NewCommandHandler(store)

	// act
	returned, _, err := handler.Handle(context.Background(), returnloan.BuildCommand(member.Actor(), loan.ID))

	// assert
	require.NoError(t, err, "Should return the loan")
	assert.Equal(t, ledger.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate, "Should set the return date")
	assertAvailable(t, store, book.ID, 3)
}

func Test_CommandHandler_Handle_StaffReturnsForMember(t *testing.T) {
	// arrange
	store, _, book, loan := givenBorrowedCopy(t)
	staff := store.AddUser(ledger.User{Username: "admin", IsStaff: true})

	// act
	_, _, err := returnloan.NewCommandHandler(store).Handle(context.Background(), returnloan.BuildCommand(staff.Actor(), loan.ID))

	// assert
	assert.NoError(t, err, "Should allow staff to return any loan")
	assertAvailable(t, store, book.ID, 3)
}

func Test_CommandHandler_Handle_Error_OtherMember(t *testing.T) {
	// arrange
	store, _, book, loan := givenBorrowedCopy(t)
	other := store.AddUser(ledger.User{Username: "jane_smith"})

	// act
	_, _, err := returnloan.NewCommandHandler(store).Handle(context.Background(), returnloan.BuildCommand(other.Actor(), loan.ID))

	// assert
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	assertAvailable(t, store, book.ID, 2)
}

func Test_CommandHandler_Handle_Error_ReturnedTwice(t *testing.T) {
	// arrange
	store, member, book, loan := givenBorrowedCopy(t)
	handler := returnloan.NewCommandHandler(store)
	_, _, err := handler.Handle(context.Background(), returnloan.BuildCommand(member.Actor(), loan.ID))
	require.NoError(t, err)

	// act
	_, _, err = handler.Handle(context.Background(), returnloan.BuildCommand(member.Actor(), loan.ID))

	// assert
	assert.ErrorIs(t, err, ledger.ErrLoanAlreadyReturned, "Should reject the second return")
	assertAvailable(t, store, book.ID, 3)
}

func Test_CommandHandler_Handle_Error_LoanNotFound(t *testing.T) {
	store := memledger.New()

	_, _, err := returnloan.NewCommandHandler(store).Handle(context.Background(), returnloan.BuildCommand(ledger.Actor{UserID: 1}, 404))

	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)
}

func givenBorrowedCopy(t *testing.T) (*memledger.Store, ledger.User, ledger.Book, ledger.LoanDetails) {
	t.Helper()

	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})
	book := store.AddBook("1984", 3, 3)

	loan, err := store.BorrowBook(context.Background(), ledger.BorrowRequest{BookID: book.ID, UserID: member.ID, DueDate: time.Time{}})
	require.NoError(t, err)

	return store, member, book, loan
}

func assertAvailable(t *testing.T, store *memledger.Store, bookID int64, expected int) {
	t.Helper()

	book, err := store.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, expected, book.Available)
}
