//go:build integration

package postgresengine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/testutil/postgreswrapper"
)

func Test_CreateBook_AndReadBack(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	two := 2
	fields := ledger.BookFields{
		Title:       "Clean Code",
		Author:      "Robert C. Martin",
		ISBN:        "978-0-13-235088-4",
		Category:    "Technology",
		Quantity:    3,
		Available:   &two,
		Description: "A handbook of agile software craftsmanship",
	}

	// act
	created, err := store.CreateBook(ctx, fields)

	// assert
	require.NoError(t, err, "Creating a book should succeed")
	assert.Positive(t, created.ID)
	assert.Equal(t, 2, created.Available, "Should keep an explicit availability")

	byID, err := store.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, byID.Title)

	byISBN, err := store.FindBookByISBN(ctx, "978-0-13-235088-4")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byISBN.ID)

	_, err = store.GetBook(ctx, created.ID+100)
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)
}

func Test_UpdateBook_KeepsCopiesOnLoan(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Release It!", 3)
	user := givenUserInDB(t, store, "john_doe")
	_, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)
	_, err = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)

	// act
	grown, growErr := store.UpdateBook(ctx, book.ID, ledger.BookChanges{Title: ptrTo("Release It! 2nd Edition"), Quantity: ptrTo(5)})
	_, shrinkErr := store.UpdateBook(ctx, book.ID, ledger.BookChanges{Quantity: ptrTo(1)})
	renamed, renameErr := store.UpdateBook(ctx, book.ID, ledger.BookChanges{Category: ptrTo("Technology")})

	// assert
	require.NoError(t, growErr)
	assert.Equal(t, 3, grown.Available, "Should add the new copies to the shelf")
	assert.Equal(t, "Release It! 2nd Edition", grown.Title)
	require.NoError(t, renameErr)
	assert.Equal(t, 5, renamed.Quantity, "Should keep the quantity when it is not changed")
	assert.Equal(t, "Unknown", renamed.Author, "Should keep the author when it is not changed")
	assert.Equal(t, "Release It! 2nd Edition", renamed.Title)
	assert.ErrorIs(t, shrinkErr, ledger.ErrQuantityBelowLentCopies, "Should not drop copies that are on loan")
}

func Test_DeleteBook_CascadesToLoans(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Accelerate", 2)
	user := givenUserInDB(t, store, "jane_smith")
	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)

	// act
	deleteErr := store.DeleteBook(ctx, book.ID)
	secondDeleteErr := store.DeleteBook(ctx, book.ID)

	// assert
	require.NoError(t, deleteErr)
	assert.ErrorIs(t, secondDeleteErr, ledger.ErrBookNotFound)

	_, err = store.GetLoan(ctx, loan.ID)
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound, "Should delete the loans of the book")
}

func Test_CreateUser_Error_OnDuplicateUsername(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenUserInDB(t, store, "john_doe")

	// act
	_, err := store.CreateUser(ctx, ledger.UserFields{Username: "john_doe"}, "hash")

	// assert
	assert.ErrorIs(t, err, ledger.ErrDuplicateUsername, "Should map the unique violation")
}

func Test_UpdateUser_AndPassword(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	user := givenUserInDB(t, store, "john_doe")
	givenUserInDB(t, store, "jane_smith")

	// act
	updated, updateErr := store.UpdateUser(ctx, user.ID, ledger.UserChanges{Email: ptrTo("john@library.com"), FirstName: ptrTo("John"), IsStaff: ptrTo(true)})
	passwordErr := store.SetPasswordHash(ctx, user.ID, "new-hash")
	_, renameErr := store.UpdateUser(ctx, user.ID, ledger.UserChanges{Username: ptrTo("jane_smith")})
	unknownErr := store.SetPasswordHash(ctx, user.ID+100, "new-hash")

	// assert
	require.NoError(t, updateErr)
	assert.Equal(t, "John", updated.FirstName)
	assert.True(t, updated.IsStaff)
	assert.Equal(t, "john_doe", updated.Username, "Should keep the username when it is not changed")
	assert.NoError(t, passwordErr)
	assert.ErrorIs(t, renameErr, ledger.ErrDuplicateUsername)
	assert.ErrorIs(t, unknownErr, ledger.ErrUserNotFound)

	reloaded, err := store.FindUserByUsername(ctx, "john_doe")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)
}

func Test_DeleteUser_RestocksOpenLoans(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "The Phoenix Project", 2)
	leaving := givenUserInDB(t, store, "bob_wilson")
	staying := givenUserInDB(t, store, "alice_johnson")

	open, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: leaving.ID})
	require.NoError(t, err)
	closed, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: leaving.ID})
	require.NoError(t, err)
	_, err = store.ReturnLoan(ctx, closed.ID, ledger.Actor{UserID: leaving.ID})
	require.NoError(t, err)
	_, err = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: staying.ID})
	require.NoError(t, err)

	// act
	deleteErr := store.DeleteUser(ctx, leaving.ID)

	// assert
	require.NoError(t, deleteErr)

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Available, "Should put the open loan's copy back on the shelf")

	_, err = store.GetLoan(ctx, open.ID)
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound, "Should delete the loans of the user")

	loans, err := store.ListLoans(ctx, ledger.LoanFilter{})
	require.NoError(t, err)
	assert.Len(t, loans, 1, "Should keep the loans of other users")

	assert.ErrorIs(t, store.DeleteUser(ctx, leaving.ID), ledger.ErrUserNotFound)
}

func Test_DeleteUser_ConcurrentlyWithReturn_RestocksOnce(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	postgreswrapper.CleanUp(t, wrapper)

	for round := 0; round < 10; round++ {
		// arrange
		book := givenBookInDB(t, store, fmt.Sprintf("Accelerate %d", round), 2)
		user := givenUserInDB(t, store, fmt.Sprintf("leaving_reader_%d", round))
		loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
		require.NoError(t, err)

		var deleteErr, returnErr error
		var wg sync.WaitGroup
		start := make(chan struct{})

		// act
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			deleteErr = store.DeleteUser(ctx, user.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, returnErr = store.ReturnLoan(ctx, loan.ID, ledger.Actor{UserID: user.ID})
		}()

		close(start)
		wg.Wait()

		// assert
		require.NoError(t, deleteErr, "Deleting the user should succeed")
		if returnErr != nil {
			assert.ErrorIs(t, returnErr, ledger.ErrLoanNotFound, "Should only miss the loan when the delete won")
		}

		reloaded, err := store.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.Available, "Should put the copy back exactly once")
	}
}

func Test_DeleteUser_ConcurrentlyWithBorrow_LosesNoCopy(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	postgreswrapper.CleanUp(t, wrapper)

	for round := 0; round < 10; round++ {
		// arrange
		book := givenBookInDB(t, store, fmt.Sprintf("Team Topologies %d", round), 3)
		user := givenUserInDB(t, store, fmt.Sprintf("quitting_reader_%d", round))
		_, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
		require.NoError(t, err)

		var deleteErr, borrowErr error
		var wg sync.WaitGroup
		start := make(chan struct{})

		// act
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			deleteErr = store.DeleteUser(ctx, user.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, borrowErr = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
		}()

		close(start)
		wg.Wait()

		// assert
		require.NoError(t, deleteErr, "Deleting the user should succeed")
		if borrowErr != nil {
			assert.ErrorIs(t, borrowErr, ledger.ErrUserNotFound, "Should only reject the borrow when the delete won")
		}

		reloaded, err := store.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, reloaded.Available, "Should have every copy back on the shelf")

		userID := user.ID
		loans, err := store.ListLoans(ctx, ledger.LoanFilter{UserID: &userID})
		require.NoError(t, err)
		assert.Empty(t, loans, "Should leave no loan of the deleted user")
	}
}

func Test_Migrate_IsIdempotent(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	// act
	err := wrapper.Store().Migrate(ctx)

	// assert
	assert.NoError(t, err, "Applying the schema twice should succeed")
	assert.NoError(t, wrapper.Store().Ping(ctx))
}
