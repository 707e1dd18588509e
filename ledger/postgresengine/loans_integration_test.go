//go:build integration

package postgresengine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/testutil/postgreswrapper"
)

func Test_BorrowBook_DecrementsAvailability(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Clean Code", 3)
	user := givenUserInDB(t, store, "john_doe")

	// act
	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})

	// assert
	require.NoError(t, err, "Borrowing an available copy should succeed")
	assert.Equal(t, ledger.LoanBorrowed, loan.Status)
	assert.Equal(t, "john_doe", loan.Username, "Should join the borrower")
	assert.Equal(t, "Clean Code", loan.BookTitle, "Should join the book")
	assert.True(t, loan.Fine.IsZero(), "Should start without a fine")
	assert.WithinDuration(t, loan.BorrowDate.Add(ledger.DefaultLoanPeriod), loan.DueDate, time.Second, "Should default to 14 days")

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Available, "Should take one copy off the shelf")
}

func Test_BorrowBook_Error_WhenNoCopyAvailable(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "1984", 1)
	user := givenUserInDB(t, store, "john_doe")
	_, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)

	// act
	_, err = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotAvailable, "Should reject the second borrow")

	loans, listErr := store.ListLoans(ctx, ledger.LoanFilter{})
	require.NoError(t, listErr)
	assert.Len(t, loans, 1, "Should not create a loan for the rejected borrow")
}

func Test_BorrowBook_Error_WhenBookOrUserIsUnknown(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "1984", 1)
	user := givenUserInDB(t, store, "john_doe")

	// act
	_, unknownBookErr := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID + 100, UserID: user.ID})
	_, unknownUserErr := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID + 100})

	// assert
	assert.ErrorIs(t, unknownBookErr, ledger.ErrBookNotFound)
	assert.ErrorIs(t, unknownUserErr, ledger.ErrUserNotFound)

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Available, "Should roll back the failed borrow")
}

func Test_BorrowBook_Concurrently_NeverOversells(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	const copies = 3
	const borrowers = 10
	book := givenBookInDB(t, store, "The Pragmatic Programmer", copies)

	users := make([]ledger.User, borrowers)
	for i := range users {
		users[i] = givenUserInDB(t, store, "reader_"+string(rune('a'+i)))
	}

	var succeeded, unavailable atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	// act
	for _, user := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start

			_, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: userID})
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, ledger.ErrBookNotAvailable):
				unavailable.Add(1)
			}
		}(user.ID)
	}

	close(start)
	wg.Wait()

	// assert
	assert.Equal(t, int32(copies), succeeded.Load(), "Should lend exactly as many copies as exist")
	assert.Equal(t, int32(borrowers-copies), unavailable.Load(), "Should reject the rest as unavailable")

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Available, "Should never drop below zero")

	open := ledger.LoanBorrowed
	loans, err := store.ListLoans(ctx, ledger.LoanFilter{Status: &open})
	require.NoError(t, err)
	assert.Len(t, loans, copies, "Should keep open loans and availability in step")
}

func Test_ReturnLoan_Concurrently_RestocksOnce(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Refactoring", 2)
	user := givenUserInDB(t, store, "jane_smith")
	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)

	actor := ledger.Actor{UserID: user.ID}
	var succeeded, alreadyReturned atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	// act
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, returnErr := store.ReturnLoan(ctx, loan.ID, actor)
			switch {
			case returnErr == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, returnErr, ledger.ErrLoanAlreadyReturned):
				alreadyReturned.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	// assert
	assert.Equal(t, int32(1), succeeded.Load(), "Should accept exactly one return")
	assert.Equal(t, int32(4), alreadyReturned.Load(), "Should reject every other return")

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Available, "Should put the copy back exactly once")
}

func Test_ReturnLoan_ClosesTheLoan(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Domain-Driven Design", 5)
	user := givenUserInDB(t, store, "bob_wilson")
	staff := ledger.Actor{UserID: user.ID + 1000, IsStaff: true}
	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: user.ID})
	require.NoError(t, err)

	// act
	returned, err := store.ReturnLoan(ctx, loan.ID, staff)

	// assert
	require.NoError(t, err, "Staff should return any loan")
	assert.Equal(t, ledger.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate, "Should stamp the return date")
	assert.False(t, returned.ReturnDate.Before(returned.BorrowDate), "Should not return before borrowing")

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Available, reloaded.Available, "Borrow plus return should leave availability unchanged")
}

func Test_ReturnLoan_Errors(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Working Effectively with Legacy Code", 1)
	owner := givenUserInDB(t, store, "alice_johnson")
	other := givenUserInDB(t, store, "charlie_brown")
	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: owner.ID})
	require.NoError(t, err)

	// act
	_, otherErr := store.ReturnLoan(ctx, loan.ID, ledger.Actor{UserID: other.ID})
	_, unknownErr := store.ReturnLoan(ctx, loan.ID+100, ledger.Actor{UserID: owner.ID})

	// assert
	assert.ErrorIs(t, otherErr, ledger.ErrPermissionDenied, "Should reject returns by other members")
	assert.ErrorIs(t, unknownErr, ledger.ErrLoanNotFound)

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Available, "Should not restock on a rejected return")
}

func Test_Scenario_ThreeCopiesLentAndReturned(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Clean Architecture", 3)
	u1 := givenUserInDB(t, store, "u1")
	u2 := givenUserInDB(t, store, "u2")
	u3 := givenUserInDB(t, store, "u3")
	u4 := givenUserInDB(t, store, "u4")

	// act
	l1, err1 := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: u1.ID})
	_, err2 := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: u2.ID})
	_, err3 := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: u3.ID})
	_, err4 := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: u4.ID})
	_, returnErr := store.ReturnLoan(ctx, l1.ID, ledger.Actor{UserID: u1.ID})
	_, err5 := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: u4.ID})

	// assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NoError(t, err3)
	assert.ErrorIs(t, err4, ledger.ErrBookNotAvailable, "Should reject the fourth borrow")
	assert.NoError(t, returnErr)
	assert.NoError(t, err5, "Should lend the returned copy again")

	reloaded, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Available)
}

func Test_ListLoans_Filters(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	clock := func() time.Time { return now }

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresengine.WithClock(clock))
	defer wrapper.Close()
	store := wrapper.Store()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	book := givenBookInDB(t, store, "Patterns of Enterprise Application Architecture", 5)
	john := givenUserInDB(t, store, "john_doe")
	jane := givenUserInDB(t, store, "jane_smith")

	returned, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: john.ID})
	require.NoError(t, err)
	_, err = store.ReturnLoan(ctx, returned.ID, ledger.Actor{UserID: john.ID})
	require.NoError(t, err)
	_, err = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: john.ID})
	require.NoError(t, err)
	_, err = store.BorrowBook(ctx, ledger.BorrowRequest{BookID: book.ID, UserID: jane.ID, DueDate: now.Add(time.Hour)})
	require.NoError(t, err)

	borrowed := ledger.LoanBorrowed
	returnedStatus := ledger.LoanReturned

	testCases := []struct {
		name     string
		filter   ledger.LoanFilter
		expected int
	}{
		{name: "all", filter: ledger.LoanFilter{}, expected: 3},
		{name: "by user", filter: ledger.LoanFilter{UserID: &john.ID}, expected: 2},
		{name: "by status", filter: ledger.LoanFilter{Status: &borrowed}, expected: 2},
		{name: "by user and status", filter: ledger.LoanFilter{UserID: &john.ID, Status: &returnedStatus}, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			loans, listErr := store.ListLoans(ctx, tc.filter)

			// assert
			require.NoError(t, listErr)
			assert.Len(t, loans, tc.expected)
			for i := 1; i < len(loans); i++ {
				assert.Less(t, loans[i-1].ID, loans[i].ID, "Should order loans by id")
			}
		})
	}
}
