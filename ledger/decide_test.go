package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

func Test_DecideBorrow_Success_WhenCopyAvailable(t *testing.T) {
	// arrange
	book := givenBook(3, 2)

	// act
	updated, err := ledger.DecideBorrow(book)

	// assert
	assert.NoError(t, err, "Should allow borrowing an available copy")
	assert.Equal(t, 1, updated.Available, "Should decrement availability by one")
	assert.Equal(t, 3, updated.Quantity, "Should not touch the quantity")
}

func Test_DecideBorrow_Error_WhenNoCopyAvailable(t *testing.T) {
	// arrange
	book := givenBook(3, 0)

	// act
	updated, err := ledger.DecideBorrow(book)

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotAvailable, "Should reject borrowing without available copies")
	assert.Equal(t, book, updated, "Should leave the book unchanged")
}

func Test_DecideBorrow_Error_WhenAvailabilityIsNegative(t *testing.T) {
	// arrange
	book := givenBook(1, -1)

	// act
	updated, err := ledger.DecideBorrow(book)

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotAvailable, "Should reject borrowing")
	assert.Equal(t, -1, updated.Available, "Should not decrement any further")
}

func Test_DecideBorrow_Repeatedly_NeverDropsBelowZero(t *testing.T) {
	// arrange
	book := givenBook(4, 4)
	succeeded := 0

	// act
	for i := 0; i < 10; i++ {
		var err error
		book, err = ledger.DecideBorrow(book)
		if err == nil {
			succeeded++
		}
	}

	// assert
	assert.Equal(t, 4, succeeded, "Should allow exactly as many borrows as copies")
	assert.Equal(t, 0, book.Available, "Should end with no available copy")
}

func Test_DecideReturn_Success_ForBorrower(t *testing.T) {
	// arrange
	loan := givenBorrowedLoan(7)

	// act
	err := ledger.DecideReturn(loan, ledger.Actor{UserID: 7})

	// assert
	assert.NoError(t, err, "Should allow the borrower to return the loan")
}

func Test_DecideReturn_Success_ForStaff(t *testing.T) {
	// arrange
	loan := givenBorrowedLoan(7)

	// act
	err := ledger.DecideReturn(loan, ledger.Actor{UserID: 1, IsStaff: true})

	// assert
	assert.NoError(t, err, "Should allow staff to return any loan")
}

func Test_DecideReturn_Error_ForOtherUser(t *testing.T) {
	// arrange
	loan := givenBorrowedLoan(7)

	// act
	err := ledger.DecideReturn(loan, ledger.Actor{UserID: 8})

	// assert
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied, "Should reject returns by other users")
}

func Test_DecideReturn_Error_WhenAlreadyReturned(t *testing.T) {
	// arrange
	loan := givenBorrowedLoan(7)
	loan.Status = ledger.LoanReturned

	// act
	err := ledger.DecideReturn(loan, ledger.Actor{UserID: 7})

	// assert
	assert.ErrorIs(t, err, ledger.ErrLoanAlreadyReturned, "Should reject a second return")
}

func Test_RestockReturnedCopy_IncrementsAvailability(t *testing.T) {
	// arrange
	book := givenBook(3, 1)

	// act
	updated, restocked := ledger.RestockReturnedCopy(book)

	// assert
	assert.True(t, restocked, "Should restock the copy")
	assert.Equal(t, 2, updated.Available, "Should increment availability by one")
}

func Test_RestockReturnedCopy_CapsAtQuantity(t *testing.T) {
	// arrange
	book := givenBook(3, 3)

	// act
	updated, restocked := ledger.RestockReturnedCopy(book)

	// assert
	assert.False(t, restocked, "Should report the capped restock")
	assert.Equal(t, 3, updated.Available, "Should never exceed the quantity")
}

func Test_BorrowThenReturn_LeavesAvailabilityUnchanged(t *testing.T) {
	// arrange
	book := givenBook(5, 3)

	// act
	borrowed, err := ledger.DecideBorrow(book)
	returned, _ := ledger.RestockReturnedCopy(borrowed)

	// assert
	assert.NoError(t, err, "Should borrow")
	assert.Equal(t, book.Available, returned.Available, "Should restore the original availability")
}

func Test_DecideQuantityChange_KeepsCopiesOnLoan(t *testing.T) {
	// arrange
	book := givenBook(5, 2) // 3 on loan

	// act
	grown, growErr := ledger.DecideQuantityChange(book, 8)
	shrunk, shrinkErr := ledger.DecideQuantityChange(book, 3)

	// assert
	assert.NoError(t, growErr, "Should allow growing the stock")
	assert.Equal(t, 5, grown.Available, "Should add the new copies to the shelf")
	assert.NoError(t, shrinkErr, "Should allow shrinking down to the copies on loan")
	assert.Equal(t, 0, shrunk.Available, "Should leave no copy on the shelf")
	assert.Equal(t, 3, shrunk.OnLoan(), "Should keep the copies on loan")
}

func Test_DecideQuantityChange_Error_WhenBelowCopiesOnLoan(t *testing.T) {
	// arrange
	book := givenBook(5, 2)

	// act
	updated, err := ledger.DecideQuantityChange(book, 2)

	// assert
	assert.ErrorIs(t, err, ledger.ErrQuantityBelowLentCopies, "Should reject the change")
	assert.Equal(t, book, updated, "Should leave the book unchanged")
}

func Test_ResolveBorrower(t *testing.T) {
	other := int64(42)
	self := int64(7)

	testCases := []struct {
		name       string
		actor      ledger.Actor
		requested  *int64
		expectedID int64
		expectErr  error
	}{
		{name: "no target borrows for the actor", actor: ledger.Actor{UserID: 7}, requested: nil, expectedID: 7},
		{name: "explicit self target", actor: ledger.Actor{UserID: 7}, requested: &self, expectedID: 7},
		{name: "staff borrows for another user", actor: ledger.Actor{UserID: 7, IsStaff: true}, requested: &other, expectedID: 42},
		{name: "member borrows for another user", actor: ledger.Actor{UserID: 7}, requested: &other, expectErr: ledger.ErrPermissionDenied},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			borrowerID, err := ledger.ResolveBorrower(tc.actor, tc.requested)

			// assert
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedID, borrowerID)
		})
	}
}

func Test_ResolveDueDate(t *testing.T) {
	borrowedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("defaults to the loan period", func(t *testing.T) {
		dueDate, err := ledger.ResolveDueDate(borrowedAt, time.Time{}, ledger.DefaultLoanPeriod)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), dueDate, "Should be due 14 days later")
	})

	t.Run("keeps an explicit due date", func(t *testing.T) {
		requested := borrowedAt.Add(48 * time.Hour)

		dueDate, err := ledger.ResolveDueDate(borrowedAt, requested, ledger.DefaultLoanPeriod)

		assert.NoError(t, err)
		assert.Equal(t, requested, dueDate)
	})

	t.Run("rejects a due date in the past", func(t *testing.T) {
		_, err := ledger.ResolveDueDate(borrowedAt, borrowedAt.Add(-time.Hour), ledger.DefaultLoanPeriod)

		assert.ErrorIs(t, err, ledger.ErrInvalidDueDate)
	})
}

func givenBook(quantity, available int) ledger.Book {
	return ledger.Book{
		ID:        1,
		Title:     "Learning Domain-Driven Design",
		Author:    "Vlad Khononov",
		Quantity:  quantity,
		Available: available,
	}
}

func givenBorrowedLoan(userID int64) ledger.Loan {
	borrowedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	return ledger.Loan{
		ID:         11,
		UserID:     userID,
		BookID:     1,
		BorrowDate: borrowedAt,
		DueDate:    borrowedAt.Add(ledger.DefaultLoanPeriod),
		Status:     ledger.LoanBorrowed,
	}
}
