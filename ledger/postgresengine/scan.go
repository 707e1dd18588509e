package postgresengine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine/internal/adapters"
)

// scanBook reads the columns of bookColumns.
func scanBook(rows adapters.DBRows) (ledger.Book, error) {
	var b ledger.Book

	err := rows.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Quantity, &b.Available,
		&b.Description, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return ledger.Book{}, err
	}

	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	return b, nil
}

// scanUser reads the columns of userColumns.
func scanUser(rows adapters.DBRows) (ledger.User, error) {
	var u ledger.User

	err := rows.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsStaff, &u.PasswordHash, &u.DateJoined,
	)
	if err != nil {
		return ledger.User{}, err
	}

	u.DateJoined = u.DateJoined.UTC()

	return u, nil
}

// scanLoan reads the columns of loanColumns.
func scanLoan(rows adapters.DBRows) (ledger.Loan, error) {
	var (
		l      ledger.Loan
		status string
		fine   string
	)

	err := rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowDate, &l.DueDate, &l.ReturnDate, &status, &fine)
	if err != nil {
		return ledger.Loan{}, err
	}

	return finishLoan(l, status, fine)
}

// scanLoanDetails reads the columns of loanDetailColumns.
func scanLoanDetails(rows adapters.DBRows) (ledger.LoanDetails, error) {
	var (
		d      ledger.LoanDetails
		status string
		fine   string
	)

	err := rows.Scan(
		&d.ID, &d.UserID, &d.BookID, &d.BorrowDate, &d.DueDate, &d.ReturnDate, &status, &fine,
		&d.Username, &d.BookTitle, &d.BookAuthor, &d.BookCategory, &d.BookISBN,
	)
	if err != nil {
		return ledger.LoanDetails{}, err
	}

	loan, err := finishLoan(d.Loan, status, fine)
	if err != nil {
		return ledger.LoanDetails{}, err
	}

	d.Loan = loan

	return d, nil
}

func finishLoan(l ledger.Loan, status, fine string) (ledger.Loan, error) {
	var err error

	if l.Status, err = ledger.ParseLoanStatus(status); err != nil {
		return ledger.Loan{}, err
	}

	if l.Fine, err = decimal.NewFromString(fine); err != nil {
		return ledger.Loan{}, fmt.Errorf("invalid fine %q: %w", fine, err)
	}

	l.BorrowDate = l.BorrowDate.UTC()
	l.DueDate = l.DueDate.UTC()

	if l.ReturnDate != nil {
		returnDate := l.ReturnDate.UTC()
		l.ReturnDate = &returnDate
	}

	return l, nil
}

// detailsOf assembles loan details from rows that were already read inside a transaction.
func detailsOf(loan ledger.Loan, user ledger.User, book ledger.Book) ledger.LoanDetails {
	return ledger.LoanDetails{
		Loan:         loan,
		Username:     user.Username,
		BookTitle:    book.Title,
		BookAuthor:   book.Author,
		BookCategory: book.Category,
		BookISBN:     book.ISBN,
	}
}
