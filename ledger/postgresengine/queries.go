package postgresengine

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	dialectPostgres = "postgres"

	tableBooks = "books"
	tableUsers = "users"
	tableLoans = "loans"

	aliasLoan = "l"
	aliasUser = "u"
	aliasBook = "b"

	colID           = "id"
	colTitle        = "title"
	colAuthor       = "author"
	colISBN         = "isbn"
	colCategory     = "category"
	colQuantity     = "quantity"
	colAvailable    = "available"
	colDescription  = "description"
	colCoverURL     = "cover_url"
	colCreatedAt    = "created_at"
	colUpdatedAt    = "updated_at"
	colUsername     = "username"
	colEmail        = "email"
	colFirstName    = "first_name"
	colLastName     = "last_name"
	colIsStaff      = "is_staff"
	colPasswordHash = "password_hash"
	colDateJoined   = "date_joined"
	colUserID       = "user_id"
	colBookID       = "book_id"
	colBorrowDate   = "borrow_date"
	colDueDate      = "due_date"
	colReturnDate   = "return_date"
	colStatus       = "status"
	colFine         = "fine"

	castText = "TEXT"
)

type sqlQueryString = string

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func bookColumns() []any {
	return []any{
		colID, colTitle, colAuthor, colISBN, colCategory, colQuantity, colAvailable,
		colDescription, colCoverURL, colCreatedAt, colUpdatedAt,
	}
}

func userColumns() []any {
	return []any{
		colID, colUsername, colEmail, colFirstName, colLastName, colIsStaff, colPasswordHash, colDateJoined,
	}
}

func loanColumns() []any {
	return []any{
		colID, colUserID, colBookID, colBorrowDate, colDueDate, colReturnDate, colStatus,
		goqu.Cast(goqu.C(colFine), castText).As(colFine),
	}
}

// loanDetailColumns selects a loan joined with its borrower and book, matching scanLoanDetails.
func loanDetailColumns() []any {
	return []any{
		goqu.I(aliasLoan + "." + colID),
		goqu.I(aliasLoan + "." + colUserID),
		goqu.I(aliasLoan + "." + colBookID),
		goqu.I(aliasLoan + "." + colBorrowDate),
		goqu.I(aliasLoan + "." + colDueDate),
		goqu.I(aliasLoan + "." + colReturnDate),
		goqu.I(aliasLoan + "." + colStatus),
		goqu.Cast(goqu.I(aliasLoan+"."+colFine), castText).As(colFine),
		goqu.I(aliasUser + "." + colUsername),
		goqu.I(aliasBook + "." + colTitle),
		goqu.I(aliasBook + "." + colAuthor),
		goqu.I(aliasBook + "." + colCategory),
		goqu.I(aliasBook + "." + colISBN),
	}
}

func toSQL(ds interface {
	ToSQL() (string, []any, error)
}) (sqlQueryString, error) {

	sqlQuery, _, toSQLErr := ds.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// === Books ===

func buildSelectBooksQuery() (sqlQueryString, error) {
	return toSQL(
		builder().From(tableBooks).
			Select(bookColumns()...).
			Order(goqu.C(colID).Desc()),
	)
}

func buildSelectBookQuery(bookID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableBooks).
			Select(bookColumns()...).
			Where(goqu.C(colID).Eq(bookID)),
	)
}

func buildSelectBookByISBNQuery(isbn string) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableBooks).
			Select(bookColumns()...).
			Where(goqu.C(colISBN).Eq(isbn)).
			Order(goqu.C(colID).Asc()).
			Limit(1),
	)
}

// buildLockBookQuery reads a book and holds its row lock until the transaction ends.
func buildLockBookQuery(bookID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableBooks).
			Select(bookColumns()...).
			Where(goqu.C(colID).Eq(bookID)).
			ForUpdate(exp.Wait),
	)
}

func buildInsertBookQuery(fields ledger.BookFields, now time.Time) (sqlQueryString, error) {
	return toSQL(
		builder().Insert(tableBooks).
			Rows(goqu.Record{
				colTitle:       fields.Title,
				colAuthor:      fields.Author,
				colISBN:        fields.ISBN,
				colCategory:    fields.Category,
				colQuantity:    fields.Quantity,
				colAvailable:   fields.InitialAvailable(),
				colDescription: fields.Description,
				colCoverURL:    fields.CoverURL,
				colCreatedAt:   now,
				colUpdatedAt:   now,
			}).
			Returning(bookColumns()...),
	)
}

func buildUpdateBookQuery(book ledger.Book) (sqlQueryString, error) {
	return toSQL(
		builder().Update(tableBooks).
			Set(goqu.Record{
				colTitle:       book.Title,
				colAuthor:      book.Author,
				colISBN:        book.ISBN,
				colCategory:    book.Category,
				colQuantity:    book.Quantity,
				colAvailable:   book.Available,
				colDescription: book.Description,
				colCoverURL:    book.CoverURL,
				colUpdatedAt:   book.UpdatedAt,
			}).
			Where(goqu.C(colID).Eq(book.ID)).
			Returning(bookColumns()...),
	)
}

func buildUpdateAvailabilityQuery(bookID int64, available int, now time.Time) (sqlQueryString, error) {
	return toSQL(
		builder().Update(tableBooks).
			Set(goqu.Record{colAvailable: available, colUpdatedAt: now}).
			Where(goqu.C(colID).Eq(bookID)),
	)
}

func buildDeleteBookQuery(bookID int64) (sqlQueryString, error) {
	return toSQL(builder().Delete(tableBooks).Where(goqu.C(colID).Eq(bookID)))
}

// === Users ===

func buildSelectUsersQuery() (sqlQueryString, error) {
	return toSQL(
		builder().From(tableUsers).
			Select(userColumns()...).
			Order(goqu.C(colID).Asc()),
	)
}

func buildSelectUserQuery(userID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableUsers).
			Select(userColumns()...).
			Where(goqu.C(colID).Eq(userID)),
	)
}

func buildSelectUserByUsernameQuery(username string) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableUsers).
			Select(userColumns()...).
			Where(goqu.C(colUsername).Eq(username)),
	)
}

func buildInsertUserQuery(fields ledger.UserFields, passwordHash string, now time.Time) (sqlQueryString, error) {
	return toSQL(
		builder().Insert(tableUsers).
			Rows(goqu.Record{
				colUsername:     fields.Username,
				colEmail:        fields.Email,
				colFirstName:    fields.FirstName,
				colLastName:     fields.LastName,
				colIsStaff:      fields.IsStaff,
				colPasswordHash: passwordHash,
				colDateJoined:   now,
			}).
			Returning(userColumns()...),
	)
}

func buildUpdateUserQuery(userID int64, fields ledger.UserFields) (sqlQueryString, error) {
	return toSQL(
		builder().Update(tableUsers).
			Set(goqu.Record{
				colUsername:  fields.Username,
				colEmail:     fields.Email,
				colFirstName: fields.FirstName,
				colLastName:  fields.LastName,
				colIsStaff:   fields.IsStaff,
			}).
			Where(goqu.C(colID).Eq(userID)).
			Returning(userColumns()...),
	)
}

func buildUpdatePasswordHashQuery(userID int64, passwordHash string) (sqlQueryString, error) {
	return toSQL(
		builder().Update(tableUsers).
			Set(goqu.Record{colPasswordHash: passwordHash}).
			Where(goqu.C(colID).Eq(userID)),
	)
}

func buildDeleteUserQuery(userID int64) (sqlQueryString, error) {
	return toSQL(builder().Delete(tableUsers).Where(goqu.C(colID).Eq(userID)))
}

// buildLockUserQuery blocks new loans of the user until the transaction ends,
// since inserting a loan takes a key share lock on the referenced user row.
func buildLockUserQuery(userID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableUsers).
			Select(userColumns()...).
			Where(goqu.C(colID).Eq(userID)).
			ForUpdate(exp.Wait),
	)
}

// buildShareUserQuery conflicts only with buildLockUserQuery, concurrent borrowers do not block each other.
func buildShareUserQuery(userID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableUsers).
			Select(userColumns()...).
			Where(goqu.C(colID).Eq(userID)).
			ForKeyShare(exp.Wait),
	)
}

func buildLockOpenLoansQuery(userID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableLoans).
			Select(goqu.C(colID), goqu.C(colBookID)).
			Where(
				goqu.C(colUserID).Eq(userID),
				goqu.C(colStatus).Eq(string(ledger.LoanBorrowed)),
			).
			Order(goqu.C(colID).Asc()).
			ForUpdate(exp.Wait),
	)
}

// === Loans ===

func selectLoanDetails() *goqu.SelectDataset {
	return builder().
		From(goqu.T(tableLoans).As(aliasLoan)).
		InnerJoin(
			goqu.T(tableUsers).As(aliasUser),
			goqu.On(goqu.I(aliasUser+"."+colID).Eq(goqu.I(aliasLoan+"."+colUserID))),
		).
		InnerJoin(
			goqu.T(tableBooks).As(aliasBook),
			goqu.On(goqu.I(aliasBook+"."+colID).Eq(goqu.I(aliasLoan+"."+colBookID))),
		).
		Select(loanDetailColumns()...)
}

func buildSelectLoansQuery(filter ledger.LoanFilter) (sqlQueryString, error) {
	selectStmt := selectLoanDetails().Order(goqu.I(aliasLoan + "." + colID).Desc())

	conditions := make([]exp.Expression, 0, 2)
	if filter.UserID != nil {
		conditions = append(conditions, goqu.I(aliasLoan+"."+colUserID).Eq(*filter.UserID))
	}

	if filter.Status != nil {
		conditions = append(conditions, goqu.I(aliasLoan+"."+colStatus).Eq(string(*filter.Status)))
	}

	if len(conditions) > 0 {
		selectStmt = selectStmt.Where(goqu.And(conditions...))
	}

	return toSQL(selectStmt)
}

func buildSelectLoanQuery(loanID int64) (sqlQueryString, error) {
	return toSQL(selectLoanDetails().Where(goqu.I(aliasLoan + "." + colID).Eq(loanID)))
}

// buildLockLoanQuery locks only the loan row, the book is locked separately afterward.
func buildLockLoanQuery(loanID int64) (sqlQueryString, error) {
	return toSQL(
		builder().From(tableLoans).
			Select(loanColumns()...).
			Where(goqu.C(colID).Eq(loanID)).
			ForUpdate(exp.Wait),
	)
}

func buildInsertLoanQuery(userID, bookID int64, borrowDate, dueDate time.Time) (sqlQueryString, error) {
	return toSQL(
		builder().Insert(tableLoans).
			Rows(goqu.Record{
				colUserID:     userID,
				colBookID:     bookID,
				colBorrowDate: borrowDate,
				colDueDate:    dueDate,
				colStatus:     string(ledger.LoanBorrowed),
			}).
			Returning(loanColumns()...),
	)
}

func buildCloseLoanQuery(loanID int64, returnDate time.Time) (sqlQueryString, error) {
	return toSQL(
		builder().Update(tableLoans).
			Set(goqu.Record{
				colStatus:     string(ledger.LoanReturned),
				colReturnDate: returnDate,
			}).
			Where(
				goqu.C(colID).Eq(loanID),
				goqu.C(colStatus).Eq(string(ledger.LoanBorrowed)),
			),
	)
}
