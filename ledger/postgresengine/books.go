package postgresengine

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine/internal/adapters"
)

// ListBooks returns all books, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]ledger.Book, error) {
	observer, ctx := s.observeQuery(ctx, "list_books")

	sqlQuery, err := buildSelectBooksQuery()
	if err != nil {
		return nil, observer.finishError(err)
	}

	books, err := s.queryBooks(ctx, s.db, "list_books", sqlQuery)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(books))

	return books, nil
}

// GetBook returns one book.
//
//	ERROR: ledger.ErrBookNotFound
func (s *Store) GetBook(ctx context.Context, bookID int64) (ledger.Book, error) {
	observer, ctx := s.observeQuery(ctx, "get_book")

	sqlQuery, err := buildSelectBookQuery(bookID)
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	book, err := s.queryOneBook(ctx, s.db, "get_book", sqlQuery)
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return book, nil
}

// FindBookByISBN returns the oldest book with the given ISBN.
//
//	ERROR: ledger.ErrBookNotFound
func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (ledger.Book, error) {
	observer, ctx := s.observeQuery(ctx, "find_book_by_isbn")

	sqlQuery, err := buildSelectBookByISBNQuery(isbn)
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	book, err := s.queryOneBook(ctx, s.db, "find_book_by_isbn", sqlQuery)
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return book, nil
}

// CreateBook adds a title to the catalog. Without an explicit availability all copies start on the shelf.
//
//	ERROR: ledger.ErrInvalidBook
func (s *Store) CreateBook(ctx context.Context, fields ledger.BookFields) (ledger.Book, error) {
	observer, ctx := s.observeWrite(ctx, "create_book")

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	sqlQuery, err := buildInsertBookQuery(fields, s.now())
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	book, err := s.queryOneBook(ctx, s.db, "create_book", sqlQuery)
	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return book, nil
}

// UpdateBook applies changes to a book under its row lock. Attributes without a change keep
// their stored value. A quantity change keeps the number of copies on loan.
//
//	ERROR: ledger.ErrBookNotFound, ledger.ErrInvalidBook, ledger.ErrQuantityBelowLentCopies
func (s *Store) UpdateBook(ctx context.Context, bookID int64, changes ledger.BookChanges) (ledger.Book, error) {
	observer, ctx := s.observeWrite(ctx, "update_book")

	var updated ledger.Book

	err := s.inTx(ctx, func(tx adapters.DBTx) error {
		book, lockErr := s.lockBook(ctx, tx, bookID)
		if lockErr != nil {
			return lockErr
		}

		fields := changes.ApplyTo(book).Normalize()
		if validateErr := fields.Validate(); validateErr != nil {
			return validateErr
		}

		changed, decideErr := ledger.DecideQuantityChange(book, fields.Quantity)
		if decideErr != nil {
			return decideErr
		}

		changed.Title = fields.Title
		changed.Author = fields.Author
		changed.ISBN = fields.ISBN
		changed.Category = fields.Category
		changed.Description = fields.Description
		changed.CoverURL = fields.CoverURL
		changed.UpdatedAt = s.now()

		sqlQuery, buildErr := buildUpdateBookQuery(changed)
		if buildErr != nil {
			return buildErr
		}

		var updateErr error
		updated, updateErr = s.queryOneBook(ctx, tx, "update_book", sqlQuery)

		return updateErr
	})

	if err != nil {
		return ledger.Book{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return updated, nil
}

// DeleteBook removes a book together with all of its loans.
//
//	ERROR: ledger.ErrBookNotFound
func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	observer, ctx := s.observeWrite(ctx, "delete_book")

	sqlQuery, err := buildDeleteBookQuery(bookID)
	if err != nil {
		return observer.finishError(err)
	}

	rowsAffected, err := s.exec(ctx, s.db, "delete_book", sqlQuery)
	if err != nil {
		return observer.finishError(err)
	}

	if rowsAffected == 0 {
		return observer.finishError(ledger.ErrBookNotFound)
	}

	observer.finishSuccess(int(rowsAffected))

	return nil
}

// lockBook reads a book with SELECT ... FOR UPDATE inside tx.
func (s *Store) lockBook(ctx context.Context, tx adapters.DBTx, bookID int64) (ledger.Book, error) {
	sqlQuery, err := buildLockBookQuery(bookID)
	if err != nil {
		return ledger.Book{}, err
	}

	return s.queryOneBook(ctx, tx, "lock_book", sqlQuery)
}

func (s *Store) queryBooks(ctx context.Context, r runner, action, sqlQuery string) ([]ledger.Book, error) {
	books := make([]ledger.Book, 0)

	err := s.query(ctx, r, action, sqlQuery, func(rows adapters.DBRows) error {
		book, scanErr := scanBook(rows)
		if scanErr != nil {
			return scanErr
		}

		books = append(books, book)

		return nil
	})

	return books, err
}

func (s *Store) queryOneBook(ctx context.Context, r runner, action, sqlQuery string) (ledger.Book, error) {
	books, err := s.queryBooks(ctx, r, action, sqlQuery)
	if err != nil {
		return ledger.Book{}, err
	}

	if len(books) == 0 {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	return books[0], nil
}
