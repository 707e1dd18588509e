package postgresengine

import (
	"context"
	"slices"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine/internal/adapters"
)

// ListUsers returns all users in the order they joined.
func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	observer, ctx := s.observeQuery(ctx, "list_users")

	sqlQuery, err := buildSelectUsersQuery()
	if err != nil {
		return nil, observer.finishError(err)
	}

	users, err := s.queryUsers(ctx, s.db, "list_users", sqlQuery)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(users))

	return users, nil
}

// GetUser returns one user.
//
//	ERROR: ledger.ErrUserNotFound
func (s *Store) GetUser(ctx context.Context, userID int64) (ledger.User, error) {
	observer, ctx := s.observeQuery(ctx, "get_user")

	sqlQuery, err := buildSelectUserQuery(userID)
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	user, err := s.queryOneUser(ctx, s.db, "get_user", sqlQuery)
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return user, nil
}

// FindUserByUsername returns the user with the given username, including the password hash.
//
//	ERROR: ledger.ErrUserNotFound
func (s *Store) FindUserByUsername(ctx context.Context, username string) (ledger.User, error) {
	observer, ctx := s.observeQuery(ctx, "find_user_by_username")

	sqlQuery, err := buildSelectUserByUsernameQuery(username)
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	user, err := s.queryOneUser(ctx, s.db, "find_user_by_username", sqlQuery)
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return user, nil
}

// CreateUser registers a user with an already hashed password.
//
//	ERROR: ledger.ErrInvalidUser, ledger.ErrDuplicateUsername
func (s *Store) CreateUser(ctx context.Context, fields ledger.UserFields, passwordHash string) (ledger.User, error) {
	observer, ctx := s.observeWrite(ctx, "create_user")

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	sqlQuery, err := buildInsertUserQuery(fields, passwordHash, s.now())
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	user, err := s.queryOneUser(ctx, s.db, "create_user", sqlQuery)
	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return user, nil
}

// UpdateUser applies changes to the profile of a user under its row lock.
// Attributes without a change keep their stored value.
//
//	ERROR: ledger.ErrUserNotFound, ledger.ErrInvalidUser, ledger.ErrDuplicateUsername
func (s *Store) UpdateUser(ctx context.Context, userID int64, changes ledger.UserChanges) (ledger.User, error) {
	observer, ctx := s.observeWrite(ctx, "update_user")

	var updated ledger.User

	err := s.inTx(ctx, func(tx adapters.DBTx) error {
		lockQuery, buildErr := buildLockUserQuery(userID)
		if buildErr != nil {
			return buildErr
		}

		current, lockErr := s.queryOneUser(ctx, tx, "lock_user", lockQuery)
		if lockErr != nil {
			return lockErr
		}

		fields := changes.ApplyTo(current).Normalize()
		if validateErr := fields.Validate(); validateErr != nil {
			return validateErr
		}

		sqlQuery, buildErr := buildUpdateUserQuery(userID, fields)
		if buildErr != nil {
			return buildErr
		}

		var updateErr error
		updated, updateErr = s.queryOneUser(ctx, tx, "update_user", sqlQuery)

		return updateErr
	})

	if err != nil {
		return ledger.User{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return updated, nil
}

// SetPasswordHash replaces the stored password hash of a user.
//
//	ERROR: ledger.ErrUserNotFound
func (s *Store) SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	observer, ctx := s.observeWrite(ctx, "set_password")

	sqlQuery, err := buildUpdatePasswordHashQuery(userID, passwordHash)
	if err != nil {
		return observer.finishError(err)
	}

	rowsAffected, err := s.exec(ctx, s.db, "set_password", sqlQuery)
	if err != nil {
		return observer.finishError(err)
	}

	if rowsAffected == 0 {
		return observer.finishError(ledger.ErrUserNotFound)
	}

	observer.finishSuccess(1)

	return nil
}

// DeleteUser removes a user together with all of their loans.
// Copies still lent out to the user are put back on the shelf in the same transaction.
//
//	ERROR: ledger.ErrUserNotFound
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	observer, ctx := s.observeWrite(ctx, "delete_user")

	err := s.inTx(ctx, func(tx adapters.DBTx) error {
		if restockErr := s.restockOpenLoansOf(ctx, tx, userID); restockErr != nil {
			return restockErr
		}

		sqlQuery, buildErr := buildDeleteUserQuery(userID)
		if buildErr != nil {
			return buildErr
		}

		rowsAffected, execErr := s.exec(ctx, tx, "delete_user", sqlQuery)
		if execErr != nil {
			return execErr
		}

		if rowsAffected == 0 {
			return ledger.ErrUserNotFound
		}

		return nil
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

// restockOpenLoansOf returns the copies of all open loans of a user.
// Lock order is user, loans by id, books by id. Borrowing takes the user before the book
// and returning takes the loan before the book, so none of them can interleave.
func (s *Store) restockOpenLoansOf(ctx context.Context, tx adapters.DBTx, userID int64) error {
	userQuery, err := buildLockUserQuery(userID)
	if err != nil {
		return err
	}

	if _, err = s.queryOneUser(ctx, tx, "lock_user", userQuery); err != nil {
		return err
	}

	loansQuery, err := buildLockOpenLoansQuery(userID)
	if err != nil {
		return err
	}

	openPerBook := make(map[int64]int)

	err = s.query(ctx, tx, "lock_open_loans", loansQuery, func(rows adapters.DBRows) error {
		var loanID, bookID int64
		if scanErr := rows.Scan(&loanID, &bookID); scanErr != nil {
			return scanErr
		}

		openPerBook[bookID]++

		return nil
	})
	if err != nil {
		return err
	}

	bookIDs := make([]int64, 0, len(openPerBook))
	for bookID := range openPerBook {
		bookIDs = append(bookIDs, bookID)
	}

	slices.Sort(bookIDs)

	for _, bookID := range bookIDs {
		book, lockErr := s.lockBook(ctx, tx, bookID)
		if lockErr != nil {
			return lockErr
		}

		for range openPerBook[bookID] {
			book, _ = ledger.RestockReturnedCopy(book)
		}

		updateQuery, buildErr := buildUpdateAvailabilityQuery(book.ID, book.Available, s.now())
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := s.exec(ctx, tx, "restock_book", updateQuery); execErr != nil {
			return execErr
		}
	}

	return nil
}

func (s *Store) queryUsers(ctx context.Context, r runner, action, sqlQuery string) ([]ledger.User, error) {
	users := make([]ledger.User, 0)

	err := s.query(ctx, r, action, sqlQuery, func(rows adapters.DBRows) error {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return scanErr
		}

		users = append(users, user)

		return nil
	})

	return users, err
}

func (s *Store) queryOneUser(ctx context.Context, r runner, action, sqlQuery string) (ledger.User, error) {
	users, err := s.queryUsers(ctx, r, action, sqlQuery)
	if err != nil {
		return ledger.User{}, err
	}

	if len(users) == 0 {
		return ledger.User{}, ledger.ErrUserNotFound
	}

	return users[0], nil
}
