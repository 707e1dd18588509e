package registeruser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/registeruser"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

type hasherFake struct {
	err error
}

func (h hasherFake) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}

	return "hashed:" + password, nil
}

func Test_CommandHandler_Handle_Success_Anonymous(t *testing.T) {
	// arrange
	store := memledger.New()
	fields := ledger.UserFields{Username: "john_doe", Email: "john.doe@university.edu", IsStaff: true}

	// act
	user, _, err := registeruser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		registeruser.BuildCommand(nil, fields, "password123"),
	)

	// assert
	require.NoError(t, err, "Should register the user")
	assert.Equal(t, "john_doe", user.Username)
	assert.False(t, user.IsStaff, "Should ignore the staff flag of anonymous callers")
	assert.Equal(t, "hashed:password123", user.PasswordHash, "Should store the hashed password")
}

func Test_CommandHandler_Handle_Success_StaffCreatesStaff(t *testing.T) {
	store := memledger.New()
	staff := ledger.Actor{UserID: 1, IsStaff: true}

	user, _, err := registeruser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		registeruser.BuildCommand(&staff, ledger.UserFields{Username: "librarian", IsStaff: true}, "password123"),
	)

	require.NoError(t, err)
	assert.True(t, user.IsStaff, "Should honor the staff flag of staff callers")
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		fields    ledger.UserFields
		password  string
		hasher    hasherFake
		expectErr error
	}{
		{name: "short password", fields: ledger.UserFields{Username: "jane"}, password: "short", expectErr: ledger.ErrInvalidPassword},
		{name: "missing username", fields: ledger.UserFields{}, password: "password123", expectErr: ledger.ErrInvalidUser},
		{name: "duplicate username", fields: ledger.UserFields{Username: "taken"}, password: "password123", expectErr: ledger.ErrDuplicateUsername},
		{name: "hashing fails", fields: ledger.UserFields{Username: "jane"}, password: "password123", hasher: hasherFake{err: errHash}, expectErr: errHash},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			store := memledger.New()
			store.AddUser(ledger.User{Username: "taken"})

			// act
			_, _, err := registeruser.NewCommandHandler(store, tc.hasher).Handle(
				context.Background(),
				registeruser.BuildCommand(nil, tc.fields, tc.password),
			)

			// assert
			assert.ErrorIs(t, err, tc.expectErr)
		})
	}
}

var errHash = errors.New("hashing failed")
