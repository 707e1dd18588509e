package updateuser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/features/command/updateuser"
	"github.com/AntonStoeckl/library-loans-go/testutil/memledger"
)

type hasherFake struct{}

func (hasherFake) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func Test_CommandHandler_Handle_Success_Self(t *testing.T) {
	// arrange
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe", PasswordHash: "old"})
	password := "new-password"
	changes := ledger.UserChanges{Email: ptrTo("john@university.edu"), FirstName: ptrTo("John"), LastName: ptrTo("Doe")}

	// act
	updated, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), member.ID, changes, &password),
	)

	// assert
	require.NoError(t, err, "Should update the own profile")
	assert.Equal(t, "John", updated.FirstName)

	stored, err := store.GetUser(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-password", stored.PasswordHash, "Should replace the password hash")
}

func Test_CommandHandler_Handle_KeepsPasswordWhenOmitted(t *testing.T) {
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe", PasswordHash: "old"})

	_, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), member.ID, ledger.UserChanges{Username: ptrTo("john")}, nil),
	)

	require.NoError(t, err)
	stored, _ := store.GetUser(context.Background(), member.ID)
	assert.Equal(t, "old", stored.PasswordHash, "Should keep the password hash")
	assert.Equal(t, 0, store.Calls("SetPasswordHash"))
}

func Test_CommandHandler_Handle_Error_MemberPromotesThemself(t *testing.T) {
	// arrange
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})

	// act
	_, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), member.ID, ledger.UserChanges{IsStaff: ptrTo(true)}, nil),
	)

	// assert
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied, "Should reject changing the staff flag")

	stored, _ := store.GetUser(context.Background(), member.ID)
	assert.False(t, stored.IsStaff)
}

func Test_CommandHandler_Handle_StaffPromotesMember(t *testing.T) {
	store := memledger.New()
	staff := store.AddUser(ledger.User{Username: "admin", IsStaff: true})
	member := store.AddUser(ledger.User{Username: "john_doe"})

	updated, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(staff.Actor(), member.ID, ledger.UserChanges{IsStaff: ptrTo(true)}, nil),
	)

	require.NoError(t, err)
	assert.True(t, updated.IsStaff, "Should let staff promote a member")
}

func Test_CommandHandler_Handle_Error_OtherMember(t *testing.T) {
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})
	other := store.AddUser(ledger.User{Username: "jane_smith"})

	_, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), other.ID, ledger.UserChanges{Username: ptrTo("jane")}, nil),
	)

	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	assert.Equal(t, 0, store.Calls("GetUser"), "Should not touch the store")
}

func Test_CommandHandler_Handle_Error_DuplicateUsername(t *testing.T) {
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})
	store.AddUser(ledger.User{Username: "jane_smith"})

	_, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), member.ID, ledger.UserChanges{Username: ptrTo("jane_smith")}, nil),
	)

	assert.ErrorIs(t, err, ledger.ErrDuplicateUsername)
}

func Test_CommandHandler_Handle_StaffEditsProfile_KeepsStaffFlag(t *testing.T) {
	// arrange
	store := memledger.New()
	staff := store.AddUser(ledger.User{Username: "admin", IsStaff: true})
	colleague := store.AddUser(ledger.User{Username: "librarian", Email: "librarian@library.com", IsStaff: true})

	// act
	updated, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(staff.Actor(), colleague.ID, ledger.UserChanges{FirstName: ptrTo("Linda")}, nil),
	)

	// assert
	require.NoError(t, err)
	assert.True(t, updated.IsStaff, "Should not demote a user when the staff flag is left out")
	assert.Equal(t, "librarian@library.com", updated.Email, "Should keep the email")
	assert.Equal(t, "Linda", updated.FirstName)
}

func Test_CommandHandler_Handle_MemberRepeatsOwnStaffFlag(t *testing.T) {
	store := memledger.New()
	member := store.AddUser(ledger.User{Username: "john_doe"})

	_, _, err := updateuser.NewCommandHandler(store, hasherFake{}).Handle(
		context.Background(),
		updateuser.BuildCommand(member.Actor(), member.ID, ledger.UserChanges{IsStaff: ptrTo(false)}, nil),
	)

	assert.NoError(t, err, "Should accept an unchanged staff flag")
}

func ptrTo[T any](v T) *T {
	return &v
}
