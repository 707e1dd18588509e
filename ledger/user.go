package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
	maxNameLength     = 150
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User is a library member. Staff users manage the catalog and may act on behalf of other users.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	IsStaff      bool
	PasswordHash string
	DateJoined   time.Time
}

// Actor returns the identity of the user as the initiator of an operation.
func (u User) Actor() Actor {
	return Actor{UserID: u.ID, IsStaff: u.IsStaff}
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID  int64
	IsStaff bool
}

// CanManage reports whether the actor may modify records owned by ownerID.
func (a Actor) CanManage(ownerID int64) bool {
	return a.IsStaff || a.UserID == ownerID
}

// UserFields holds the editable attributes of a user.
type UserFields struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	IsStaff   bool
}

// Normalize trims surrounding whitespace and lowercases the email address.
func (f UserFields) Normalize() UserFields {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)

	return f
}

// Validate checks the attributes against the column limits.
func (f UserFields) Validate() error {
	switch {
	case f.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	case utf8.RuneCountInString(f.Username) > maxUsernameLength:
		return fmt.Errorf("%w: username must not exceed %d characters", ErrInvalidUser, maxUsernameLength)
	case !usernamePattern.MatchString(f.Username):
		return fmt.Errorf("%w: username may only contain letters, digits and @/./+/-/_", ErrInvalidUser)
	case utf8.RuneCountInString(f.Email) > maxEmailLength:
		return fmt.Errorf("%w: email must not exceed %d characters", ErrInvalidUser, maxEmailLength)
	case f.Email != "" && !strings.Contains(f.Email, "@"):
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidUser)
	case utf8.RuneCountInString(f.FirstName) > maxNameLength || utf8.RuneCountInString(f.LastName) > maxNameLength:
		return fmt.Errorf("%w: names must not exceed %d characters", ErrInvalidUser, maxNameLength)
	}

	return nil
}

// UserChanges holds the profile attributes a user update sets. Nil fields keep their stored value.
type UserChanges struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsStaff   *bool
}

// ApplyTo returns the attributes of user with the changes applied.
func (c UserChanges) ApplyTo(user User) UserFields {
	fields := UserFields{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsStaff:   user.IsStaff,
	}

	setIfPresent(&fields.Username, c.Username)
	setIfPresent(&fields.Email, c.Email)
	setIfPresent(&fields.FirstName, c.FirstName)
	setIfPresent(&fields.LastName, c.LastName)
	setIfPresent(&fields.IsStaff, c.IsStaff)

	return fields
}

// ChangesStaffFlag reports whether applying the changes to user would grant or revoke staff rights.
func (c UserChanges) ChangesStaffFlag(user User) bool {
	return c.IsStaff != nil && *c.IsStaff != user.IsStaff
}

const minPasswordLength = 8

// ValidatePassword checks a plain text password before it is hashed.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrInvalidPassword
	}

	return nil
}
