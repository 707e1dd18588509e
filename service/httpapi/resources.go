package httpapi

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

type bookResource struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Available   int       `json:"available"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookResource(b ledger.Book) bookResource {
	return bookResource{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Category:    b.Category,
		Quantity:    b.Quantity,
		Available:   b.Available,
		Description: b.Description,
		CoverURL:    b.CoverURL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type bookPayload struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Quantity    *int   `json:"quantity"`
	Available   *int   `json:"available"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

// fields defaults a missing quantity to one copy.
func (p bookPayload) fields() ledger.BookFields {
	quantity := 1
	if p.Quantity != nil {
		quantity = *p.Quantity
	}

	return ledger.BookFields{
		Title:       p.Title,
		Author:      p.Author,
		ISBN:        p.ISBN,
		Category:    p.Category,
		Quantity:    quantity,
		Available:   p.Available,
		Description: p.Description,
		CoverURL:    p.CoverURL,
	}
}

// bookChangesPayload is the body of a book update. Omitted attributes keep their value,
// available is not accepted because it follows the quantity.
type bookChangesPayload struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	ISBN        *string `json:"isbn"`
	Category    *string `json:"category"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
}

func (p bookChangesPayload) changes() ledger.BookChanges {
	return ledger.BookChanges{
		Title:       p.Title,
		Author:      p.Author,
		ISBN:        p.ISBN,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Description: p.Description,
		CoverURL:    p.CoverURL,
	}
}

type userResource struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsStaff    bool      `json:"is_staff"`
	DateJoined time.Time `json:"date_joined"`
}

func toUserResource(u ledger.User) userResource {
	return userResource{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsStaff:    u.IsStaff,
		DateJoined: u.DateJoined,
	}
}

type meResource struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

type userPayload struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	IsStaff   bool    `json:"is_staff"`
	Password  *string `json:"password"`
}

func (p userPayload) fields() ledger.UserFields {
	return ledger.UserFields{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsStaff:   p.IsStaff,
	}
}

// userChangesPayload is the body of a user update. Omitted attributes keep their value.
type userChangesPayload struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsStaff   *bool   `json:"is_staff"`
	Password  *string `json:"password"`
}

func (p userChangesPayload) changes() ledger.UserChanges {
	return ledger.UserChanges{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsStaff:   p.IsStaff,
	}
}

type loanResource struct {
	ID           int64      `json:"id"`
	User         int64      `json:"user"`
	Username     string     `json:"username"`
	Book         int64      `json:"book"`
	BookTitle    string     `json:"book_title"`
	BookAuthor   string     `json:"book_author"`
	BookCategory string     `json:"book_category"`
	BookISBN     string     `json:"book_isbn"`
	BorrowDate   time.Time  `json:"borrow_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date"`
	Status       string     `json:"status"`
	Fine         string     `json:"fine"`
	DaysOverdue  int        `json:"days_overdue"`
}

func toLoanResource(l ledger.LoanDetails, now time.Time) loanResource {
	return loanResource{
		ID:           l.ID,
		User:         l.UserID,
		Username:     l.Username,
		Book:         l.BookID,
		BookTitle:    l.BookTitle,
		BookAuthor:   l.BookAuthor,
		BookCategory: l.BookCategory,
		BookISBN:     l.BookISBN,
		BorrowDate:   l.BorrowDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       string(l.Status),
		Fine:         l.Fine.StringFixed(2),
		DaysOverdue:  ledger.DaysOverdue(l.Loan, now),
	}
}

type loanPayload struct {
	Book    int64   `json:"book"`
	User    *int64  `json:"user"`
	DueDate *string `json:"due_date"`
}

// dueDate accepts RFC 3339 timestamps and plain dates, which mean midnight UTC.
// A missing or empty value means the default loan period.
func (p loanPayload) dueDate() (time.Time, error) {
	if p.DueDate == nil || *p.DueDate == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, *p.DueDate); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.DateOnly, *p.DueDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due_date must be an RFC 3339 timestamp or a date", errMalformedRequest)
	}

	return t, nil
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

type tokenPairResource struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type accessResource struct {
	Access string `json:"access"`
}
