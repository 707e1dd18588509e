package client

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Book struct {
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

// BookInput is the payload of create and update. Available is ignored on update.
type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity"`
	Available   *int   `json:"available,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsStaff    bool      `json:"is_staff"`
	DateJoined time.Time `json:"date_joined"`
}

// UserInput is the payload of registration and update. A nil Password keeps the current one on update.
type UserInput struct {
	Username  string  `json:"username"`
	Email     string  `json:"email,omitempty"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	IsStaff   bool    `json:"is_staff"`
	Password  *string `json:"password,omitempty"`
}

type Me struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

type Loan struct {
	ID           int64           `json:"id"`
	User         int64           `json:"user"`
	Username     string          `json:"username"`
	Book         int64           `json:"book"`
	BookTitle    string          `json:"book_title"`
	BookAuthor   string          `json:"book_author"`
	BookCategory string          `json:"book_category"`
	BookISBN     string          `json:"book_isbn"`
	BorrowDate   time.Time       `json:"borrow_date"`
	DueDate      time.Time       `json:"due_date"`
	ReturnDate   *time.Time      `json:"return_date"`
	Status       string          `json:"status"`
	Fine         decimal.Decimal `json:"fine"`
	DaysOverdue  int             `json:"days_overdue"`
}

// BorrowInput is the payload of a new loan. User is only honored for staff callers.
type BorrowInput struct {
	Book    int64      `json:"book"`
	User    *int64     `json:"user,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type LoanFilter struct {
	User   *int64
	Status string
}
