package ledger

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength    = 255
	maxAuthorLength   = 255
	maxISBNLength     = 50
	maxCategoryLength = 100
	maxCoverURLLength = 512
)

// Book is a title owned by the library. Quantity is the number of copies owned,
// Available the number of copies currently not on loan.
type Book struct {
	ID          int64
	Title       string
	Author      string
	ISBN        string
	Category    string
	Quantity    int
	Available   int
	Description string
	CoverURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OnLoan returns the number of copies currently lent out.
func (b Book) OnLoan() int {
	return b.Quantity - b.Available
}

// BookFields holds the editable attributes of a book.
// Available is only honored when a book is created. Updates derive it from Quantity.
type BookFields struct {
	Title       string
	Author      string
	ISBN        string
	Category    string
	Quantity    int
	Available   *int
	Description string
	CoverURL    string
}

// Normalize trims surrounding whitespace from the text attributes.
func (f BookFields) Normalize() BookFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.ISBN = strings.TrimSpace(f.ISBN)
	f.Category = strings.TrimSpace(f.Category)
	f.CoverURL = strings.TrimSpace(f.CoverURL)

	return f
}

// Validate checks the attributes against the column limits and the availability invariant.
func (f BookFields) Validate() error {
	switch {
	case f.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	case utf8.RuneCountInString(f.Title) > maxTitleLength:
		return fmt.Errorf("%w: title must not exceed %d characters", ErrInvalidBook, maxTitleLength)
	case utf8.RuneCountInString(f.Author) > maxAuthorLength:
		return fmt.Errorf("%w: author must not exceed %d characters", ErrInvalidBook, maxAuthorLength)
	case utf8.RuneCountInString(f.ISBN) > maxISBNLength:
		return fmt.Errorf("%w: isbn must not exceed %d characters", ErrInvalidBook, maxISBNLength)
	case utf8.RuneCountInString(f.Category) > maxCategoryLength:
		return fmt.Errorf("%w: category must not exceed %d characters", ErrInvalidBook, maxCategoryLength)
	case utf8.RuneCountInString(f.CoverURL) > maxCoverURLLength:
		return fmt.Errorf("%w: cover_url must not exceed %d characters", ErrInvalidBook, maxCoverURLLength)
	case f.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidBook)
	}

	if f.Available != nil && (*f.Available < 0 || *f.Available > f.Quantity) {
		return fmt.Errorf("%w: available must be between 0 and quantity", ErrInvalidBook)
	}

	return nil
}

// InitialAvailable returns the availability of a newly created book.
func (f BookFields) InitialAvailable() int {
	if f.Available != nil {
		return *f.Available
	}

	return f.Quantity
}

// BookChanges holds the attributes a book update sets. Nil fields keep their stored value.
type BookChanges struct {
	Title       *string
	Author      *string
	ISBN        *string
	Category    *string
	Quantity    *int
	Description *string
	CoverURL    *string
}

// ApplyTo returns the attributes of book with the changes applied.
func (c BookChanges) ApplyTo(book Book) BookFields {
	fields := BookFields{
		Title:       book.Title,
		Author:      book.Author,
		ISBN:        book.ISBN,
		Category:    book.Category,
		Quantity:    book.Quantity,
		Description: book.Description,
		CoverURL:    book.CoverURL,
	}

	setIfPresent(&fields.Title, c.Title)
	setIfPresent(&fields.Author, c.Author)
	setIfPresent(&fields.ISBN, c.ISBN)
	setIfPresent(&fields.Category, c.Category)
	setIfPresent(&fields.Quantity, c.Quantity)
	setIfPresent(&fields.Description, c.Description)
	setIfPresent(&fields.CoverURL, c.CoverURL)

	return fields
}

func setIfPresent[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}
