package memledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store keeps books, users, and loans in maps guarded by one mutex,
// which serializes borrow and return the way the row locks do in PostgreSQL.
type Store struct {
	mu         sync.Mutex
	books      map[int64]ledger.Book
	users      map[int64]ledger.User
	loans      map[int64]ledger.Loan
	nextBook   int64
	nextUser   int64
	nextLoan   int64
	loanPeriod time.Duration
	clock      func() time.Time

	failures    []error
	consistency []ledger.ConsistencyLevel
	calls       map[string]int
}

func New() *Store {
	return &Store{
		books:      make(map[int64]ledger.Book),
		users:      make(map[int64]ledger.User),
		loans:      make(map[int64]ledger.Loan),
		loanPeriod: ledger.DefaultLoanPeriod,
		clock:      time.Now,
		calls:      make(map[string]int),
	}
}

// WithClock replaces the time source.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// FailNext makes the next len(errs) operations fail with the given errors, in order.
func (s *Store) FailNext(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, errs...)
}

// Calls returns how often the named method was called.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// LastConsistency returns the consistency level found in the context of the most recent call.
func (s *Store) LastConsistency() ledger.ConsistencyLevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.consistency) == 0 {
		return ledger.StrongConsistency
	}

	return s.consistency[len(s.consistency)-1]
}

// AddUser stores a user as is, e.g. with a known password hash.
func (s *Store) AddUser(user ledger.User) ledger.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUser++
	user.ID = s.nextUser
	if user.DateJoined.IsZero() {
		user.DateJoined = s.now()
	}
	s.users[user.ID] = user

	return user
}

// AddBook stores a book with the given copy counts.
func (s *Store) AddBook(title string, quantity, available int) ledger.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBook++
	now := s.now()
	book := ledger.Book{ID: s.nextBook, Title: title, Quantity: quantity, Available: available, CreatedAt: now, UpdatedAt: now}
	s.books[book.ID] = book

	return book
}

// begin records the call and pops an injected failure. The caller must hold mu.
func (s *Store) begin(ctx context.Context, method string) error {
	s.calls[method]++
	s.consistency = append(s.consistency, ledger.GetConsistencyLevel(ctx))

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}

	return nil
}

func (s *Store) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(ctx, "Ping")
}

func (s *Store) ListBooks(ctx context.Context) ([]ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "ListBooks"); err != nil {
		return nil, err
	}

	books := make([]ledger.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID > books[j].ID })

	return books, nil
}

func (s *Store) GetBook(ctx context.Context, bookID int64) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "GetBook"); err != nil {
		return ledger.Book{}, err
	}

	book, ok := s.books[bookID]
	if !ok {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	return book, nil
}

func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "FindBookByISBN"); err != nil {
		return ledger.Book{}, err
	}

	for _, b := range s.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}

	return ledger.Book{}, ledger.ErrBookNotFound
}

func (s *Store) CreateBook(ctx context.Context, fields ledger.BookFields) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "CreateBook"); err != nil {
		return ledger.Book{}, err
	}

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.Book{}, err
	}

	s.nextBook++
	now := s.now()
	book := ledger.Book{
		ID:          s.nextBook,
		Title:       fields.Title,
		Author:      fields.Author,
		ISBN:        fields.ISBN,
		Category:    fields.Category,
		Quantity:    fields.Quantity,
		Available:   fields.InitialAvailable(),
		Description: fields.Description,
		CoverURL:    fields.CoverURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.books[book.ID] = book

	return book, nil
}

func (s *Store) UpdateBook(ctx context.Context, bookID int64, changes ledger.BookChanges) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "UpdateBook"); err != nil {
		return ledger.Book{}, err
	}

	book, ok := s.books[bookID]
	if !ok {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	fields := changes.ApplyTo(book).Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.Book{}, err
	}

	changed, err := ledger.DecideQuantityChange(book, fields.Quantity)
	if err != nil {
		return ledger.Book{}, err
	}

	changed.Title = fields.Title
	changed.Author = fields.Author
	changed.ISBN = fields.ISBN
	changed.Category = fields.Category
	changed.Description = fields.Description
	changed.CoverURL = fields.CoverURL
	changed.UpdatedAt = s.now()
	s.books[bookID] = changed

	return changed, nil
}

func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "DeleteBook"); err != nil {
		return err
	}

	if _, ok := s.books[bookID]; !ok {
		return ledger.ErrBookNotFound
	}

	delete(s.books, bookID)
	for id, l := range s.loans {
		if l.BookID == bookID {
			delete(s.loans, id)
		}
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "ListUsers"); err != nil {
		return nil, err
	}

	users := make([]ledger.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "GetUser"); err != nil {
		return ledger.User{}, err
	}

	user, ok := s.users[userID]
	if !ok {
		return ledger.User{}, ledger.ErrUserNotFound
	}

	return user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "FindUserByUsername"); err != nil {
		return ledger.User{}, err
	}

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}

	return ledger.User{}, ledger.ErrUserNotFound
}

func (s *Store) CreateUser(ctx context.Context, fields ledger.UserFields, passwordHash string) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "CreateUser"); err != nil {
		return ledger.User{}, err
	}

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.User{}, err
	}

	if s.usernameTaken(fields.Username, 0) {
		return ledger.User{}, ledger.ErrDuplicateUsername
	}

	s.nextUser++
	user := ledger.User{
		ID:           s.nextUser,
		Username:     fields.Username,
		Email:        fields.Email,
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		IsStaff:      fields.IsStaff,
		PasswordHash: passwordHash,
		DateJoined:   s.now(),
	}
	s.users[user.ID] = user

	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID int64, changes ledger.UserChanges) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "UpdateUser"); err != nil {
		return ledger.User{}, err
	}

	user, ok := s.users[userID]
	if !ok {
		return ledger.User{}, ledger.ErrUserNotFound
	}

	fields := changes.ApplyTo(user).Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.User{}, err
	}

	if s.usernameTaken(fields.Username, userID) {
		return ledger.User{}, ledger.ErrDuplicateUsername
	}

	user.Username = fields.Username
	user.Email = fields.Email
	user.FirstName = fields.FirstName
	user.LastName = fields.LastName
	user.IsStaff = fields.IsStaff
	s.users[userID] = user

	return user, nil
}

func (s *Store) SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "SetPasswordHash"); err != nil {
		return err
	}

	user, ok := s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}

	user.PasswordHash = passwordHash
	s.users[userID] = user

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "DeleteUser"); err != nil {
		return err
	}

	if _, ok := s.users[userID]; !ok {
		return ledger.ErrUserNotFound
	}

	for id, l := range s.loans {
		if l.UserID != userID {
			continue
		}

		if !l.IsReturned() {
			if book, exists := s.books[l.BookID]; exists {
				s.books[l.BookID], _ = ledger.RestockReturnedCopy(book)
			}
		}

		delete(s.loans, id)
	}

	delete(s.users, userID)

	return nil
}

func (s *Store) ListLoans(ctx context.Context, filter ledger.LoanFilter) ([]ledger.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "ListLoans"); err != nil {
		return nil, err
	}

	loans := make([]ledger.LoanDetails, 0, len(s.loans))
	for _, l := range s.loans {
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		loans = append(loans, s.details(l))
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID > loans[j].ID })

	return loans, nil
}

func (s *Store) GetLoan(ctx context.Context, loanID int64) (ledger.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "GetLoan"); err != nil {
		return ledger.LoanDetails{}, err
	}

	loan, ok := s.loans[loanID]
	if !ok {
		return ledger.LoanDetails{}, ledger.ErrLoanNotFound
	}

	return s.details(loan), nil
}

func (s *Store) BorrowBook(ctx context.Context, req ledger.BorrowRequest) (ledger.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "BorrowBook"); err != nil {
		return ledger.LoanDetails{}, err
	}

	book, ok := s.books[req.BookID]
	if !ok {
		return ledger.LoanDetails{}, ledger.ErrBookNotFound
	}

	if _, exists := s.users[req.UserID]; !exists {
		return ledger.LoanDetails{}, ledger.ErrUserNotFound
	}

	now := s.now()

	dueDate, err := ledger.ResolveDueDate(now, req.DueDate, s.loanPeriod)
	if err != nil {
		return ledger.LoanDetails{}, err
	}

	updated, err := ledger.DecideBorrow(book)
	if err != nil {
		return ledger.LoanDetails{}, err
	}
	s.books[book.ID] = updated

	s.nextLoan++
	loan := ledger.Loan{
		ID:         s.nextLoan,
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: now,
		DueDate:    dueDate.UTC(),
		Status:     ledger.LoanBorrowed,
		Fine:       decimal.Zero,
	}
	s.loans[loan.ID] = loan

	return s.details(loan), nil
}

func (s *Store) ReturnLoan(ctx context.Context, loanID int64, actor ledger.Actor) (ledger.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, "ReturnLoan"); err != nil {
		return ledger.LoanDetails{}, err
	}

	loan, ok := s.loans[loanID]
	if !ok {
		return ledger.LoanDetails{}, ledger.ErrLoanNotFound
	}

	if err := ledger.DecideReturn(loan, actor); err != nil {
		return ledger.LoanDetails{}, err
	}

	if book, exists := s.books[loan.BookID]; exists {
		s.books[loan.BookID], _ = ledger.RestockReturnedCopy(book)
	}

	now := s.now()
	loan.Status = ledger.LoanReturned
	loan.ReturnDate = &now
	s.loans[loanID] = loan

	return s.details(loan), nil
}

func (s *Store) usernameTaken(username string, exceptID int64) bool {
	for _, u := range s.users {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}

	return false
}

func (s *Store) details(loan ledger.Loan) ledger.LoanDetails {
	book := s.books[loan.BookID]

	return ledger.LoanDetails{
		Loan:         loan,
		Username:     s.users[loan.UserID].Username,
		BookTitle:    book.Title,
		BookAuthor:   book.Author,
		BookCategory: book.Category,
		BookISBN:     book.ISBN,
	}
}
