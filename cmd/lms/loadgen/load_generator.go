package loadgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-loans-go/client"
)

const (
	scenarioBorrow = "borrow"
	scenarioReturn = "return"

	requestTimeout = 5 * time.Second
	reportInterval = 10 * time.Second
)

var ErrInvalidConfig = errors.New("invalid load generator config")

// API is the part of the client the load generator uses.
type API interface {
	ListBooks(ctx context.Context) ([]client.Book, error)
	ListLoans(ctx context.Context, filter client.LoanFilter) ([]client.Loan, error)
	Borrow(ctx context.Context, input client.BorrowInput) (client.Loan, error)
	ReturnLoan(ctx context.Context, id int64) (client.Loan, error)
}

// Member is a logged-in API session and the id of its user.
type Member struct {
	UserID int64
	API    API
}

type Config struct {
	// Rate is the number of scenarios started per second.
	Rate int
	// BorrowWeight is the percentage of scenarios that borrow, the rest return.
	BorrowWeight int
}

// Stats is a snapshot of the counters.
type Stats struct {
	Requests int64
	Rejected int64
	Errors   int64
	Elapsed  time.Duration
}

type LoadGenerator struct {
	members []Member
	config  Config
	logger  *slog.Logger

	books []client.Book

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu        sync.RWMutex
	requests  int64
	rejected  int64
	errors    int64
	startTime time.Time
}

func NewLoadGenerator(members []Member, config Config, logger *slog.Logger) (*LoadGenerator, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrInvalidConfig)
	}

	if config.Rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrInvalidConfig)
	}

	if config.BorrowWeight < 0 || config.BorrowWeight > 100 {
		return nil, fmt.Errorf("%w: borrow weight must be between 0 and 100", ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &LoadGenerator{
		members:  members,
		config:   config,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Start loads the catalog once and then starts scenarios at the configured rate.
// It runs until ctx is canceled or Stop is called.
func (lg *LoadGenerator) Start(ctx context.Context) error {
	books, err := lg.members[0].API.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("loading the catalog failed: %w", err)
	}

	if len(books) == 0 {
		return fmt.Errorf("%w: the catalog is empty, run lms seed first", ErrInvalidConfig)
	}

	lg.mu.Lock()
	lg.books = books
	lg.startTime = time.Now()
	lg.requests, lg.rejected, lg.errors = 0, 0, 0
	lg.mu.Unlock()

	interval := time.Second / time.Duration(lg.config.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lg.logger.Info("load generator starting", "rate", lg.config.Rate, "interval", interval.String(), "members", len(lg.members))

	lg.wg.Add(1)
	go lg.statsReporter(ctx)

	for {
		select {
		case <-ctx.Done():
			lg.logger.Info("load generator stopping due to context cancellation")
			return ctx.Err()

		case <-lg.stopChan:
			lg.logger.Info("load generator stopping due to stop signal")
			return nil

		case <-ticker.C:
			lg.wg.Add(1)
			go lg.executeScenario(ctx)
		}
	}
}

// Stop waits for running scenarios, or until ctx is done.
func (lg *LoadGenerator) Stop(ctx context.Context) error {
	lg.stopOnce.Do(func() { close(lg.stopChan) })

	done := make(chan struct{})
	go func() {
		lg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		lg.logStats("load generator final stats")
		return nil
	case <-ctx.Done():
		lg.logStats("load generator final stats")
		return errors.New("shutdown timeout exceeded")
	}
}

func (lg *LoadGenerator) Stats() Stats {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	return Stats{
		Requests: lg.requests,
		Rejected: lg.rejected,
		Errors:   lg.errors,
		Elapsed:  time.Since(lg.startTime),
	}
}

func (lg *LoadGenerator) executeScenario(ctx context.Context) {
	defer lg.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	member := lg.members[rand.IntN(len(lg.members))] //nolint:gosec // load generation needs no secure randomness

	scenario := scenarioReturn
	if rand.IntN(100) < lg.config.BorrowWeight { //nolint:gosec
		scenario = scenarioBorrow
	}

	var err error
	switch scenario {
	case scenarioBorrow:
		err = lg.borrowRandomBook(opCtx, member)
	default:
		err = lg.returnRandomLoan(opCtx, member)
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.requests++

	switch {
	case err == nil:
	case isExpectedRejection(err):
		lg.rejected++
	case ctx.Err() != nil:
		// the run ended while the request was in flight
	default:
		lg.errors++
		lg.logger.Warn("scenario failed", "scenario", scenario, "user_id", member.UserID, "error", err.Error())
	}
}

func (lg *LoadGenerator) borrowRandomBook(ctx context.Context, member Member) error {
	lg.mu.RLock()
	book := lg.books[rand.IntN(len(lg.books))] //nolint:gosec
	lg.mu.RUnlock()

	_, err := member.API.Borrow(ctx, client.BorrowInput{Book: book.ID})

	return err
}

// returnRandomLoan returns one of the member's open loans, borrowing instead if there is none.
func (lg *LoadGenerator) returnRandomLoan(ctx context.Context, member Member) error {
	userID := member.UserID

	loans, err := member.API.ListLoans(ctx, client.LoanFilter{User: &userID, Status: "borrowed"})
	if err != nil {
		return err
	}

	if len(loans) == 0 {
		return lg.borrowRandomBook(ctx, member)
	}

	_, err = member.API.ReturnLoan(ctx, loans[rand.IntN(len(loans))].ID) //nolint:gosec

	return err
}

func (lg *LoadGenerator) statsReporter(ctx context.Context) {
	defer lg.wg.Done()

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lg.stopChan:
			return
		case <-ticker.C:
			lg.logStats("load generator stats")
		}
	}
}

func (lg *LoadGenerator) logStats(message string) {
	stats := lg.Stats()
	if stats.Elapsed <= 0 || stats.Requests == 0 {
		return
	}

	lg.logger.Info(message,
		"requests", stats.Requests,
		"elapsed", stats.Elapsed.Truncate(time.Second).String(),
		"requests_per_second", float64(stats.Requests)/stats.Elapsed.Seconds(),
		"rejected", stats.Rejected,
		"errors", stats.Errors,
	)
}

// isExpectedRejection reports the 400 responses that contention produces, e.g. no copy left.
func isExpectedRejection(err error) bool {
	return client.StatusOf(err) == http.StatusBadRequest
}
