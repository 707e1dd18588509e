package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens Tokens
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAccessToken starts the client with a token obtained elsewhere.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.tokens.Access = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tokens returns the tokens of the last Login or Refresh.
func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tokens
}

func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	var tokens Tokens
	payload := map[string]string{"username": username, "password": password}

	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", payload, &tokens); err != nil {
		return Tokens{}, err
	}

	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()

	return tokens, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var response struct {
		Access string `json:"access"`
	}

	payload := map[string]string{"refresh": c.Tokens().Refresh}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh/", payload, &response); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.tokens.Access = response.Access
	c.mu.Unlock()

	return response.Access, nil
}

func (c *Client) Me(ctx context.Context) (Me, error) {
	var me Me
	err := c.do(ctx, http.MethodGet, "/api/users/me/", nil, &me)

	return me, err
}

func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	err := c.do(ctx, http.MethodGet, "/api/books/", nil, &books)

	return books, err
}

func (c *Client) GetBook(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodGet, resourcePath("books", id), nil, &book)

	return book, err
}

func (c *Client) CreateBook(ctx context.Context, input BookInput) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodPost, "/api/books/", input, &book)

	return book, err
}

func (c *Client) UpdateBook(ctx context.Context, id int64, input BookInput) (Book, error) {
	var book Book
	err := c.do(ctx, http.MethodPut, resourcePath("books", id), input, &book)

	return book, err
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourcePath("books", id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/api/users/", nil, &users)

	return users, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, resourcePath("users", id), nil, &user)

	return user, err
}

// CreateUser registers a user. It works without logging in.
func (c *Client) CreateUser(ctx context.Context, input UserInput) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/api/users/", input, &user)

	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, id int64, input UserInput) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPut, resourcePath("users", id), input, &user)

	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourcePath("users", id), nil, nil)
}

func (c *Client) ListLoans(ctx context.Context, filter LoanFilter) ([]Loan, error) {
	query := url.Values{}
	if filter.User != nil {
		query.Set("user", strconv.FormatInt(*filter.User, 10))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}

	path := "/api/loans/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var loans []Loan
	err := c.do(ctx, http.MethodGet, path, nil, &loans)

	return loans, err
}

func (c *Client) GetLoan(ctx context.Context, id int64) (Loan, error) {
	var loan Loan
	err := c.do(ctx, http.MethodGet, resourcePath("loans", id), nil, &loan)

	return loan, err
}

func (c *Client) Borrow(ctx context.Context, input BorrowInput) (Loan, error) {
	var loan Loan
	err := c.do(ctx, http.MethodPost, "/api/loans/", input, &loan)

	return loan, err
}

func (c *Client) ReturnLoan(ctx context.Context, id int64) (Loan, error) {
	var loan Loan
	err := c.do(ctx, http.MethodPost, resourcePath("loans", id)+"return/", nil, &loan)

	return loan, err
}

func resourcePath(resource string, id int64) string {
	return fmt.Sprintf("/api/%s/%d/", resource, id)
}

func (c *Client) do(ctx context.Context, method, path string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		raw, err := jsoniter.ConfigFastest.Marshal(payload)
		if err != nil {
			return errors.Join(ErrEncodingFailed, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Tokens().Access; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp.StatusCode, raw)
	}

	if target == nil || len(raw) == 0 {
		return nil
	}

	if err = jsoniter.ConfigFastest.Unmarshal(raw, target); err != nil {
		return errors.Join(ErrDecodingFailed, err)
	}

	return nil
}

func apiErrorFrom(status int, raw []byte) *APIError {
	var body struct {
		Detail string `json:"detail"`
	}

	if err := jsoniter.ConfigFastest.Unmarshal(raw, &body); err != nil || body.Detail == "" {
		body.Detail = http.StatusText(status)
	}

	return &APIError{Status: status, Detail: body.Detail}
}
