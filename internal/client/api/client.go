// Package api is the HTTP client used by bookctl. It always sends the stored
// token and lets the server decide; the session only reacts to the outcome.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/isdelr/bookfinder-be/internal/client/session"
	"github.com/isdelr/bookfinder-be/internal/models"
)

// Error is a non-2xx response decoded from the server envelope.
type Error struct {
	Status   int
	Category string
	Message  string
}

func (e *Error) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Category, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	MobileNumber string      `json:"mobileNumber"`
	Role         models.Role `json:"role"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// Client talks to the BookFinder server on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for baseURL bound to sess.
func NewClient(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &user)
	return user, err
}

// Login exchanges credentials for a token and begins the session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResponse{}, err
	}
	if err := c.session.Begin(resp.Token); err != nil {
		return LoginResponse{}, fmt.Errorf("failed to store session: %w", err)
	}
	return resp, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// ListBooks returns the catalog, filtered by query when non-empty.
func (c *Client) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	path := "/api/books"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var books []models.Book
	err := c.do(ctx, http.MethodGet, path, nil, &books)
	return books, err
}

// GetBook fetches one book.
func (c *Client) GetBook(ctx context.Context, id string) (models.Book, error) {
	var book models.Book
	err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &book)
	return book, err
}

// CreateBook adds a book.
func (c *Client) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	var created models.Book
	err := c.do(ctx, http.MethodPost, "/api/books", book, &created)
	return created, err
}

// UpdateBook replaces a book's fields.
func (c *Client) UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error) {
	var updated models.Book
	err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), book, &updated)
	return updated, err
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, Category: env.Error, Message: env.Message}
		if sessErr := c.session.HandleStatus(resp.StatusCode); sessErr != nil {
			return fmt.Errorf("%w: %w", sessErr, apiErr)
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
