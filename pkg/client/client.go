// Package client is a typed HTTP client for the budget tracker API. The
// session cookie set at login is kept in a cookie jar; a bearer token can be
// used instead for non-browser callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"budgettracker/pkg/money"
)

// APIError is a non-2xx response decoded from the server's {message, field} body.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer header on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8081/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Token returns the bearer token captured at the last signup or login.
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Field   string `json:"field"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message, apiErr.Field = payload.Message, payload.Field
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type sessionResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*User, error) {
	var out sessionResponse
	body := map[string]string{"email": email, "password": password, "fullName": fullName}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out sessionResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.User, nil
}

// Logout clears the server cookie and forgets the bearer token.
func (c *Client) Logout(ctx context.Context) error {
	c.token = ""
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name, color string) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name, "color": color}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory sends only the non-nil fields.
func (c *Client) UpdateCategory(ctx context.Context, id string, name, color *string) (*Category, error) {
	body := map[string]*string{}
	if name != nil {
		body["name"] = name
	}
	if color != nil {
		body["color"] = color
	}
	var out Category
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) (*DeleteCategoryResult, error) {
	var out DeleteCategoryResult
	if err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Budgets(ctx context.Context, month string) ([]Budget, error) {
	var out []Budget
	err := c.do(ctx, http.MethodGet, "/budgets?month="+url.QueryEscape(month), nil, &out)
	return out, err
}

func (c *Client) UpsertBudget(ctx context.Context, categoryID, month string, limit money.Amount) (*Budget, error) {
	body := struct {
		CategoryID string       `json:"categoryId"`
		Month      string       `json:"month"`
		Limit      money.Amount `json:"limit"`
	}{categoryID, month, limit}
	var out Budget
	if err := c.do(ctx, http.MethodPost, "/budgets", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/budgets/"+url.PathEscape(id), nil, nil)
}

// Expenses lists a month's expenses, optionally for one category.
func (c *Client) Expenses(ctx context.Context, month, categoryID string) ([]Expense, error) {
	q := url.Values{"month": {month}}
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}
	var out []Expense
	err := c.do(ctx, http.MethodGet, "/expenses?"+q.Encode(), nil, &out)
	return out, err
}

// ExpensesInRange lists expenses between two YYYY-MM-DD days, inclusive.
func (c *Client) ExpensesInRange(ctx context.Context, start, end string) ([]Expense, error) {
	q := url.Values{"start": {start}, "end": {end}}
	var out []Expense
	err := c.do(ctx, http.MethodGet, "/expenses/range?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) Expense(ctx context.Context, id string) (*Expense, error) {
	var out Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateExpense(ctx context.Context, in ExpenseInput) (*ExpenseResult, error) {
	var out ExpenseResult
	if err := c.do(ctx, http.MethodPost, "/expenses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (*Expense, error) {
	var out Expense
	if err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Summary(ctx context.Context, month string) (*MonthlySummary, error) {
	var out MonthlySummary
	if err := c.do(ctx, http.MethodGet, "/reports/summary?month="+url.QueryEscape(month), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
