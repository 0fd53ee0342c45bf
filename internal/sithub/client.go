package sithub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/sithub-client/pkg/random"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = time.Second

	retryJitterPercent = 20
)

// Client is a SitHub JSON:API client. The session cookie set by Login is
// kept in the client's cookie jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	retries    int
	retryDelay time.Duration

	mu          sync.Mutex
	currentUser *User
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.httpClient.Jar
		}
		c.httpClient = hc
	}
}

// WithRetries sets how often idempotent requests are attempted and the base
// delay between attempts
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.retries = attempts
		c.retryDelay = delay
	}
}

// NewClient creates a client for the SitHub server at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger:     logger,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Areas lists all areas
func (c *Client) Areas(ctx context.Context) ([]Resource[Area], error) {
	var resp CollectionResponse[Area]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/areas", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return resp.Data, nil
}

// ItemGroups lists the item groups of an area
func (c *Client) ItemGroups(ctx context.Context, areaID string) ([]Resource[ItemGroup], error) {
	var resp CollectionResponse[ItemGroup]
	path := "/api/v1/areas/" + url.PathEscape(areaID) + "/item-groups"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list item groups of %s: %w", areaID, err)
	}
	return resp.Data, nil
}

// Items lists the items of an item group with their availability on date.
// An empty date lets the server pick today.
func (c *Client) Items(ctx context.Context, itemGroupID, date string) ([]Resource[Item], error) {
	var resp CollectionResponse[Item]
	path := "/api/v1/item-groups/" + url.PathEscape(itemGroupID) + "/items"
	if err := c.doRequest(ctx, http.MethodGet, path, dateQuery(date), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list items of %s: %w", itemGroupID, err)
	}
	return resp.Data, nil
}

// ItemGroupBookings lists the bookings of an item group on date
func (c *Client) ItemGroupBookings(ctx context.Context, itemGroupID, date string) ([]Resource[ItemGroupBooking], error) {
	var resp CollectionResponse[ItemGroupBooking]
	path := "/api/v1/item-groups/" + url.PathEscape(itemGroupID) + "/bookings"
	if err := c.doRequest(ctx, http.MethodGet, path, dateQuery(date), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list bookings of %s: %w", itemGroupID, err)
	}
	return resp.Data, nil
}

// WeeklyAvailability returns per-day availability of every item group in an
// area for an ISO week ("YYYY-Www"). An empty week means the current week.
func (c *Client) WeeklyAvailability(ctx context.Context, areaID, week string, includeWeekends bool) ([]Resource[ItemGroupAvailability], error) {
	query := url.Values{}
	if week != "" {
		query.Set("week", week)
	}
	if includeWeekends {
		query.Set("days", "7")
	}

	var resp CollectionResponse[ItemGroupAvailability]
	path := "/api/v1/areas/" + url.PathEscape(areaID) + "/item-groups/availability"
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get availability of %s for %s: %w", areaID, week, err)
	}
	return resp.Data, nil
}

// AreaPresence lists who is booked into an area on date
func (c *Client) AreaPresence(ctx context.Context, areaID, date string) ([]Resource[Presence], error) {
	var resp CollectionResponse[Presence]
	path := "/api/v1/areas/" + url.PathEscape(areaID) + "/presence"
	if err := c.doRequest(ctx, http.MethodGet, path, dateQuery(date), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get presence of %s: %w", areaID, err)
	}
	return resp.Data, nil
}

// MyBookings lists the upcoming bookings of the current user
func (c *Client) MyBookings(ctx context.Context) ([]Resource[MyBooking], error) {
	var resp CollectionResponse[MyBooking]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/bookings", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return resp.Data, nil
}

// BookingHistory lists past bookings between from and to (YYYY-MM-DD,
// either may be empty for the server default of the last 30 days)
func (c *Client) BookingHistory(ctx context.Context, from, to string) ([]Resource[MyBooking], error) {
	query := url.Values{}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}

	var resp CollectionResponse[MyBooking]
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/bookings/history", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list booking history: %w", err)
	}
	return resp.Data, nil
}

// CreateBooking books an item for one date
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Resource[Booking], error) {
	var payload createBookingPayload
	payload.Data.Type = "bookings"
	payload.Data.Attributes = createBookingAttributes{
		ItemID:      req.ItemID,
		BookingDate: req.Date,
		Note:        req.Note,
		ForUserID:   req.ForUserID,
		ForUserName: req.ForUserName,
	}

	var resp SingleResponse[Booking]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/bookings", nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to book %s on %s: %w", req.ItemID, req.Date, err)
	}

	c.logger.Info("Booking created",
		zap.String("booking_id", resp.Data.ID),
		zap.String("item_id", req.ItemID),
		zap.String("date", req.Date))

	return &resp.Data, nil
}

// UpdateBookingNote replaces the note of a booking
func (c *Client) UpdateBookingNote(ctx context.Context, bookingID, note string) (*Resource[Booking], error) {
	var payload updateNotePayload
	payload.Data.Type = "bookings"
	payload.Data.ID = bookingID
	payload.Data.Attributes.Note = note

	var resp SingleResponse[Booking]
	path := "/api/v1/bookings/" + url.PathEscape(bookingID)
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to update note of booking %s: %w", bookingID, err)
	}
	return &resp.Data, nil
}

// CancelBooking deletes a booking
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	path := "/api/v1/bookings/" + url.PathEscape(bookingID)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}

	c.logger.Info("Booking cancelled", zap.String("booking_id", bookingID))
	return nil
}

func dateQuery(date string) url.Values {
	if date == "" {
		return nil
	}
	return url.Values{"date": []string{date}}
}

// doRequest performs an HTTP request. GET requests are retried on network
// errors and 5xx responses; everything else is attempted once.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.doRequestOnce(ctx, method, target, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return err
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}

		c.logger.Warn("Request failed, retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(random.Jitter(c.retryDelay*time.Duration(attempt), retryJitterPercent)):
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

// doRequestOnce performs a single HTTP request
func (c *Client) doRequestOnce(ctx context.Context, method, target string, payload []byte, result interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", MediaType)
	if payload != nil {
		req.Header.Set("Content-Type", MediaType)
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var doc ErrorResponse
	if err := json.Unmarshal(body, &doc); err == nil {
		for _, e := range doc.Errors {
			if e.Detail != "" {
				apiErr.Detail = e.Detail
				break
			}
			if apiErr.Detail == "" && e.Title != "" {
				apiErr.Detail = e.Title
			}
		}
	}
	return apiErr
}
