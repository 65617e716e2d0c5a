// Package festapi is the client for the festival REST backend that owns
// programs, payment orders and booking records.
package festapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"festbook/pkg/logger"
)

const (
	pathProgram         = "/api/programs/"
	pathCreateOrder     = "/api/program-bookings/create-order"
	pathCreateBooking   = "/api/program-bookings/create"
	pathStudentBookings = "/api/program-bookings/student/"

	maxErrorBody = 4 << 10
)

// Client talks to the festival backend
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a backend client. baseURL has no trailing slash.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// GetProgram fetches one program's details
func (c *Client) GetProgram(ctx context.Context, programID int64) (*Program, error) {
	var p Program
	if err := c.do(ctx, http.MethodGet, pathProgram+strconv.FormatInt(programID, 10), nil, &p); err != nil {
		return nil, err
	}
	if p.BookingType == "" {
		p.BookingType = BookingTypeSolo
	}
	return &p, nil
}

// CreateOrder asks the backend for a payment order
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.do(ctx, http.MethodPost, pathCreateOrder, req, &order); err != nil {
		return nil, err
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("festapi: create-order returned no order id")
	}
	return &order, nil
}

// CreateBooking submits a booking request
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	var b Booking
	if err := c.do(ctx, http.MethodPost, pathCreateBooking, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// StudentBookings lists every booking of a student
func (c *Client) StudentBookings(ctx context.Context, studentID int64) ([]Booking, error) {
	var out []Booking
	if err := c.do(ctx, http.MethodGet, pathStudentBookings+strconv.FormatInt(studentID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HasBooked reports whether the student already holds a booking for the program
func (c *Client) HasBooked(ctx context.Context, studentID, programID int64) (bool, error) {
	bookings, err := c.StudentBookings(ctx, studentID)
	if err != nil {
		return false, err
	}
	for _, b := range bookings {
		if b.ProgramID == programID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("festapi: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("festapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.LogUpstreamCall(ctx, method, path, 0, time.Since(start), err)
		return fmt.Errorf("festapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg}
		c.log.LogUpstreamCall(ctx, method, path, resp.StatusCode, time.Since(start), apiErr)
		return apiErr
	}
	c.log.LogUpstreamCall(ctx, method, path, resp.StatusCode, time.Since(start), nil)

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("festapi: decode %s response: %w", path, err)
	}
	return nil
}
