package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the typed client for the upstream ChMS REST backend. Every
// call runs under a per-request deadline so a hung upstream can never
// leave an engine busy-marker set forever.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a client for the upstream backend.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// do issues one request and decodes the response into out (when out is
// non-nil). Non-2xx responses become *Error with the upstream detail.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// readDetail pulls the human-readable message out of an error body.
// The upstream is inconsistent about the field name.
func readDetail(r io.Reader) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// ===========================
// 🔍 Directory

// FetchDirectory loads the full person directory snapshot.
func (c *Client) FetchDirectory(ctx context.Context) ([]Person, error) {
	var resp DirectoryResponse
	if err := c.do(ctx, "fetch directory", http.MethodGet, "/chms/cache/people", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CachedData, nil
}

// TriggerDirectoryRefresh asks the upstream to rebuild its people
// cache. Fire-and-forget on the backend side.
func (c *Client) TriggerDirectoryRefresh(ctx context.Context) error {
	return c.do(ctx, "trigger directory refresh", http.MethodPost, "/chms/cache/people/refresh", nil, nil)
}

// ===========================
// 📆 Events

// FetchEvents loads the event list with embedded sub-lists.
func (c *Client) FetchEvents(ctx context.Context) ([]RawEvent, error) {
	var resp EventListResponse
	if err := c.do(ctx, "fetch events", http.MethodGet, "/chms/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// FetchRealtime loads the authoritative check-in snapshot for one event.
func (c *Client) FetchRealtime(ctx context.Context, eventID string) (*RealtimeSnapshot, error) {
	var resp RealtimeSnapshot
	path := "/chms/events/" + url.PathEscape(eventID) + "/realtime"
	if err := c.do(ctx, "fetch realtime snapshot", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ToggleEventStatus closes or reopens an event. Closing an already
// closed event is idempotent: the upstream reports AlreadyClosed and
// keeps the original closing metadata.
func (c *Client) ToggleEventStatus(ctx context.Context, eventID, status, actor string) (*StatusToggleResult, error) {
	var resp StatusToggleResult
	path := "/chms/events/" + url.PathEscape(eventID) + "/status"
	body := map[string]string{"status": status, "actor": actor}
	if err := c.do(ctx, "toggle event status", http.MethodPatch, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ===========================
// ✅ Check-in

// CheckIn marks a person present, recording the snapshot fields
// carried in the request. A repeat check-in comes back with
// AlreadyCheckedIn set (or an "already checked in" message) and must
// be treated as success by callers.
func (c *Client) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	var resp CheckInResult
	if err := c.do(ctx, "check in", http.MethodPost, "/chms/checkin", req, &resp); err != nil {
		return nil, err
	}
	if !resp.AlreadyCheckedIn && strings.Contains(strings.ToLower(resp.Message), "already checked in") {
		resp.AlreadyCheckedIn = true
	}
	return &resp, nil
}

// RemoveFromCheckin removes a person from one of an event's
// categories: "attendee", "new_person" or "consolidation".
func (c *Client) RemoveFromCheckin(ctx context.Context, eventID, personID, category string) error {
	path := fmt.Sprintf("/chms/checkin/%s/%s?category=%s",
		url.PathEscape(eventID), url.PathEscape(personID), url.QueryEscape(category))
	return c.do(ctx, "remove from checkin", http.MethodDelete, path, nil, nil)
}

// ===========================
// 🧍 Person CRUD

func (c *Client) CreatePerson(ctx context.Context, p Person) (*Person, error) {
	var created Person
	if err := c.do(ctx, "create person", http.MethodPost, "/chms/people", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdatePerson(ctx context.Context, id string, p Person) (*Person, error) {
	var updated Person
	path := "/chms/people/" + url.PathEscape(id)
	if err := c.do(ctx, "update person", http.MethodPut, path, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeletePerson(ctx context.Context, id string) error {
	path := "/chms/people/" + url.PathEscape(id)
	return c.do(ctx, "delete person", http.MethodDelete, path, nil, nil)
}

// ===========================
// 🤝 Consolidations

func (c *Client) CreateConsolidation(ctx context.Context, req CreateConsolidationRequest) (*RawConsolidation, error) {
	var created RawConsolidation
	if err := c.do(ctx, "create consolidation", http.MethodPost, "/chms/consolidations", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ===========================
// 🔐 Operator login

// Login authenticates a station operator against the upstream backend.
func (c *Client) Login(ctx context.Context, username, password string) (*UpstreamUser, error) {
	var resp LoginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/chms/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Op: "login", StatusCode: http.StatusUnauthorized, Detail: "invalid credentials"}
	}
	return &resp.User, nil
}
