// Package client talks to the arcade API over HTTP. Client implements the
// backend of play.Arcade.
package client

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

	"github.com/ashureev/tiny-arcade/internal/api"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
)

// StatusError is an API error response with no matching domain error.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("arcade api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("arcade api: %d %s", e.Status, e.Code)
}

var codeErrors = map[string]error{
	api.CodeInvalidGame:      gameplay.ErrInvalidGame,
	api.CodeSessionNotFound:  gameplay.ErrSessionNotFound,
	api.CodeUnknownItem:      gameplay.ErrUnknownItem,
	api.CodeAlreadyAnswered:  gameplay.ErrAlreadyAnswered,
	api.CodeSessionCompleted: gameplay.ErrSessionCompleted,
}

// Client calls a remote arcade API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080".
// A nil httpClient uses one with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Start begins a session.
func (c *Client) Start(ctx context.Context, gameID domain.GameID, playerLabel string) (gameplay.Summary, error) {
	var out gameplay.Summary
	err := c.do(ctx, http.MethodPost, "/api/gameplay/start", api.StartRequest{GameID: gameID, PlayerLabel: playerLabel}, &out)
	return out, err
}

// Content returns the content set of a session.
func (c *Client) Content(ctx context.Context, sessionID string) ([]domain.ContentItem, error) {
	var out struct {
		Items []domain.ContentItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "content"), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Submit records one answer.
func (c *Client) Submit(ctx context.Context, sessionID, itemID, value string, timeSpent time.Duration) (gameplay.AnswerResult, error) {
	req := api.AnswerRequest{
		ItemID:    itemID,
		Value:     api.AnswerValue(value),
		TimeSpent: timeSpent.Seconds(),
	}
	var out gameplay.AnswerResult
	err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "answer"), req, &out)
	return out, err
}

// End finalizes a session.
func (c *Client) End(ctx context.Context, sessionID string) (domain.Result, error) {
	var out api.EndResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "end"), nil, &out); err != nil {
		return domain.Result{}, err
	}
	return out.Result, nil
}

// Games lists the catalog.
func (c *Client) Games(ctx context.Context) ([]domain.Game, error) {
	var out api.GameList
	if err := c.do(ctx, http.MethodGet, "/api/games", nil, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

func sessionPath(sessionID, action string) string {
	return "/api/gameplay/" + url.PathEscape(sessionID) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body api.ErrorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return &StatusError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	}
	if target, ok := codeErrors[body.Error]; ok {
		if body.Message == "" {
			return target
		}
		return fmt.Errorf("%w: %s", target, strings.TrimPrefix(body.Message, target.Error()+": "))
	}
	return &StatusError{Status: resp.StatusCode, Code: body.Error, Message: body.Message}
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
