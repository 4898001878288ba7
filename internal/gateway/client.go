// Package gateway is the HTTP half of the connection to the room server.
package gateway

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

	"room-client/internal/models"
	"room-client/pkg/logger"
)

// RequestError is returned for any response outside 2xx and for bodies that
// could not be decoded.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Do sends body as JSON and decodes the response into out, when out is not
// nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	logger.Debug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(resp, respBody)}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{Method: method, Path: path, Status: resp.StatusCode, Message: "invalid response body: " + err.Error()}
	}
	return nil
}

func errorMessage(resp *http.Response, body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Errors  []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Error != "":
			return e.Error
		case e.Message != "":
			return e.Message
		case len(e.Errors) > 0 && e.Errors[0].Title != "":
			return e.Errors[0].Title
		}
	}
	return http.StatusText(resp.StatusCode)
}

// Now fetches the room snapshot the session starts from.
func (c *Client) Now(ctx context.Context) (*models.NowResponse, error) {
	var now models.NowResponse
	if err := c.Do(ctx, http.MethodGet, "/v1/now", nil, &now); err != nil {
		return nil, err
	}
	return &now, nil
}

func (c *Client) SkipBooth(ctx context.Context, userID, reason string, remove bool) error {
	body := struct {
		UserID string `json:"userID"`
		Reason string `json:"reason"`
		Remove bool   `json:"remove"`
	}{userID, reason, remove}
	return c.Do(ctx, http.MethodPost, "/v1/booth/skip", body, nil)
}

func (c *Client) RemoveFromWaitlist(ctx context.Context, userID string) error {
	return c.Do(ctx, http.MethodDelete, "/v1/waitlist/"+url.PathEscape(userID), nil, nil)
}

func (c *Client) MoveInWaitlist(ctx context.Context, userID string, position int) error {
	body := struct {
		UserID   string `json:"userID"`
		Position int    `json:"position"`
	}{userID, position}
	return c.Do(ctx, http.MethodPut, "/v1/waitlist/move", body, nil)
}

func (c *Client) DeleteChatMessage(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/v1/chat/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DeleteChatByUser(ctx context.Context, userID string) error {
	return c.Do(ctx, http.MethodDelete, "/v1/chat/user/"+url.PathEscape(userID), nil, nil)
}

func (c *Client) DeleteAllChat(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/v1/chat", nil, nil)
}
