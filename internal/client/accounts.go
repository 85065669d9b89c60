package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
)

// ErrAccountNotFound is returned when the directory has no such account.
var ErrAccountNotFound = errors.New("account not found")

// AccountDirectory resolves display names of accounts owned by the
// accounts service.
type AccountDirectory interface {
	DisplayName(ctx context.Context, owner db.Owner) (string, error)
}

type httpAccountDirectory struct {
	baseURL string // e.g. "http://accounts:8080/api/internal"
	http    *http.Client
	log     *slog.Logger
}

// NewAccountHTTPClient builds the directory client. An empty baseURL yields
// a directory that never finds anyone, so callers fall back to defaults.
func NewAccountHTTPClient(baseURL string, timeout time.Duration) AccountDirectory {
	if strings.TrimSpace(baseURL) == "" {
		return NoopDirectory{}
	}
	return &httpAccountDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     slog.Default().With(slog.String("layer", "client"), slog.String("client", "accounts")),
	}
}

// DisplayName calls GET /users/{id}.
func (c *httpAccountDirectory) DisplayName(ctx context.Context, owner db.Owner) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(owner.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build accounts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("accounts call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrAccountNotFound
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("accounts returned %s: %s", resp.Status, raw)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	c.log.Debug("display-name:response", "owner", owner.ID, "body", string(raw))

	// The accounts service answers either with the bare user or with the
	// {message, data, timestamp} envelope.
	var payload struct {
		Name string `json:"name"`
		Data *struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode account: %w", err)
	}

	name := payload.Name
	if payload.Data != nil && payload.Data.Name != "" {
		name = payload.Data.Name
	}
	if name = strings.TrimSpace(name); name == "" {
		return "", ErrAccountNotFound
	}
	return name, nil
}

// NoopDirectory knows no accounts.
type NoopDirectory struct{}

func (NoopDirectory) DisplayName(context.Context, db.Owner) (string, error) {
	return "", ErrAccountNotFound
}
