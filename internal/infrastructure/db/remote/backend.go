// Package remote is the HTTP-client backend: it speaks the gateway's JSON
// contract against another AgriConnect instance (or the original proxy).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agriconnect/platform/internal/core/ports"
)

// Config captures the settings for the remote backend.
type Config struct {
	// BaseURL is the gateway root, e.g. http://localhost:8080.
	BaseURL string
	// Token, when set, is sent as a bearer token on every request.
	Token string
	// Client defaults to http.DefaultClient. No timeout is imposed here;
	// callers bound requests through ctx.
	Client *http.Client
}

// Backend implements ports.DataBackend over the /api contract.
type Backend struct {
	base   string
	token  string
	client *http.Client
}

var _ ports.DataBackend = (*Backend)(nil)

// New builds a remote backend. It performs no I/O; connectivity is checked
// by the first Ping.
func New(cfg Config) *Backend {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Backend{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		token:  cfg.Token,
		client: client,
	}
}

type statementPayload struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type apiResponse struct {
	Success      bool        `json:"success"`
	Error        string      `json:"error"`
	Message      string      `json:"message"`
	Data         []ports.Row `json:"data"`
	LastInsertID int64       `json:"lastInsertId"`
	Changes      int64       `json:"changes"`
}

func (b *Backend) do(ctx context.Context, method, path string, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("remote: %s %s: status %d: %w", method, path, resp.StatusCode, err)
	}
	if !decoded.Success {
		// The gateway ships the backend message verbatim; pass it on the
		// same way.
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return &decoded, nil
}

func (b *Backend) Query(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	resp, err := b.do(ctx, http.MethodPost, "/api/query", statementPayload{SQL: sql, Params: normalize(params)})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (b *Backend) Run(ctx context.Context, sql string, params []any) (ports.RunResult, error) {
	resp, err := b.do(ctx, http.MethodPost, "/api/run", statementPayload{SQL: sql, Params: normalize(params)})
	if err != nil {
		return ports.RunResult{}, err
	}
	return ports.RunResult{LastInsertID: resp.LastInsertID, Changes: resp.Changes}, nil
}

func (b *Backend) Execute(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	resp, err := b.do(ctx, http.MethodPost, "/api/execute", statementPayload{SQL: sql, Params: normalize(params)})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (b *Backend) RunScript(ctx context.Context, script string) error {
	_, err := b.do(ctx, http.MethodPost, "/api/script", map[string]string{"script": script})
	return err
}

// ExportSnapshot and ImportSnapshot are not part of the remote contract; the
// serialized-blob operations only exist on the embedded engine.
func (b *Backend) ExportSnapshot(context.Context) ([]byte, error) {
	return nil, ports.ErrSnapshotUnsupported
}

func (b *Backend) ImportSnapshot(context.Context, []byte) error {
	return ports.ErrSnapshotUnsupported
}

func (b *Backend) ResetToSeed(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodPost, "/api/reset", nil)
	return err
}

// Ping hits the connectivity probe.
func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodGet, "/api/test", nil)
	return err
}

func (b *Backend) Close() error { return nil }

// normalize keeps the wire payload a JSON array even for nil params.
func normalize(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}
