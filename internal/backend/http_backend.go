package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

type connectResponse struct {
	SessionID string `json:"sessionId"`
}

type authenticateRequest struct {
	Tokens map[string]string `json:"tokens"`
}

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// defaultCloseTimeout bounds session release when the client has no timeout.
const defaultCloseTimeout = 5 * time.Second

// HTTPBackend is an AuthBackend speaking JSON over HTTP.
type HTTPBackend struct {
	client *http.Client
}

var _ AuthBackend = (*HTTPBackend)(nil)

// NewHTTPBackend creates a backend client; timeout bounds every request.
func NewHTTPBackend(timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{client: &http.Client{Timeout: timeout}}
}

// NewHTTPBackendWithClient uses the given client as is.
func NewHTTPBackendWithClient(client *http.Client) *HTTPBackend {
	return &HTTPBackend{client: client}
}

// Connect opens a session: POST {endpoint}/api/sessions.
func (b *HTTPBackend) Connect(ctx context.Context, endpoint string) (Session, error) {
	base := strings.TrimRight(endpoint, "/")

	var resp connectResponse
	if err := b.do(ctx, "connect", http.MethodPost, base+"/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &Error{Op: "connect", Code: http.StatusBadGateway, Message: "backend returned no session id"}
	}

	log.Debug().Str("endpoint", base).Msg("Connected to auth backend")
	return &httpSession{backend: b, base: base, id: resp.SessionID}, nil
}

func (b *HTTPBackend) do(ctx context.Context, op, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Op: op, Code: CodeUnavailable, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return &Error{Op: op, Code: CodeUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Code: http.StatusBadGateway, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	return nil
}

// decodeError prefers the code in the error body and falls back to the HTTP status.
func decodeError(op string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var er errorResponse
	if err := json.Unmarshal(bodyBytes, &er); err == nil && er.Code != 0 {
		return &Error{Op: op, Code: er.Code, Message: er.Error}
	}
	return &Error{Op: op, Code: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
}

type httpSession struct {
	backend *HTTPBackend
	base    string
	id      string
}

// Authenticate submits the tokens: POST {endpoint}/api/sessions/{id}/authenticate.
func (s *httpSession) Authenticate(ctx context.Context, tokens *models.TokenBag) error {
	target := fmt.Sprintf("%s/api/sessions/%s/authenticate", s.base, url.PathEscape(s.id))
	return s.backend.do(ctx, "authenticate", http.MethodPost, target, authenticateRequest{Tokens: tokens.Tokens()}, nil)
}

// Close releases the session on the backend; failures are only logged. It is
// bounded by the client timeout, or defaultCloseTimeout when there is none.
func (s *httpSession) Close() error {
	timeout := s.backend.client.Timeout
	if timeout <= 0 {
		timeout = defaultCloseTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	target := fmt.Sprintf("%s/api/sessions/%s", s.base, url.PathEscape(s.id))
	if err := s.backend.do(ctx, "close", http.MethodDelete, target, nil, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to close auth backend session")
		return err
	}
	return nil
}
