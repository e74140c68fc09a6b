package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/credentials"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

// Endpoint paths, relative to the configured base URL.
const (
	pathLogin    = "/auth/login/"
	pathRegister = "/auth/register/"
	pathRefresh  = "/auth/refresh/"
	pathLogout   = "/auth/logout/"
	pathProfile  = "/auth/profile/"
	pathAnalyze  = "/analysis/analyze/"
	pathHistory  = "/analysis/history/"
)

const contentTypeJSON = "application/json"

// HTTPClient implements Client over the service's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	store   *credentials.Store
	log     logging.Logger
	refresh singleflight.Group
	now     func() time.Time
}

func NewHTTPClient(baseURL string, timeout time.Duration, store *credentials.Store, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
		log:     log.With("component", "api"),
		now:     time.Now,
	}
}

// payload is a request body kept as bytes so the post-refresh retry can
// replay it.
type payload struct {
	data        []byte
	contentType string
}

// do sends one request, recovering from an authorization failure at most
// once. The attempt counter is threaded explicitly through the retry call,
// so a retried request can never re-enter recovery even if it is rejected
// again.
func (c *HTTPClient) do(ctx context.Context, method, path string, p payload, out any, attempt int) error {
	token := c.store.Load(ctx).AccessToken

	// A token that already reads as expired is guaranteed a 401; refresh
	// up front instead of burning a round trip.
	if token != "" && attempt == 0 && tokenExpired(token, c.now()) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return err
		}
		token = c.store.Load(ctx).AccessToken
	}

	status, body, err := c.send(ctx, method, path, p, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && token != "" && attempt == 0 {
		if err := c.refreshAccessToken(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, p, out, attempt+1)
	}

	return decodeResponse(status, body, out)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var p payload
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		p = payload{data: data, contentType: contentTypeJSON}
	}
	return c.do(ctx, method, path, p, out, 0)
}

// send performs a single HTTP round trip and reads the full body. A nil
// error means a response was received; transport failures come back wrapped
// and are recognizable via IsNetworkError.
func (c *HTTPClient) send(ctx context.Context, method, path string, p payload, token string) (int, []byte, error) {
	var body io.Reader
	if p.data != nil {
		body = bytes.NewReader(p.data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug(ctx, "request completed",
		"method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)
	return resp.StatusCode, data, nil
}

// refreshAccessToken mints a new access token from the stored refresh token.
// Concurrent callers share one in-flight refresh: singleflight makes the
// check "is a refresh running" and "start one" a single atomic step, so N
// requests failing at once produce exactly one refresh call, and all of them
// observe the same outcome.
func (c *HTTPClient) refreshAccessToken(ctx context.Context) error {
	_, err, shared := c.refresh.Do("refresh", func() (any, error) {
		creds := c.store.Load(ctx)
		if creds.RefreshToken == "" {
			return nil, fmt.Errorf("no refresh token: %w", common.ErrUnauthorized)
		}

		data, err := json.Marshal(map[string]string{"refresh": creds.RefreshToken})
		if err != nil {
			return nil, fmt.Errorf("failed to encode refresh request: %w", err)
		}

		status, body, err := c.send(ctx, http.MethodPost, pathRefresh,
			payload{data: data, contentType: contentTypeJSON}, "")
		if err != nil {
			// Transport failure is transient: keep the credentials so the
			// session survives a flaky network.
			return nil, err
		}
		if status != http.StatusOK {
			c.log.Info(ctx, "session refresh rejected", "status", status)
			_ = c.store.Clear(ctx)
			return nil, fmt.Errorf("refresh rejected with status %d: %w", status, common.ErrUnauthorized)
		}

		var tr struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		if err := json.Unmarshal(body, &tr); err != nil || tr.Access == "" {
			_ = c.store.Clear(ctx)
			return nil, fmt.Errorf("unusable refresh response: %w", common.ErrUnauthorized)
		}

		creds.AccessToken = tr.Access
		if tr.Refresh != "" {
			creds.RefreshToken = tr.Refresh
		}
		if err := c.store.Save(ctx, creds); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		c.log.Info(ctx, "access token refreshed")
		return nil, nil
	})
	if shared {
		c.log.Debug(ctx, "joined in-flight token refresh")
	}
	return err
}

// decodeResponse maps a received response to the error taxonomy and decodes
// the body into out on success.
func decodeResponse(status int, body []byte, out any) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &StatusError{Status: status, Body: string(body)}
		}
		return nil
	case status == http.StatusUnauthorized:
		return &AuthError{Detail: extractDetail(body)}
	case status >= 400 && status < 500:
		return validationError(status, body)
	default:
		return &StatusError{Status: status, Body: string(body)}
	}
}

// extractDetail pulls the human-readable message out of an error body, if
// the service provided one.
func extractDetail(body []byte) string {
	var raw struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	if raw.Detail != "" {
		return raw.Detail
	}
	return raw.Error
}

// validationError extracts field-level detail from a 4xx body. The service
// reports either {"detail": msg}, {"error": msg}, or {field: [messages]}.
func validationError(status int, body []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return &StatusError{Status: status, Body: string(body)}
	}

	ve := &ValidationError{Status: status, Fields: map[string][]string{}}
	for field, v := range raw {
		switch value := v.(type) {
		case string:
			if field == "detail" || field == "error" {
				ve.Detail = value
				continue
			}
			ve.Fields[field] = []string{value}
		case []any:
			msgs := make([]string, 0, len(value))
			for _, m := range value {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
			ve.Fields[field] = msgs
		}
	}
	return ve
}
