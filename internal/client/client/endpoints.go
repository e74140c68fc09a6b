package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
)

type loginResponse struct {
	Access  string             `json:"access"`
	Refresh string             `json:"refresh"`
	User    *models.UserRecord `json:"user"`
}

// Login exchanges credentials for session tokens. The service does not
// always include a user object in the response; when it is absent a minimal
// record is synthesized from the login name and replaced by the next
// profile fetch.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, pathLogin,
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("login response is missing the access token")
	}

	user := resp.User
	if user == nil {
		user = &models.UserRecord{Username: username}
	}
	return &LoginResult{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
		User:         user,
	}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, pathRegister, req, nil)
}

// Logout revokes the refresh token on the server. Having nothing to revoke
// is not an error; the session controller clears local state regardless of
// the outcome here.
func (c *HTTPClient) Logout(ctx context.Context) error {
	refreshToken := c.store.Load(ctx).RefreshToken
	if refreshToken == "" {
		return nil
	}
	return c.doJSON(ctx, http.MethodPost, pathLogout,
		map[string]string{"refresh": refreshToken}, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.UserRecord, error) {
	var user models.UserRecord
	if err := c.doJSON(ctx, http.MethodGet, pathProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, user models.UserRecord) (*models.UserRecord, error) {
	var updated models.UserRecord
	if err := c.doJSON(ctx, http.MethodPut, pathProfile, user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Analyze uploads an image with optional context fields as multipart form
// data. The form is buffered up front so the post-refresh retry can replay
// it byte for byte.
func (c *HTTPClient) Analyze(ctx context.Context, req AnalyzeRequest) (any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if req.Symptoms != "" {
		if err := w.WriteField("symptoms", req.Symptoms); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if req.AdditionalInfo != "" {
		if err := w.WriteField("additional_info", req.AdditionalInfo); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	var out any
	err = c.do(ctx, http.MethodPost, pathAnalyze,
		payload{data: buf.Bytes(), contentType: w.FormDataContentType()}, &out, 0)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) History(ctx context.Context, page, limit int) (any, error) {
	var out any
	path := fmt.Sprintf("%s?page=%d&limit=%d", pathHistory, page, limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, id string) (any, error) {
	var out any
	path := pathAnalyze + url.PathEscape(id) + "/"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
