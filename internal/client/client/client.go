// Package client is the transport layer for the ArecaNut disease-detection
// service: it injects the bearer token on outbound requests, recovers from
// authorization failures via a single-flight refresh, and maps responses to
// a typed error taxonomy. It performs no UI navigation and no session
// decisions; those belong to the session controller.
package client

import (
	"context"
	"io"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
)

// LoginResult carries the session material returned by a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.UserRecord
}

// RegisterRequest is the payload for account creation. Password2 is the
// confirmation field the service validates against Password.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AnalyzeRequest describes an image submission. Image is read once per
// request; Symptoms and AdditionalInfo are optional free-text fields.
type AnalyzeRequest struct {
	Image          io.Reader
	Filename       string
	Symptoms       string
	AdditionalInfo string
}

// Client defines the remote operations used by the session controller and
// the analysis service. Analysis endpoints return the decoded payload as-is
// because the service does not guarantee a stable envelope shape across
// versions; normalization happens in the analysis package.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) error
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*models.UserRecord, error)
	UpdateProfile(ctx context.Context, user models.UserRecord) (*models.UserRecord, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (any, error)
	History(ctx context.Context, page, limit int) (any, error)
	GetAnalysis(ctx context.Context, id string) (any, error)
	Close() error
}
