package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient implements client.Client for service unit tests. Only the
// analysis endpoints do anything.
type fakeClient struct {
	AnalyzeRes  any
	AnalyzeErr  error
	HistoryRes  any
	HistoryErr  error
	AnalysisRes any
	AnalysisErr error

	LastAnalyze client.AnalyzeRequest
	LastPage    int
	LastLimit   int
	LastID      string
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*client.LoginResult, error) {
	return nil, nil
}
func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) error { return nil }
func (f *fakeClient) Logout(ctx context.Context) error                               { return nil }
func (f *fakeClient) GetProfile(ctx context.Context) (*models.UserRecord, error)     { return nil, nil }
func (f *fakeClient) UpdateProfile(ctx context.Context, user models.UserRecord) (*models.UserRecord, error) {
	return &user, nil
}

func (f *fakeClient) Analyze(ctx context.Context, req client.AnalyzeRequest) (any, error) {
	f.LastAnalyze = req
	return f.AnalyzeRes, f.AnalyzeErr
}

func (f *fakeClient) History(ctx context.Context, page, limit int) (any, error) {
	f.LastPage = page
	f.LastLimit = limit
	return f.HistoryRes, f.HistoryErr
}

func (f *fakeClient) GetAnalysis(ctx context.Context, id string) (any, error) {
	f.LastID = id
	return f.AnalysisRes, f.AnalysisErr
}

func (f *fakeClient) Close() error { return nil }

func TestService_AnalyzeNormalizesResponse(t *testing.T) {
	fake := &fakeClient{AnalyzeRes: map[string]any{
		"id":     float64(9),
		"result": "Mahali disease",
	}}
	s := NewService(fake, testLogger())

	rec, err := s.Analyze(context.Background(), client.AnalyzeRequest{Filename: "leaf.jpg"})
	require.NoError(t, err)
	require.Equal(t, "9", rec.ID)
	require.Equal(t, "Mahali disease", rec.ResultText)
	require.Equal(t, "leaf.jpg", fake.LastAnalyze.Filename)
}

func TestService_AnalyzeMalformedResponseFails(t *testing.T) {
	fake := &fakeClient{AnalyzeRes: "not an object"}
	s := NewService(fake, testLogger())

	_, err := s.Analyze(context.Background(), client.AnalyzeRequest{})
	require.ErrorIs(t, err, common.ErrMalformedRecord)
}

func TestService_AnalyzePropagatesClientError(t *testing.T) {
	wantErr := fmt.Errorf("boom")
	fake := &fakeClient{AnalyzeErr: wantErr}
	s := NewService(fake, testLogger())

	_, err := s.Analyze(context.Background(), client.AnalyzeRequest{})
	require.ErrorIs(t, err, wantErr)
}

func TestService_HistoryDropsMalformedEntries(t *testing.T) {
	fake := &fakeClient{HistoryRes: map[string]any{
		"results": []any{
			map[string]any{"id": "1", "result": "healthy"},
			"garbage",
			map[string]any{"id": "2", "result": "koleroga"},
		},
	}}
	s := NewService(fake, testLogger())

	records, err := s.History(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 3, fake.LastPage)
	require.Equal(t, 10, fake.LastLimit)
}

func TestService_HistoryPropagatesClientError(t *testing.T) {
	wantErr := fmt.Errorf("boom")
	fake := &fakeClient{HistoryErr: wantErr}
	s := NewService(fake, testLogger())

	_, err := s.History(context.Background(), 1, 10)
	require.ErrorIs(t, err, wantErr)
}

func TestService_GetNormalizesResponse(t *testing.T) {
	fake := &fakeClient{AnalysisRes: map[string]any{"id": "7", "result": "healthy"}}
	s := NewService(fake, testLogger())

	rec, err := s.Get(context.Background(), "7")
	require.NoError(t, err)
	require.Equal(t, "7", rec.ID)
	require.Equal(t, "7", fake.LastID)
}

func TestService_GetMalformedResponseFails(t *testing.T) {
	fake := &fakeClient{AnalysisRes: []any{}}
	s := NewService(fake, testLogger())

	_, err := s.Get(context.Background(), "7")
	require.ErrorIs(t, err, common.ErrMalformedRecord)
}
