package analysis

import (
	"context"
	"fmt"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

// Service exposes the analysis operations to the view layer. Responses pass
// through the normalizer so the views only ever see canonical records;
// history is always re-fetched from the service, never cached locally.
type Service struct {
	client client.Client
	log    logging.Logger
}

func NewService(c client.Client, log logging.Logger) *Service {
	return &Service{client: c, log: log.With("component", "analysis")}
}

// Analyze submits an image for analysis and returns the resulting record.
func (s *Service) Analyze(ctx context.Context, req client.AnalyzeRequest) (Record, error) {
	raw, err := s.client.Analyze(ctx, req)
	if err != nil {
		return Record{}, err
	}
	rec, err := Normalize(raw)
	if err != nil {
		s.log.Error(ctx, "analysis response is not usable", "error", err)
		return Record{}, fmt.Errorf("analysis response: %w", err)
	}
	return rec, nil
}

// History fetches one page of past analyses. Malformed entries are logged
// and dropped rather than failing the whole page.
func (s *Service) History(ctx context.Context, page, limit int) ([]Record, error) {
	raw, err := s.client.History(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	records, skipped := NormalizeList(raw)
	if skipped > 0 {
		s.log.Warn(ctx, "dropped malformed history records", "count", skipped, "page", page)
	}
	return records, nil
}

// Get fetches a single analysis by ID.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	raw, err := s.client.GetAnalysis(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec, err := Normalize(raw)
	if err != nil {
		s.log.Error(ctx, "analysis response is not usable", "id", id, "error", err)
		return Record{}, fmt.Errorf("analysis %s: %w", id, err)
	}
	return rec, nil
}
