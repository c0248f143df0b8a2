package services

import (
	"context"
	"time"

	"github.com/loganomaly/rcaservice/internal/config"
	"github.com/loganomaly/rcaservice/internal/logger"
	"github.com/loganomaly/rcaservice/internal/models"
	"github.com/loganomaly/rcaservice/internal/repository"
)

// ExplanationGenerator produces a natural-language continuation for a prompt.
// Implemented by the generator package; stubbed in tests.
type ExplanationGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RCAQueryService is the read path over stored RCA records: it fetches rows,
// normalizes their fields into the output contract, and optionally enriches
// each record with a generated explanation.
type RCAQueryService struct {
	store     repository.RcaStore
	generator ExplanationGenerator
	genConfig config.GenerationConfig
}

func NewRCAQueryService(store repository.RcaStore, gen ExplanationGenerator, genConfig config.GenerationConfig) *RCAQueryService {
	return &RCAQueryService{
		store:     store,
		generator: gen,
		genConfig: genConfig,
	}
}

// FetchLatest returns the single most-recently-dated record, or
// repository.ErrNoResults when the store is empty.
func (s *RCAQueryService) FetchLatest(ctx context.Context) (*models.RcaResultResponse, error) {
	record, err := s.store.FetchLatest(ctx)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(*record)
	return &resp, nil
}

// FetchAll returns all records ordered by logdate descending.
func (s *RCAQueryService) FetchAll(ctx context.Context) ([]models.RcaResultResponse, error) {
	records, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]models.RcaResultResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, s.toResponse(record))
	}
	return responses, nil
}

// FetchAllWithExplanations is FetchAll with read-time enrichment: for every
// record the events are normalized, rendered into a prompt, and run through
// the generative model. A generation failure for one record never aborts the
// others; the failed record carries an error marker in its explanation field.
func (s *RCAQueryService) FetchAllWithExplanations(ctx context.Context) ([]models.RcaResultResponse, error) {
	records, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]models.RcaResultResponse, 0, len(records))
	for _, record := range records {
		resp := s.toResponse(record)
		if s.generator != nil {
			resp.Explanation = s.explain(ctx, record, resp.Events)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// explain drives the prompt builder and generator for one record.
func (s *RCAQueryService) explain(ctx context.Context, record models.RcaResult, events []map[string]any) string {
	prompt := BuildRootCausePrompt(events)

	genCtx := ctx
	if s.genConfig.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.genConfig.Timeout)
		defer cancel()
	}

	reasoning, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		logger.WithRCA(record.ID, record.Filename).WithField("error", err.Error()).
			Error("Explanation generation failed")
		return "explanation unavailable: " + err.Error()
	}

	if s.genConfig.Mode == config.ModeReasoning {
		return reasoning
	}
	return prompt + ReasoningSeparator + reasoning
}

// toResponse applies the output normalization invariants: logdate as an
// ISO-8601 string, events always a list of objects, explanation never null.
func (s *RCAQueryService) toResponse(record models.RcaResult) models.RcaResultResponse {
	logdate := ""
	if !record.Logdate.IsZero() {
		logdate = record.Logdate.Format(time.RFC3339)
	}
	return models.RcaResultResponse{
		ID:              record.ID,
		Filename:        record.Filename,
		AppID:           record.AppID,
		Score:           record.Score,
		ZScore:          record.ZScore,
		UndetectedRatio: record.UndetectedRatio,
		Status:          record.Status,
		Events:          NormalizeEvents(record.Events),
		Explanation:     record.Explanation,
		Logdate:         logdate,
	}
}
