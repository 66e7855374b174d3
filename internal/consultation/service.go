package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AgentClient defines the interface for the AI diagnosis call.
// We define it here to decouple from the specific agent implementation.
type AgentClient interface {
	Diagnose(ctx context.Context, text string) (DiagnosticResult, error)
}

var (
	ErrMissingInput = errors.New("texto é obrigatório")
	ErrNotFound     = errors.New("consulta não encontrada")
)

type Service interface {
	Diagnose(ctx context.Context, text string) (DiagnosticResult, error)
	History(ctx context.Context, doctor string) ([]Record, error)
	RecordConsultation(ctx context.Context, doctor, transcript string, result DiagnosticResult) (Record, error)
	DeleteConsultation(ctx context.Context, doctor, id string) error
	GetConsultation(ctx context.Context, doctor, id string) (Record, error)
}

type service struct {
	repo     HistoryRepository
	aiClient AgentClient
}

func NewService(repo HistoryRepository, ai AgentClient) Service {
	return &service{
		repo:     repo,
		aiClient: ai,
	}
}

// Diagnose relays the transcript to the AI exactly once. Empty input
// fails before any downstream call is made.
func (s *service) Diagnose(ctx context.Context, text string) (DiagnosticResult, error) {
	if strings.TrimSpace(text) == "" {
		return DiagnosticResult{}, ErrMissingInput
	}

	result, err := s.aiClient.Diagnose(ctx, text)
	if err != nil {
		return DiagnosticResult{}, err
	}

	result.Normalize()
	return result, nil
}

func (s *service) History(ctx context.Context, doctor string) ([]Record, error) {
	return s.repo.Load(ctx, doctor)
}

// RecordConsultation prepends a freshly identified record to the
// doctor's history (newest first) and persists the full updated list.
func (s *service) RecordConsultation(ctx context.Context, doctor, transcript string, result DiagnosticResult) (Record, error) {
	history, err := s.repo.Load(ctx, doctor)
	if err != nil {
		return Record{}, err
	}

	result.Normalize()
	rec := Record{
		ID:         uuid.New().String(),
		Date:       time.Now().Format("02/01/2006 15:04:05"),
		Transcript: transcript,
		Result:     result,
	}

	updated := append([]Record{rec}, history...)
	if err := s.repo.Save(ctx, doctor, updated); err != nil {
		return Record{}, fmt.Errorf("failed to persist history: %w", err)
	}
	return rec, nil
}

// DeleteConsultation removes the matching record, preserving the
// relative order of the remainder. Unknown ids are a no-op.
func (s *service) DeleteConsultation(ctx context.Context, doctor, id string) error {
	history, err := s.repo.Load(ctx, doctor)
	if err != nil {
		return err
	}

	updated := history[:0:0]
	for _, rec := range history {
		if rec.ID != id {
			updated = append(updated, rec)
		}
	}
	if len(updated) == len(history) {
		return nil
	}

	if err := s.repo.Save(ctx, doctor, updated); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

func (s *service) GetConsultation(ctx context.Context, doctor, id string) (Record, error) {
	history, err := s.repo.Load(ctx, doctor)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range history {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}
