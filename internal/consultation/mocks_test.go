package consultation

import (
	"context"
	"errors"
	"sync/atomic"
)

// Compile-time checks that the mocks satisfy their contracts.
var (
	_ AgentClient       = (*MockAgentClient)(nil)
	_ HistoryRepository = (*MockHistoryRepository)(nil)
	_ Service           = (*MockService)(nil)
)

// MockAgentClient is a mock implementation of AgentClient.
type MockAgentClient struct {
	DiagnoseFunc      func(ctx context.Context, text string) (DiagnosticResult, error)
	DiagnoseCallCount int32
}

func (m *MockAgentClient) Diagnose(ctx context.Context, text string) (DiagnosticResult, error) {
	atomic.AddInt32(&m.DiagnoseCallCount, 1)
	if m.DiagnoseFunc != nil {
		return m.DiagnoseFunc(ctx, text)
	}
	return DiagnosticResult{}, nil
}

// MockHistoryRepository is a mock implementation of HistoryRepository.
type MockHistoryRepository struct {
	LoadFunc      func(ctx context.Context, doctor string) ([]Record, error)
	SaveFunc      func(ctx context.Context, doctor string, records []Record) error
	SaveCallCount int32
}

func (m *MockHistoryRepository) Load(ctx context.Context, doctor string) ([]Record, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, doctor)
	}
	return []Record{}, nil
}

func (m *MockHistoryRepository) Save(ctx context.Context, doctor string, records []Record) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, doctor, records)
	}
	return nil
}

// MockService is a mock implementation of Service for session and
// handler tests.
type MockService struct {
	DiagnoseFunc           func(ctx context.Context, text string) (DiagnosticResult, error)
	HistoryFunc            func(ctx context.Context, doctor string) ([]Record, error)
	RecordConsultationFunc func(ctx context.Context, doctor, transcript string, result DiagnosticResult) (Record, error)
	DeleteConsultationFunc func(ctx context.Context, doctor, id string) error
	GetConsultationFunc    func(ctx context.Context, doctor, id string) (Record, error)
}

func (m *MockService) Diagnose(ctx context.Context, text string) (DiagnosticResult, error) {
	if m.DiagnoseFunc != nil {
		return m.DiagnoseFunc(ctx, text)
	}
	return DiagnosticResult{}, nil
}

func (m *MockService) History(ctx context.Context, doctor string) ([]Record, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, doctor)
	}
	return []Record{}, nil
}

func (m *MockService) RecordConsultation(ctx context.Context, doctor, transcript string, result DiagnosticResult) (Record, error) {
	if m.RecordConsultationFunc != nil {
		return m.RecordConsultationFunc(ctx, doctor, transcript, result)
	}
	return Record{ID: "mock-id", Transcript: transcript, Result: result}, nil
}

func (m *MockService) DeleteConsultation(ctx context.Context, doctor, id string) error {
	if m.DeleteConsultationFunc != nil {
		return m.DeleteConsultationFunc(ctx, doctor, id)
	}
	return nil
}

func (m *MockService) GetConsultation(ctx context.Context, doctor, id string) (Record, error) {
	if m.GetConsultationFunc != nil {
		return m.GetConsultationFunc(ctx, doctor, id)
	}
	return Record{}, errors.New("GetConsultationFunc not implemented in mock")
}
