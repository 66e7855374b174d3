package consultation

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrBlankName        = errors.New("nome é obrigatório")
	ErrNoSession        = errors.New("sessão não encontrada")
	ErrAlreadyRecording = errors.New("gravação já em andamento")
	ErrAnalysisInFlight = errors.New("análise já em andamento")
)

// Session holds the in-progress draft of one doctor: the transcript
// being captured, the recording state and the last analysis result.
// The doctor name is a namespace key only, never a verified identity.
type Session struct {
	Doctor     string            `json:"doctor"`
	Recording  bool              `json:"recording"`
	Transcript string            `json:"transcript"`
	Result     *DiagnosticResult `json:"result,omitempty"`

	analyzing bool
}

// Manager tracks one session per doctor name. Mutations are serialized
// by the mutex; the only concurrent access in practice is the browser's
// recognition events racing an analyze request.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	svc      Service
}

func NewManager(svc Service) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		svc:      svc,
	}
}

// Login accepts any non-blank name and starts a fresh session for it,
// discarding any draft a previous session under the same name left
// behind. Returns the doctor's persisted history.
func (m *Manager) Login(ctx context.Context, name string) (*Session, []Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrBlankName
	}

	history, err := m.svc.History(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	s := &Session{Doctor: name}
	m.sessions[name] = s
	m.mu.Unlock()

	return s, history, nil
}

// Logout drops the in-memory session. Persisted history is untouched
// and reappears on the next login with the same name.
func (m *Manager) Logout(name string) {
	m.mu.Lock()
	delete(m.sessions, name)
	m.mu.Unlock()
}

// StartRecording clears the current draft and result before capture
// begins. Starting while a recording is active is rejected.
func (m *Manager) StartRecording(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[name]
	if !ok {
		return ErrNoSession
	}
	if s.Recording {
		return ErrAlreadyRecording
	}

	s.Transcript = ""
	s.Result = nil
	s.Recording = true
	return nil
}

func (m *Manager) StopRecording(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[name]
	if !ok {
		return ErrNoSession
	}
	s.Recording = false
	return nil
}

// AppendSegment space-joins a finalized recognition segment onto the
// draft. Interim segments are discarded, not previewed.
func (m *Manager) AppendSegment(name, segment string, final bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[name]
	if !ok {
		return ErrNoSession
	}
	if !final || segment == "" {
		return nil
	}
	if s.Transcript == "" {
		s.Transcript = segment
	} else {
		s.Transcript += " " + segment
	}
	return nil
}

// SetTranscript replaces the whole draft, for manual edits.
func (m *Manager) SetTranscript(name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[name]
	if !ok {
		return ErrNoSession
	}
	s.Transcript = text
	return nil
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot(name string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[name]
	if !ok {
		return Session{}, ErrNoSession
	}
	return *s, nil
}

// Analyze submits the draft transcript for diagnosis and, on success,
// records the consultation in the doctor's history. The draft survives
// a failed analysis so the doctor can retry; only one analysis may be
// in flight per session.
func (m *Manager) Analyze(ctx context.Context, name string) (Record, error) {
	m.mu.Lock()
	s, ok := m.sessions[name]
	if !ok {
		m.mu.Unlock()
		return Record{}, ErrNoSession
	}
	if s.analyzing {
		m.mu.Unlock()
		return Record{}, ErrAnalysisInFlight
	}
	transcript := s.Transcript
	if strings.TrimSpace(transcript) == "" {
		m.mu.Unlock()
		return Record{}, ErrMissingInput
	}
	s.analyzing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		s.analyzing = false
		m.mu.Unlock()
	}()

	result, err := m.svc.Diagnose(ctx, transcript)
	if err != nil {
		return Record{}, err
	}

	rec, err := m.svc.RecordConsultation(ctx, name, transcript, result)
	if err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	s.Result = &rec.Result
	m.mu.Unlock()

	return rec, nil
}
