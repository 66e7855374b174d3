package consultation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// ReportRenderer produces the downloadable PDF for one record.
// Defined here to decouple from the rendering implementation.
type ReportRenderer interface {
	Render(rec Record, doctorName string) ([]byte, error)
}

type Handler struct {
	svc      Service
	sessions *Manager
	renderer ReportRenderer
}

func NewHandler(svc Service, sessions *Manager, renderer ReportRenderer) *Handler {
	return &Handler{svc: svc, sessions: sessions, renderer: renderer}
}

// urlParam returns a route parameter with percent-encoding undone, so
// doctor names with spaces and accents survive the round trip.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeAIError collapses every analysis failure into the single error
// shape the client expects; the caller never sees the distinction
// between upstream, empty and malformed completions.
func writeAIError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Erro na IA",
		"details": err.Error(),
	})
}

func writeStorageError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Erro no histórico",
		"details": err.Error(),
	})
}

type DiagnoseRequest struct {
	Text string `json:"text"`
}

func (h *Handler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	// A missing body is treated the same as missing text.
	var req DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Requisição inválida"})
		return
	}

	result, err := h.svc.Diagnose(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrMissingInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Texto é obrigatório"})
			return
		}
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type LoginRequest struct {
	Name string `json:"name"`
}

type LoginResponse struct {
	Doctor  string   `json:"doctor"`
	History []Record `json:"history"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Requisição inválida"})
		return
	}

	s, history, err := h.sessions.Login(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, ErrBlankName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Nome é obrigatório"})
			return
		}
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Doctor: s.Doctor, History: history})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(urlParam(r, "doctor"))
	w.WriteHeader(http.StatusNoContent)
}

// sessionError maps session manager failures onto HTTP statuses.
func sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Sessão não encontrada"})
	case errors.Is(err, ErrAlreadyRecording):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Gravação já em andamento"})
	case errors.Is(err, ErrAnalysisInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Análise já em andamento"})
	case errors.Is(err, ErrMissingInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Texto é obrigatório"})
	default:
		writeAIError(w, err)
	}
}

func (h *Handler) HandleStartRecording(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.StartRecording(urlParam(r, "doctor")); err != nil {
		sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleStopRecording(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.StopRecording(urlParam(r, "doctor")); err != nil {
		sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type SegmentRequest struct {
	Segment string `json:"segment"`
	Final   bool   `json:"final"`
}

func (h *Handler) HandleAppendSegment(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Requisição inválida"})
		return
	}

	doctor := urlParam(r, "doctor")
	if err := h.sessions.AppendSegment(doctor, req.Segment, req.Final); err != nil {
		sessionError(w, err)
		return
	}

	s, err := h.sessions.Snapshot(doctor)
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type TranscriptRequest struct {
	Text string `json:"text"`
}

func (h *Handler) HandleSetTranscript(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Requisição inválida"})
		return
	}

	if err := h.sessions.SetTranscript(urlParam(r, "doctor"), req.Text); err != nil {
		sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sessions.Analyze(r.Context(), urlParam(r, "doctor"))
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), urlParam(r, "doctor"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) HandleDeleteConsultation(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteConsultation(r.Context(), urlParam(r, "doctor"), urlParam(r, "id"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	doctor := urlParam(r, "doctor")
	rec, err := h.svc.GetConsultation(r.Context(), doctor, urlParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Consulta não encontrada"})
			return
		}
		writeStorageError(w, err)
		return
	}

	pdfData, err := h.renderer.Render(rec, doctor)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Erro ao gerar PDF",
			"details": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="prontuario_%s.pdf"`, rec.ID))
	w.Write(pdfData)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/diagnose", h.HandleDiagnose)

	r.Post("/session/login", h.HandleLogin)
	r.Route("/session/{doctor}", func(r chi.Router) {
		r.Post("/logout", h.HandleLogout)
		r.Post("/recording/start", h.HandleStartRecording)
		r.Post("/recording/stop", h.HandleStopRecording)
		r.Post("/transcript", h.HandleAppendSegment)
		r.Put("/transcript", h.HandleSetTranscript)
		r.Post("/analyze", h.HandleAnalyze)
	})

	r.Route("/history/{doctor}", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.Delete("/{id}", h.HandleDeleteConsultation)
		r.Get("/{id}/pdf", h.HandleExportPDF)
	})
}
