package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"medical-copilot/internal/consultation"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

const defaultModel = "llama-3.3-70b-versatile"

// Low temperature for consistency between runs over the same transcript.
const temperature = 0.1

const systemPrompt = `Você é um assistente médico inteligente (Co-Pilot).

TAREFA 1: Analise o texto bruto da transcrição e separe o diálogo entre "Médico" e "Paciente" baseando-se no contexto (quem faz perguntas técnicas vs quem relata sintomas).
TAREFA 2: Gere os dados clínicos estruturados.

SAÍDA OBRIGATÓRIA (JSON puro):
{
    "dialogo_estruturado": [
        {"falante": "Médico", "texto": "Onde dói?"},
        {"falante": "Paciente", "texto": "Na barriga."}
    ],
    "diagnostico_provavel": "Hipótese principal",
    "doencas_associadas": ["CIDs prováveis"],
    "exames_sugeridos": ["Lista de exames"],
    "medicamentos_comuns": ["Lista de princípios ativos"]
}

Se o texto não tiver diálogo claro, deduza o melhor possível. Responda em PT-BR.`

var (
	ErrEmptyCompletion     = errors.New("resposta da IA vazia")
	ErrMalformedCompletion = errors.New("resposta da IA não é um JSON válido")
)

// UpstreamError reports a non-2xx response from the completion API
// (auth, quota, model errors). The body is kept for the details field
// surfaced to the caller.
type UpstreamError struct {
	Status string
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("groq api returned status: %s, body: %s", e.Status, e.Body)
}

type groqClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGroqClient builds a client for the given key and model. An empty
// model falls back to the default.
func NewGroqClient(apiKey, model string) consultation.AgentClient {
	if model == "" {
		model = defaultModel
	}
	return &groqClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: groqAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Diagnose issues exactly one chat completion request: the fixed system
// prompt plus the transcript as the sole user message, constrained to a
// single JSON object.
func (c *groqClient) Diagnose(ctx context.Context, text string) (consultation.DiagnosticResult, error) {
	var result consultation.DiagnosticResult

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to call groq api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return result, &UpstreamError{Status: resp.Status, Body: string(body)}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return result, fmt.Errorf("failed to decode groq response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return result, ErrEmptyCompletion
	}

	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}

	return result, nil
}
