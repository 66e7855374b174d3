package consultation

// Speaker labels produced by the diarization prompt.
const (
	SpeakerDoctor  = "Médico"
	SpeakerPatient = "Paciente"
)

// Utterance is one speaker-attributed line of the structured dialogue,
// in conversational order.
type Utterance struct {
	Falante string `json:"falante"`
	Texto   string `json:"texto"`
}

// DiagnosticResult is the structured output of one analysis. Every field
// is optional from the caller's perspective: the model is free to omit
// any of them, so consumers must tolerate zero values.
type DiagnosticResult struct {
	Dialogo             []Utterance `json:"dialogo_estruturado"`
	DiagnosticoProvavel string      `json:"diagnostico_provavel"`
	DoencasAssociadas   []string    `json:"doencas_associadas"`
	ExamesSugeridos     []string    `json:"exames_sugeridos"`
	MedicamentosComuns  []string    `json:"medicamentos_comuns"`
}

// Normalize replaces absent collections with empty ones so that storage
// and rendering never see nil slices.
func (d *DiagnosticResult) Normalize() {
	if d.Dialogo == nil {
		d.Dialogo = []Utterance{}
	}
	if d.DoencasAssociadas == nil {
		d.DoencasAssociadas = []string{}
	}
	if d.ExamesSugeridos == nil {
		d.ExamesSugeridos = []string{}
	}
	if d.MedicamentosComuns == nil {
		d.MedicamentosComuns = []string{}
	}
}

// Record is one saved consultation. Immutable after creation except for
// deletion, and owned by exactly one doctor's history.
type Record struct {
	ID         string           `json:"id"`
	Date       string           `json:"date"`
	Transcript string           `json:"transcript"`
	Result     DiagnosticResult `json:"result"`
}
