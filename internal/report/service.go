package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"medical-copilot/internal/consultation"
)

// Service renders a consultation record as a prontuário PDF.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

type section struct {
	Title string
	Lines []string
}

// DialogueLines returns the transcript section content: one line per
// speaker-attributed utterance, or the raw transcript when the
// structured dialogue is absent.
func DialogueLines(rec consultation.Record) []string {
	if len(rec.Result.Dialogo) == 0 {
		return []string{rec.Transcript}
	}
	lines := make([]string, 0, len(rec.Result.Dialogo))
	for _, fala := range rec.Result.Dialogo {
		lines = append(lines, fmt.Sprintf("%s: %s", fala.Falante, fala.Texto))
	}
	return lines
}

func bulletLines(items []string) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return lines
}

// Sections assembles the document content in order. Pure function of
// the record so the layout is testable without font files.
func Sections(rec consultation.Record) []section {
	sections := []section{
		{Title: "Transcrição da Consulta:", Lines: DialogueLines(rec)},
	}

	diagnosis := rec.Result.DiagnosticoProvavel
	if diagnosis == "" {
		diagnosis = "Não identificado"
	}
	sections = append(sections, section{Title: "Hipótese Diagnóstica:", Lines: []string{diagnosis}})

	if len(rec.Result.ExamesSugeridos) > 0 {
		sections = append(sections, section{Title: "Exames Sugeridos:", Lines: bulletLines(rec.Result.ExamesSugeridos)})
	}
	if len(rec.Result.MedicamentosComuns) > 0 {
		sections = append(sections, section{Title: "Conduta / Medicamentos:", Lines: bulletLines(rec.Result.MedicamentosComuns)})
	}
	return sections
}

// Render produces the PDF bytes for a record and the doctor it belongs to.
func (s *Service) Render(rec consultation.Record, doctorName string) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	// DejaVuSans covers the accented characters of pt-BR output.
	fontPaths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, please ensure ttf-dejavu is installed: %w", fontErr)
	}

	// Header
	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Prontuário Médico")
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Co-Pilot Inteligente • Dr(a). %s", doctorName))
	pdf.Br(13)
	pdf.Cell(nil, fmt.Sprintf("Consulta: %s • Gerado em: %s", rec.Date, time.Now().Format("02/01/2006")))
	pdf.Br(25)

	for _, sec := range Sections(rec) {
		if err := pdf.SetFont("DejaVu", "", 13); err != nil {
			return nil, err
		}
		pdf.Cell(nil, sec.Title)
		pdf.Br(15)

		if err := pdf.SetFont("DejaVu", "", 10); err != nil {
			return nil, err
		}
		for _, line := range sec.Lines {
			wrapped, _ := pdf.SplitText(line, 500)
			for _, l := range wrapped {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
		pdf.Br(10)
	}

	// Footer
	pdf.SetY(800)
	if err := pdf.SetFont("DejaVu", "", 8); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Documento gerado via Co-Pilot Médico para o Dr(a). %s. Necessária validação clínica.", doctorName))

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
