package consultation

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileRepoRoundTrip(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	records := []Record{
		{ID: "2", Date: "02/01/2026 10:00:00", Transcript: "segunda", Result: DiagnosticResult{DiagnosticoProvavel: "Gastrite"}},
		{ID: "1", Date: "01/01/2026 09:00:00", Transcript: "primeira", Result: DiagnosticResult{}},
	}

	assert.NoError(t, repo.Save(ctx, "Dr. Júlio", records))

	loaded, err := repo.Load(ctx, "Dr. Júlio")
	assert.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestFileRepoUnknownDoctorIsEmpty(t *testing.T) {
	repo := NewFileRepository(t.TempDir())

	loaded, err := repo.Load(context.Background(), "Dra. Nova")
	assert.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NotNil(t, loaded)
}

func TestFileRepoLoginRoundTripAcrossIdentities(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	historyA := []Record{{ID: "a1", Transcript: "consulta de A"}}
	assert.NoError(t, repo.Save(ctx, "Dr. A", historyA))

	// Switch to B, mutate, switch back to A.
	assert.NoError(t, repo.Save(ctx, "Dr. B", []Record{{ID: "b1"}}))
	assert.NoError(t, repo.Save(ctx, "Dr. B", []Record{}))

	loaded, err := repo.Load(ctx, "Dr. A")
	assert.NoError(t, err)
	assert.Equal(t, historyA, loaded, "A's history survives the B session untouched")
}

func TestFileRepoOverwriteReflectsLatest(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	assert.NoError(t, repo.Save(ctx, "Dr. Júlio", []Record{{ID: "1"}, {ID: "2"}}))
	assert.NoError(t, repo.Save(ctx, "Dr. Júlio", []Record{{ID: "2"}}))

	loaded, err := repo.Load(ctx, "Dr. Júlio")
	assert.NoError(t, err)
	if assert.Len(t, loaded, 1) {
		assert.Equal(t, "2", loaded[0].ID)
	}
}

func TestFileRepoEscapesDoctorNames(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	ctx := context.Background()

	// Free-text names must not escape the data directory.
	name := "../fora/Dr. José da Silva"
	assert.NoError(t, repo.Save(ctx, name, []Record{{ID: "1"}}))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.True(t, strings.HasPrefix(entries[0].Name(), "history_"))
	}

	loaded, err := repo.Load(ctx, name)
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
}
