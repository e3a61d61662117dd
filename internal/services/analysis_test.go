package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmonia-api/internal/harmony"
	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/reharm"
	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

func progression(t *testing.T, body string) models.ProgressionRequest {
	t.Helper()
	var req models.ProgressionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestAnalysisService_Analyze(t *testing.T) {
	svc := NewAnalysisService(2, 3)
	req := progression(t, `{"chords": ["Dm7", "G7", "Cmaj7"], "key": "C"}`)

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "C", result.Key)
	assert.Equal(t, theory.Major, result.Mode)

	require.Len(t, result.Functions.ChordFunctions, 3)
	assert.Equal(t, "ii", result.Functions.ChordFunctions[0].RomanNumeral)
	assert.Equal(t, "V", result.Functions.ChordFunctions[1].RomanNumeral)
	assert.Equal(t, "I", result.Functions.ChordFunctions[2].RomanNumeral)

	assert.Len(t, result.Tension.Points, 3)
	assert.Equal(t, 2, result.VoiceLeading.TotalTransitions)
	assert.Equal(t, 3, result.Reharmonization.JazzLevel)
	assert.Len(t, result.Reharmonization.Options, 3)
	assert.NotEmpty(t, result.Recommendations)
}

func TestAnalysisService_Analyze_EstimatesKey(t *testing.T) {
	svc := NewAnalysisService(1, 3)
	req := progression(t, `{"chords": [{"root": "G", "quality": "7"}, {"root": "C", "quality": "maj7"}]}`)

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "C", result.Key)
	assert.Equal(t, harmony.KeyCadence, result.Functions.KeySource)
	assert.Equal(t, "C", result.Reharmonization.Key)
	assert.Equal(t, "C", result.Tension.Key)
}

func TestAnalysisService_Analyze_JazzLevel(t *testing.T) {
	svc := NewAnalysisService(1, 2)

	result, err := svc.Analyze(context.Background(), progression(t, `{"chords": ["G7", "C"], "key": "C"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Reharmonization.JazzLevel)

	result, err = svc.Analyze(context.Background(), progression(t, `{"chords": ["G7", "C"], "key": "C", "jazz_level": 9}`))
	require.NoError(t, err)
	assert.Equal(t, reharm.MaxJazzLevel, result.Reharmonization.JazzLevel)
}

func TestAnalysisService_Analyze_Empty(t *testing.T) {
	svc := NewAnalysisService(1, 3)
	_, err := svc.Analyze(context.Background(), models.ProgressionRequest{})
	assert.ErrorIs(t, err, harmony.ErrEmptyProgression)
}

func TestAnalysisService_AnalyzeBatch_PreservesOrder(t *testing.T) {
	svc := NewAnalysisService(3, 3)
	reqs := []models.ProgressionRequest{
		progression(t, `{"chords": ["Dm7", "G7", "Cmaj7"], "key": "C"}`),
		{},
		progression(t, `{"chords": ["Em7b5", "A7", "Dm"], "key": "D", "mode": "minor"}`),
		progression(t, `{"chords": ["F", "Bb", "C7", "F"], "key": "F"}`),
	}

	items, err := svc.AnalyzeBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, items, len(reqs))

	for i, item := range items {
		assert.Equal(t, i, item.Index)
	}
	assert.Equal(t, "C", items[0].Analysis.Key)
	assert.Nil(t, items[1].Analysis)
	assert.Equal(t, harmony.ErrEmptyProgression.Error(), items[1].Error)
	assert.Equal(t, theory.Minor, items[2].Analysis.Mode)
	assert.Equal(t, "F", items[3].Analysis.Key)
}

func TestAnalysisService_AnalyzeBatch_Cancelled(t *testing.T) {
	svc := NewAnalysisService(1, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeBatch(ctx, []models.ProgressionRequest{
		progression(t, `{"chords": ["C"]}`),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
