package services

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Conceptual-Machines/harmonia-api/internal/harmony"
	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/reharm"
	"github.com/Conceptual-Machines/harmonia-api/internal/tension"
	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
	"github.com/Conceptual-Machines/harmonia-api/internal/voiceleading"
)

// AnalysisService runs every analyzer over a progression
type AnalysisService struct {
	workers          int
	defaultJazzLevel int
}

func NewAnalysisService(workers, defaultJazzLevel int) *AnalysisService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &AnalysisService{workers: workers, defaultJazzLevel: reharm.ClampJazzLevel(defaultJazzLevel)}
}

// Analyze runs functions, tension, voice leading and reharmonization for one
// progression. When no key is given the key estimated by the function analyzer
// is used for the others.
func (s *AnalysisService) Analyze(ctx context.Context, req models.ProgressionRequest) (*models.FullAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chords := models.Chords(req.Chords)
	if len(chords) == 0 {
		return nil, harmony.ErrEmptyProgression
	}
	mode := theory.ParseMode(req.Mode)

	functions, err := harmony.AnalyzeProgression(chords, req.Key, mode)
	if err != nil {
		return nil, fmt.Errorf("function analysis: %w", err)
	}
	key := functions.Key

	curve, err := tension.AnalyzeCurve(chords, key, mode)
	if err != nil {
		return nil, fmt.Errorf("tension analysis: %w", err)
	}

	voicing, err := voiceleading.AnalyzeProgression(chords)
	if err != nil {
		return nil, fmt.Errorf("voice leading analysis: %w", err)
	}

	jazzLevel := req.JazzLevel
	if jazzLevel == 0 {
		jazzLevel = s.defaultJazzLevel
	}
	reharmonization, err := reharm.Reharmonize(chords, key, jazzLevel)
	if err != nil {
		return nil, fmt.Errorf("reharmonization: %w", err)
	}

	return &models.FullAnalysis{
		Key:             key,
		Mode:            mode,
		Functions:       functions,
		Tension:         curve,
		Recommendations: tension.Recommendations(curve),
		VoiceLeading:    voicing,
		Reharmonization: reharmonization,
	}, nil
}

// AnalyzeBatch analyzes every request with at most s.workers running at once.
// Results keep the input order; a failing item carries its error and does not
// stop the others. Only context cancellation fails the whole batch.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, reqs []models.ProgressionRequest) ([]models.BatchItem, error) {
	items := make([]models.BatchItem, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := models.BatchItem{Index: i}
			analysis, err := s.Analyze(gctx, req)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Analysis = analysis
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
