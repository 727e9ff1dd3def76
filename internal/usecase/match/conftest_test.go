package match

import (
	"context"
	"os"
	"sync"
	"testing"
	"unicode"

	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// letterEmbedder maps text to its a-z letter histogram.
type letterEmbedder struct {
	mu         sync.Mutex
	embedCalls int
	batchCalls int
	batchTexts int
	err        error
	short      bool
}

func letters(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range text {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (e *letterEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedCalls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: letters(text)}, nil
}

func (e *letterEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batchCalls++
	e.batchTexts += len(texts)
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letters(t)
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func newTestService(t *testing.T, e domain.Embedder) *Service {
	t.Helper()
	return New(e, 0, zap.NewNop())
}

func table(titles ...string) domain.OccupationTable {
	tbl := domain.EmptyOccupationTable()
	for _, title := range titles {
		tbl.Rows = append(tbl.Rows, domain.OccupationRecord{Title: title, Description: title})
	}
	return tbl
}
