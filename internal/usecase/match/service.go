// Package match ranks occupations against resume text by embedding cosine similarity.
package match

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/lazy"
	"github.com/josephmathew0/Monty/internal/logger"
	"github.com/josephmathew0/Monty/internal/metrics"
)

// DefaultTopN is used when a caller asks for topN <= 0.
const DefaultTopN = 3

// Service ranks occupation descriptions against a query text.
type Service struct {
	embed  domain.Embedder
	topN   int
	corpus lazy.KeyedSlot[[][]float32]
	logger *zap.Logger
}

// New creates a matcher. topN <= 0 falls back to DefaultTopN.
func New(embed domain.Embedder, topN int, logger *zap.Logger) *Service {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{embed: embed, topN: topN, logger: logger}
}

// FindTopRoles returns the topN occupations most similar to text, best first.
// An empty table yields an empty result without calling the embedder.
func (s *Service) FindTopRoles(
	ctx context.Context, text string, table domain.OccupationTable, topN int,
) ([]domain.RankedMatch, error) {
	if miss := table.MissingColumns(domain.ColOccupation, domain.ColDescription); len(miss) > 0 {
		return nil, domain.NewSchemaViolation(miss)
	}
	if table.Len() == 0 {
		return []domain.RankedMatch{}, nil
	}
	if topN <= 0 {
		topN = s.topN
	}

	start := time.Now()
	defer func() { metrics.MatchDuration.Observe(time.Since(start).Seconds()) }()

	var (
		query  []float32
		corpus [][]float32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.embed.Embed(gctx, text)
		if err != nil {
			return fmt.Errorf("vectorize query: %w", err)
		}
		query = res.Embedding
		return nil
	})
	g.Go(func() error {
		var err error
		corpus, err = s.corpusVectors(gctx, table)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]domain.RankedMatch, len(table.Rows))
	for i, row := range table.Rows {
		score, err := cosine(query, corpus[i])
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", row.Title, err)
		}
		matches[i] = domain.RankedMatch{Title: row.Title, Score: score}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	matches = matches[:min(topN, len(matches))]
	for i := range matches {
		matches[i].Score = round4(matches[i].Score)
	}

	logger.FromContextOr(ctx, s.logger).Debug("Ranked occupations",
		zap.Int("candidates", table.Len()),
		zap.Int("returned", len(matches)),
		zap.Duration("duration", time.Since(start)),
	)
	return matches, nil
}

// Prepare embeds the description column of table ahead of the first query.
func (s *Service) Prepare(ctx context.Context, table domain.OccupationTable) error {
	if table.Len() == 0 {
		return nil
	}
	_, err := s.corpusVectors(ctx, table)
	return err
}

// Invalidate drops cached corpus vectors.
func (s *Service) Invalidate() { s.corpus.Invalidate() }

// corpusVectors embeds the description column once per distinct table.
func (s *Service) corpusVectors(ctx context.Context, table domain.OccupationTable) ([][]float32, error) {
	descs := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		descs[i] = r.Description
	}

	key := fingerprint(descs)
	vecs, err := s.corpus.Get(ctx, key, func(ctx context.Context) ([][]float32, error) {
		s.logger.Info("Embedding occupation corpus", zap.Int("descriptions", len(descs)))
		return domain.EmbedAll(ctx, s.embed, descs)
	})
	if err != nil {
		return nil, fmt.Errorf("vectorize occupations: %w", err)
	}
	return vecs, nil
}

func fingerprint(texts []string) string {
	h := sha256.New()
	var n [8]byte
	for _, t := range texts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(t)))
		h.Write(n[:])
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// cosine returns the cosine similarity of a and b, 0 when either has zero norm.
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch %d != %d: %w", len(a), len(b), domain.ErrEmbeddingProviderError)
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
