// Package retrieval orchestrates one retrieval call: embed the question,
// query the vector index, drop low-scored candidates, and assemble the
// answer. Each call is stateless and independent; the two I/O steps are
// strictly sequential because the query vector is the index call's input.
package retrieval

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soff-cloud/playkb/internal/domain"
	"github.com/soff-cloud/playkb/internal/domain/answer"
	"github.com/soff-cloud/playkb/internal/domain/match"
	"github.com/soff-cloud/playkb/internal/metrics"
)

// answerMatchLimit caps the matches echoed back alongside the answer.
const answerMatchLimit = 5

// Config holds retrieval settings, read-only after startup.
type Config struct {
	// TextKey is the primary payload key probed for display text.
	TextKey string
	TopK    int
	// ScoreThreshold drops candidates scoring below it; nil disables the cut.
	ScoreThreshold *float64
	MaxChars       int
	MaxChunks      int
	FallbackAnswer string
}

// Service is the retrieval orchestrator. Dependencies are injected once
// at startup; no package-level state.
type Service struct {
	embed     Embedder
	index     Index
	assembler Assembler
	cfg       Config
	logger    *zap.Logger
}

// New creates a retrieval service.
func New(embed Embedder, index Index, assembler Assembler, cfg Config, logger *zap.Logger) *Service {
	return &Service{embed: embed, index: index, assembler: assembler, cfg: cfg, logger: logger}
}

// Result is the outcome of one retrieval call. Found is false when zero
// matches survive threshold filtering, which is a normal outcome, not an error.
type Result struct {
	Found   bool
	Matches []match.Match
}

// Retrieve embeds the question, queries the index for up to topK
// candidates, and returns the surviving matches in index order. Ranking
// and dedup happen downstream in the assembler.
func (s *Service) Retrieve(
	ctx context.Context, question string, topK int, scoreThreshold *float64,
) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, domain.ErrEmptyQuery
	}

	start := time.Now()

	emb, err := s.embed.Embed(ctx, question)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	candidates, err := s.index.Query(ctx, emb.Embedding, topK)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	matches := make([]match.Match, 0, len(candidates))
	for _, c := range candidates {
		if scoreThreshold != nil && c.Score() < *scoreThreshold {
			continue
		}
		matches = append(matches, match.FromCandidate(c, s.cfg.TextKey))
	}

	outcome := "found"
	if len(matches) == 0 {
		outcome = "not_found"
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	metrics.RetrievalMatches.Observe(float64(len(matches)))

	s.logger.Debug("retrieval complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return Result{Found: len(matches) > 0, Matches: matches}, nil
}

// AnswerResult is the response of the question operation.
type AnswerResult struct {
	Answer  string
	Found   bool
	Matches []match.Match
}

// Answer runs retrieval with the configured topK and threshold and
// assembles the answer string under the configured budget. An empty
// assembled context maps to the fallback answer with no matches.
func (s *Service) Answer(ctx context.Context, question string) (AnswerResult, error) {
	res, err := s.Retrieve(ctx, question, s.cfg.TopK, s.cfg.ScoreThreshold)
	if err != nil {
		return AnswerResult{}, err
	}

	chunks := make([]answer.Chunk, len(res.Matches))
	for i := range res.Matches {
		chunks[i] = answer.Chunk{Score: res.Matches[i].Score(), Text: res.Matches[i].Text()}
	}

	text := s.assembler.Assemble(chunks, s.cfg.MaxChars, s.cfg.MaxChunks)
	if text == "" {
		return AnswerResult{Answer: s.cfg.FallbackAnswer, Found: false}, nil
	}

	top := res.Matches
	if len(top) > answerMatchLimit {
		top = top[:answerMatchLimit]
	}

	return AnswerResult{Answer: text, Found: true, Matches: top}, nil
}
