package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

const notFoundAnswer = "I could not find anything about that in the course materials. " +
	"Try rephrasing the question, or check the course site directly."

const insufficientAnswer = "I found related course material but could not produce a full answer in time. " +
	"The sources below are the closest matches."

// AnswerUseCase turns a question into a cited answer. Deterministic intent
// templates are tried first for common course-administration questions; only
// when none matches does it pay the latency of the generative oracle.
type AnswerUseCase struct {
	retriever ports.PassageRetriever
	generator ports.AnswerGenerator
	intents   *IntentRegistry

	topN              int
	maxSources        int
	maxContextChars   int
	lowConfidence     float64
	generationTimeout time.Duration
	logger            *slog.Logger
}

type AnswerConfig struct {
	TopN              int
	MaxSources        int
	MaxContextChars   int
	LowConfidence     float64
	GenerationTimeout time.Duration
}

func NewAnswerUseCase(
	retriever ports.PassageRetriever,
	generator ports.AnswerGenerator,
	intents *IntentRegistry,
	cfg AnswerConfig,
	logger *slog.Logger,
) *AnswerUseCase {
	if cfg.TopN <= 0 {
		cfg.TopN = 6
	}
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 12000
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}
	return &AnswerUseCase{
		retriever:         retriever,
		generator:         generator,
		intents:           intents,
		topN:              cfg.TopN,
		maxSources:        cfg.MaxSources,
		maxContextChars:   cfg.MaxContextChars,
		lowConfidence:     cfg.LowConfidence,
		generationTimeout: cfg.GenerationTimeout,
		logger:            logger,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, query string) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer",
			errors.New("empty query"))
	}

	result, err := uc.retriever.Retrieve(ctx, query, uc.topN)
	if err != nil {
		return nil, err
	}
	passages := result.Passages
	if len(passages) == 0 {
		return &domain.Answer{
			Text:       notFoundAnswer,
			Sources:    []domain.Citation{},
			Confidence: 0,
		}, nil
	}

	citations := uc.buildCitations(passages)

	if text, ok := uc.intents.Match(query, passages); ok {
		return &domain.Answer{
			Text:       text,
			Sources:    citations,
			Confidence: confidence(passages, result.Degraded),
		}, nil
	}

	text, genDegraded := uc.generate(ctx, query, passages)
	conf := confidence(passages, result.Degraded || genDegraded)
	if !genDegraded && conf < uc.lowConfidence {
		text = "I'm not fully certain this is what you were looking for.\n\n" + text
	}
	return &domain.Answer{
		Text:       text,
		Sources:    citations,
		Confidence: conf,
	}, nil
}

// generate invokes the generative oracle with bounded grounding context.
// A timeout or oracle failure degrades to a templated answer with the
// citations already retrieved, never a hard failure to the end user.
func (uc *AnswerUseCase) generate(ctx context.Context, query string, passages []domain.RetrievedPassage) (string, bool) {
	genCtx, cancel := context.WithTimeout(ctx, uc.generationTimeout)
	defer cancel()

	text, err := uc.generator.Generate(genCtx, query, uc.groundingContext(passages))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || domain.IsKind(err, domain.ErrGenerationTimeout) {
			uc.logger.Warn("generation timed out, serving templated answer", "error", err)
		} else {
			uc.logger.Warn("generation failed, serving templated answer", "error", err)
		}
		return insufficientAnswer, true
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return insufficientAnswer, true
	}
	return text, false
}

// groundingContext concatenates passages under breadcrumb headers, capped at
// maxContextChars. The final block is truncated rather than dropped so the
// best partial context still reaches the oracle.
func (uc *AnswerUseCase) groundingContext(passages []domain.RetrievedPassage) string {
	var b strings.Builder
	for _, p := range passages {
		block := fmt.Sprintf("[%s]\n%s\n\n", p.Chunk.Breadcrumb, p.Chunk.Text)
		remaining := uc.maxContextChars - b.Len()
		if remaining <= 0 {
			break
		}
		if len(block) > remaining {
			// Back up to a rune boundary so the oracle never sees a split
			// multi-byte character.
			for remaining > 0 && !utf8.RuneStart(block[remaining]) {
				remaining--
			}
			b.WriteString(block[:remaining])
			break
		}
		b.WriteString(block)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (uc *AnswerUseCase) buildCitations(passages []domain.RetrievedPassage) []domain.Citation {
	citations := make([]domain.Citation, 0, uc.maxSources)
	seen := make(map[string]bool, uc.maxSources)
	for _, p := range passages {
		if seen[p.Chunk.Breadcrumb] {
			continue
		}
		seen[p.Chunk.Breadcrumb] = true
		citations = append(citations, domain.Citation{
			Breadcrumb: p.Chunk.Breadcrumb,
			URL:        p.Chunk.URL,
			Snippet:    snippet(p.Chunk.Text, 200),
		})
		if len(citations) == uc.maxSources {
			break
		}
	}
	return citations
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// confidence derives a [0,1] value from the top fused score, rewarding
// passages both signals agreed on and penalizing degraded answers.
func confidence(passages []domain.RetrievedPassage, degraded bool) float64 {
	if len(passages) == 0 {
		return 0
	}
	c := passages[0].FusedScore
	if passages[0].HitByBoth() {
		c += 0.1
	}
	if degraded {
		c -= 0.2
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
