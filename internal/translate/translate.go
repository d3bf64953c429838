// Package translate normalizes Polish posting text into English: an optional
// machine-translation backend for whole fields, then a word dictionary.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/pljobs/internal/model"
	"github.com/amishk599/pljobs/internal/textnorm"
)

// pieceMarker is the sentencepiece word boundary some MT models leak.
const pieceMarker = "▁"

// Service translates text fields. A nil backend means dictionary only.
type Service struct {
	backend model.Translator
	words   map[string]string // lower-case Polish word -> English
	workers int
	logger  *slog.Logger
}

// NewService creates a Service. workers bounds concurrent backend calls.
func NewService(backend model.Translator, words map[string]string, workers int, logger *slog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	lowered := make(map[string]string, len(words))
	for pl, en := range words {
		lowered[strings.ToLower(pl)] = en
	}
	return &Service{backend: backend, words: lowered, workers: workers, logger: logger}
}

// Text translates one value. Backend failures are logged and the original
// text is kept.
func (s *Service) Text(ctx context.Context, text string) string {
	out := text
	if s.backend != nil && textnorm.HasPolishDiacritics(text) {
		translated, err := s.backend.Translate(ctx, text)
		if err != nil {
			s.logger.Warn("translation failed, keeping original", "error", err)
		} else {
			out = cleanPieces(translated)
		}
	}
	return s.replaceWords(out)
}

// Batch translates texts concurrently. Results keep the input order. The
// only error is cancellation of ctx.
func (s *Service) Batch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.Text(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("translate batch: %w", err)
	}
	return out, nil
}

// replaceWords swaps dictionary words one whitespace token at a time.
// Whitespace runs collapse to single spaces.
func (s *Service) replaceWords(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if en, ok := s.words[strings.ToLower(w)]; ok {
			words[i] = en
		}
	}
	return strings.Join(words, " ")
}

func cleanPieces(s string) string {
	s = strings.Trim(s, pieceMarker)
	return strings.ReplaceAll(s, pieceMarker, " ")
}
