// Package search is the retrieval engine: query text in, ranked stories out.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/domain/search/query"
	"github.com/kailas-cloud/storyline/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/storyline/internal/logger"
)

const msgSearchFailed = "failed to search, please try later"

// Service handles semantic story search.
type Service struct {
	index  Index
	embed  Embedder
	logger *zap.Logger
}

// New creates a search service.
func New(index Index, embed Embedder, logger *zap.Logger) *Service {
	return &Service{index: index, embed: embed, logger: logger}
}

// Search embeds text and returns the nearest stories, at most domain.MaxSearchCandidates,
// ordered by non-increasing score. Results are returned as the index ranked them.
func (s *Service) Search(ctx context.Context, text string) ([]result.Result, error) {
	const op = "search stories"

	q, err := query.New(text)
	if err != nil {
		return nil, domain.NewOperationError(op, err.Error(), err)
	}

	emb, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		err = fmt.Errorf("embed query: %w: %w", domain.ErrSearchUnavailable, err)
		s.logger.Warn("Search failed", zap.Error(err))
		return nil, domain.NewOperationError(op, msgSearchFailed, err)
	}

	results, err := s.index.KNN(ctx, emb.Embedding, domain.MaxSearchCandidates)
	if err != nil {
		if !errors.Is(err, domain.ErrSearchUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		s.logger.Warn("Search failed", zap.Error(err))
		return nil, domain.NewOperationError(op, msgSearchFailed, err)
	}

	logpkg.Annotate(ctx, zap.Int("search_results", len(results)))
	return results, nil
}
