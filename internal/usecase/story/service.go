// Package story validates and applies story mutations and reads.
package story

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
	"github.com/kailas-cloud/storyline/internal/domain/story/patch"
	logpkg "github.com/kailas-cloud/storyline/internal/logger"
)

// maxUpdateAttempts bounds the read-modify-write loop when the story changes underneath an update.
const maxUpdateAttempts = 3

// Client-facing failure messages.
const (
	msgCreateFailed = "Failed to add, please try later"
	msgListFailed   = "failed to get stories, please try later"
	msgGetFailed    = "failed to get story, please try later"
	msgUpdateFailed = "Failed to update, please try later"
	msgDeleteFailed = "Failed to delete, please try later"
	msgInvalidID    = "invalid story id"
	msgNotFound     = "story not found"
)

// Service is the story mutation controller.
type Service struct {
	repo    Repository
	indexer Indexer
	logger  *zap.Logger
}

// New creates a story service.
func New(repo Repository, indexer Indexer, logger *zap.Logger) *Service {
	return &Service{repo: repo, indexer: indexer, logger: logger}
}

// Create validates and stores a new story.
func (s *Service) Create(ctx context.Context, title, body string) (domstory.Story, error) {
	const op = "create story"

	d, err := domstory.NewDraft(title, body)
	if err != nil {
		return domstory.Story{}, s.fail(op, msgCreateFailed, err)
	}

	vector, err := s.indexer.Prepare(ctx, d.Title(), d.Body())
	if err != nil {
		return domstory.Story{}, s.fail(op, msgCreateFailed, err)
	}

	st, err := s.repo.Insert(ctx, d, vector)
	if err != nil {
		return domstory.Story{}, s.fail(op, msgCreateFailed, fmt.Errorf("insert story: %w", err))
	}

	logpkg.Annotate(ctx, zap.String("story_id", st.ID().String()), zap.Bool("indexed", vector != nil))
	if vector == nil {
		s.indexer.Schedule(st.ID())
	}
	return st, nil
}

// List returns every story, newest first.
func (s *Service) List(ctx context.Context) ([]domstory.Story, error) {
	stories, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list stories", msgListFailed, err)
	}
	return stories, nil
}

// Get returns one story.
func (s *Service) Get(ctx context.Context, rawID string) (domstory.Story, error) {
	const op = "get story"

	id, err := domstory.ParseID(rawID)
	if err != nil {
		return domstory.Story{}, s.fail(op, msgGetFailed, err)
	}

	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return domstory.Story{}, s.fail(op, msgGetFailed, err)
	}
	return st, nil
}

// Update applies a partial update. Omitted fields keep their stored value.
// The write is guarded by the digest of the text it was computed from, so an edit that
// lands in between is never silently overwritten with a mismatched embedding.
func (s *Service) Update(ctx context.Context, rawID string, title, body *string) error {
	const op = "update story"

	id, err := domstory.ParseID(rawID)
	if err != nil {
		return s.fail(op, msgUpdateFailed, err)
	}
	p, err := patch.New(title, body)
	if err != nil {
		return s.fail(op, msgUpdateFailed, err)
	}

	for attempt := 1; ; attempt++ {
		indexed, err := s.applyPatch(ctx, id, p)
		if err == nil {
			logpkg.Annotate(ctx,
				zap.String("story_id", id.String()),
				zap.Bool("indexed", indexed),
				zap.Int("update_attempts", attempt),
			)
			if !indexed {
				s.indexer.Schedule(id)
			}
			return nil
		}
		if errors.Is(err, domain.ErrConflict) && attempt < maxUpdateAttempts {
			s.logger.Debug("Story changed during update, retrying",
				zap.String("id", id.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return s.fail(op, msgUpdateFailed, err)
	}
}

// applyPatch runs one read-modify-write round and reports whether the stored story is indexed.
func (s *Service) applyPatch(ctx context.Context, id domstory.ID, p patch.Patch) (bool, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("read story: %w", err)
	}

	title, body := p.Apply(cur.Title(), cur.Body())

	var vector []float32
	if title == cur.Title() && body == cur.Body() && cur.Indexed() {
		vector = cur.Embedding()
	} else {
		vector, err = s.indexer.Prepare(ctx, title, body)
		if err != nil {
			return false, err
		}
	}

	expect := domstory.Digest(cur.EmbeddingText())
	if err := s.repo.Replace(ctx, id, expect, title, body, vector); err != nil {
		return false, fmt.Errorf("replace story: %w", err)
	}
	return vector != nil, nil
}

// Delete removes a story permanently. Deleting it again is not found.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	const op = "delete story"

	id, err := domstory.ParseID(rawID)
	if err != nil {
		return s.fail(op, msgDeleteFailed, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(op, msgDeleteFailed, err)
	}
	logpkg.Annotate(ctx, zap.String("story_id", id.String()))
	return nil
}

// fail converts err into an OperationError. Client errors keep a specific message;
// backend failures get the operation's generic message and a warning log.
func (s *Service) fail(op, fallback string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return domain.NewOperationError(op, msgInvalidID, err)
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewOperationError(op, msgNotFound, err)
	case errors.Is(err, domain.ErrValidation):
		return domain.NewOperationError(op, err.Error(), err)
	}
	s.logger.Warn("Story operation failed", zap.String("op", op), zap.Error(err))
	return domain.NewOperationError(op, fallback, err)
}
