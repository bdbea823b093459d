package result

import (
	"time"

	"github.com/kailas-cloud/storyline/internal/domain/story"
)

// MetricCosine names the cosine similarity metric used by the story index.
const MetricCosine = "cosine"

// ScoreDetail explains how a score was derived.
type ScoreDetail struct {
	Metric   string
	Distance float64
}

// Result is a single ranked search hit: a story projection without its embedding.
type Result struct {
	id        story.ID
	title     string
	body      string
	createdOn time.Time
	score     float64
	detail    ScoreDetail
}

// New creates a search result.
func New(
	id story.ID, title, body string, createdOn time.Time,
	score float64, detail ScoreDetail,
) Result {
	return Result{
		id: id, title: title, body: body, createdOn: createdOn,
		score: score, detail: detail,
	}
}

// ID returns the story identifier.
func (r *Result) ID() story.ID { return r.id }

// Title returns the story title.
func (r *Result) Title() string { return r.title }

// Body returns the story body.
func (r *Result) Body() string { return r.body }

// CreatedOn returns the story creation time.
func (r *Result) CreatedOn() time.Time { return r.createdOn }

// Score returns the similarity score, higher is closer.
func (r *Result) Score() float64 { return r.score }

// Detail returns the score breakdown.
func (r *Result) Detail() ScoreDetail { return r.detail }
