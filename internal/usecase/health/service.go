package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search is impaired but stories can still be read and written.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentIndex     = "index"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexChecker
	indexName string
	embedding EmbeddingChecker
}

// New creates a Service. index and embedding can be nil.
func New(db DBPinger, index IndexChecker, indexName string, embedding EmbeddingChecker) *Service {
	return &Service{db: db, index: index, indexName: indexName, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		// index lives in the database
		if s.index != nil {
			checks[ComponentIndex] = CheckError
		}
	} else {
		checks[ComponentDatabase] = CheckOK
		if s.index != nil {
			checks[ComponentIndex] = result(s.checkIndex(ctx))
		}
	}

	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) checkIndex(ctx context.Context) error {
	ok, err := s.index.IndexExists(ctx, s.indexName)
	if err != nil {
		return err
	}
	if !ok {
		return errIndexMissing
	}
	return nil
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
