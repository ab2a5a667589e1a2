package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator runs registered checks concurrently under a shared timeout
// and folds the results into one Response.
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
	metadata map[string]interface{}
}

// NewAggregator creates an aggregator; timeout defaults to 5s.
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]interface{}),
	}
}

// Register adds a check. Nil checkers are ignored so callers can pass
// provider results straight through.
func (a *Aggregator) Register(checker Checker) {
	if checker == nil {
		return
	}
	a.mu.Lock()
	a.checkers = append(a.checkers, checker)
	a.mu.Unlock()
}

// SetMetadata attaches a static metadata entry to every response.
func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	a.metadata[key] = value
	a.mu.Unlock()
}

// Check runs every registered check concurrently.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	metadata := make(map[string]interface{}, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(checkers))
	for _, checker := range checkers {
		go func(c Checker) {
			results <- a.checkOne(checkCtx, c)
		}(checker)
	}

	checks := make(map[string]CheckResult, len(checkers))
	for range checkers {
		result := <-results
		checks[result.Name] = result
	}

	return &Response{
		Status:    overallStatus(checks),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    checks,
		Metadata:  metadata,
	}
}

func (a *Aggregator) checkOne(ctx context.Context, checker Checker) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      checker.Name(),
		Timestamp: start,
	}

	err := checker.Check(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Message = "health check failed"
	} else {
		result.Status = StatusHealthy
		result.Message = "OK"
	}
	return result
}

func overallStatus(checks map[string]CheckResult) Status {
	if len(checks) == 0 {
		return StatusHealthy
	}
	status := StatusHealthy
	for _, result := range checks {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
