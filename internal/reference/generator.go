package reference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jabana-gov/case-service/internal/domain"
)

// Generator issues the public case reference numbers:
// JAB-{YYYY}-{6 digits} for service requests and JAB-CMP-{YYYY}-{5 digits}
// for complaints. Counters live in Redis (one per type and year) so all
// instances share a sequence; when Redis is unreachable the generator falls
// back to a process-local counter seeded well above the shared range so
// references stay unique in practice.
type Generator struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	fallback map[string]int64
}

// NewGenerator builds a generator. The client may be nil (Redis optional).
func NewGenerator(client *redis.Client, logger *zap.Logger) *Generator {
	return &Generator{
		client:   client,
		logger:   logger,
		now:      time.Now,
		fallback: make(map[string]int64),
	}
}

const fallbackSeed = 90000

// Next returns a fresh reference for the given case type.
func (g *Generator) Next(ctx context.Context, caseType domain.CaseType) (string, error) {
	year := g.now().Year()
	key := counterKey(caseType, year)

	seq, err := g.increment(ctx, key)
	if err != nil {
		g.logger.Warn("reference counter unavailable, using local fallback", zap.Error(err))
		seq = g.incrementFallback(key)
	}

	if caseType == domain.CaseTypeComplaint {
		return fmt.Sprintf("JAB-CMP-%d-%05d", year, seq), nil
	}
	return fmt.Sprintf("JAB-%d-%06d", year, seq), nil
}

func (g *Generator) increment(ctx context.Context, key string) (int64, error) {
	if g.client == nil {
		return 0, redis.ErrClosed
	}
	return g.client.Incr(ctx, key).Result()
}

func (g *Generator) incrementFallback(key string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fallback[key] == 0 {
		g.fallback[key] = fallbackSeed
	}
	g.fallback[key]++
	return g.fallback[key]
}

func counterKey(caseType domain.CaseType, year int) string {
	return fmt.Sprintf("caseref:%s:%d", caseType, year)
}
