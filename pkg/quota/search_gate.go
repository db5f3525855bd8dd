package quota

import (
	"log"
	"sync"
	"time"
)

// SearchGate is the process-wide daily quota counter for the paid
// search-augmented call paths. It is constructed once at startup and
// injected into every stage that spends quota; callers that are denied
// fall back to their cheaper mode instead of failing.
type SearchGate struct {
	mu    sync.Mutex
	day   string
	used  int
	limit int
	now   func() time.Time
}

func NewSearchGate(dailyLimit int) *SearchGate {
	return &SearchGate{limit: dailyLimit, now: time.Now}
}

// TryAcquire consumes one unit of today's quota. The counter resets on
// date rollover. The source tag is only used for logging.
func (g *SearchGate) TryAcquire(source string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().Format("2006-01-02")
	if g.day != today {
		g.day = today
		g.used = 0
	}

	if g.used >= g.limit {
		log.Printf("search quota exhausted (%d/%d), downgrading source %q", g.used, g.limit, source)
		return false
	}
	g.used++
	return true
}

// Remaining reports today's unused quota.
func (g *SearchGate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.day != g.now().Format("2006-01-02") {
		return g.limit
	}
	return g.limit - g.used
}
