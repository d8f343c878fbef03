package serp

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/serpblock"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

var _ serpblock.DomainLimiter = (*DomainLimiter)(nil)

// DefaultMinRate is the slowest request rate Throttle lowers an engine to.
const DefaultMinRate = 0.05

// DomainLimiter paces requests per search engine. Hosts that share a
// registrable domain, such as www.search.example and news.search.example,
// share one budget. An engine that pushes back is slowed down through
// Throttle and stays slowed for the life of the limiter.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	minRPS   float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each engine, without bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		minRPS:   min(rps, DefaultMinRate),
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.limiter(host).Wait(ctx)
}

// Throttle halves the request rate of the engine serving host.
func (d *DomainLimiter) Throttle(host string) {
	l := d.limiter(host)
	l.SetLimit(max(l.Limit()/2, rate.Limit(d.minRPS)))
}

// Rate returns the current request rate of the engine serving host.
func (d *DomainLimiter) Rate(host string) float64 {
	return float64(d.limiter(host).Limit())
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	key := engineKey(host)

	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = l
	}
	return l
}

// engineKey returns the registrable domain of host. Addresses and names
// without a public suffix are used as they are.
func engineKey(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(host) != nil {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
