package ark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request. Some issuers reject requests
// without a browser-like user agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; etfw/1.0)"

// Options configures a Client.
type Options struct {
	// CacheDir is where responses are cached for the day. Empty disables the cache.
	CacheDir string
	// Interval is the minimum delay between two requests.
	Interval time.Duration
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
}

// DefaultCacheDir returns the default daily cache folder.
func DefaultCacheDir() string { return filepath.Join(os.TempDir(), "etfw-cache") }

// MaxFailures is the number of consecutive failed downloads after which the
// client stops contacting the issuer for a minute.
const MaxFailures = 3

// Client downloads holdings files.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
}

// NewClient returns a client configured by opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:      new(http.Client),
		limiter:   rate.NewLimiter(rate.Inf, 1),
		userAgent: opts.UserAgent,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "issuer",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("download breaker changed state")
		},
	})
	if opts.CacheDir != "" {
		c.http.Transport = &diskCache{dir: opts.CacheDir, base: http.DefaultTransport}
	}
	if opts.Interval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// Fetch downloads the current holdings of a fund.
//
// The disclaimer that issuers append after the holdings is dropped, and the
// share price and rank of each holding are derived. The snapshot date is
// the disclosure date found in the file.
//
// After MaxFailures consecutive failed downloads, Fetch fails immediately
// with an error wrapping gobreaker.ErrOpenState for a minute.
func (c *Client) Fetch(ctx context.Context, fund Fund) (*etfwatch.Snapshot, error) {
	body, err := c.breaker.Execute(func() (interface{}, error) { return c.download(ctx, fund) })
	if err != nil {
		return nil, fmt.Errorf("cannot download %s holdings: %w", fund.Ticker, err)
	}

	s, err := etfwatch.DecodeSnapshot(bytes.NewReader(body.([]byte)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s holdings: %w", fund.Ticker, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%s holdings file has no holdings", fund.Ticker)
	}
	if s.Fund() != fund.Ticker {
		log.Warn().Str("fund", fund.Ticker).Str("found", s.Fund()).Msg("holdings file names another fund")
	}
	return s, nil
}

// download GETs the holdings file of a fund.
func (c *Client) download(ctx context.Context, fund Fund) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fund.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Update is the outcome of downloading and archiving one fund.
type Update struct {
	Fund   string
	Path   string // archived snapshot
	Stored bool   // false if the snapshot was already archived
	Err    error
}

// UpdateArchive downloads every fund and stores the snapshots in the
// archive. Failures are reported per fund.
func UpdateArchive(ctx context.Context, c *Client, archive etfwatch.Archive, funds []Fund) []Update {
	updates := make([]Update, 0, len(funds))
	for _, fund := range funds {
		u := Update{Fund: fund.Ticker}
		s, err := c.Fetch(ctx, fund)
		if err == nil {
			u.Path, u.Stored, err = archive.Store(fund.Ticker, s)
		}
		u.Err = err
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("fund", fund.Ticker).Msg("update failed")
		} else {
			log.Ctx(ctx).Info().Str("fund", fund.Ticker).Str("path", u.Path).Bool("stored", u.Stored).Msg("holdings archived")
		}
		updates = append(updates, u)
	}
	return updates
}
