// Package reqgate implements the request gate (spec §4.5): bearer-token
// authentication, process-wide rate limiting, and an uncompressed-byte cap
// enforced during decompression, applied in that order ahead of the
// ingestion core.
package reqgate

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/nucleus/ingest-core/internal/apperr"
)

// Gate holds the process-wide state the request gate checks against: the
// shared bearer token and the single rate limiter admission-controlling
// the whole server (spec: "keyed per process, not per client").
type Gate struct {
	token                string
	limiter              *rate.Limiter
	maxUncompressedBytes int64
}

// New builds a Gate. ratePerSecond/burst configure the token bucket (spec's
// canonical values are 200/400); maxUncompressedBytes bounds the
// decompressed body size to defend against gzip-bomb payloads.
func New(token string, ratePerSecond float64, burst int, maxUncompressedBytes int64) *Gate {
	return &Gate{
		token:                token,
		limiter:              rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		maxUncompressedBytes: maxUncompressedBytes,
	}
}

// Authenticate checks for an exact "Bearer <token>" Authorization header,
// comparing in constant time so timing does not leak how many leading
// bytes of the token matched.
func (g *Gate) Authenticate(r *http.Request) error {
	const prefix = "Bearer "

	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return apperr.Unauthorized()
	}
	got := h[len(prefix):]

	if subtle.ConstantTimeCompare([]byte(got), []byte(g.token)) != 1 {
		return apperr.Unauthorized()
	}
	return nil
}

// Allow applies the process-wide token bucket. The canonical policy is to
// reject immediately rather than wait for capacity.
func (g *Gate) Allow() error {
	if !g.limiter.Allow() {
		return apperr.RateLimited()
	}
	return nil
}

// MaxUncompressedBytes returns the uncompressed-byte budget the streaming
// decoder (internal/gzipline) enforces while decompressing, since the cap
// must apply to the *decompressed* stream to defend against gzip bombs
// (spec §4.5, §8: "uncompressed size exceeds the size cap").
func (g *Gate) MaxUncompressedBytes() int64 {
	return g.maxUncompressedBytes
}
