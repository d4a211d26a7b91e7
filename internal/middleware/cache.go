package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pos-quick-sale/internal/config"
)

// cachedResponse is the envelope stored in Redis: status, headers and
// body of a successful response.  The body is base64 in transit by
// virtue of JSON []byte encoding.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// captureWriter tees the response body into a buffer while forwarding
// it to the client, up to a configured limit.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	size     int64
	limit    int64
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.size += int64(len(b))
	if cw.limit > 0 && cw.size > cw.limit {
		cw.overflow = true // too large to cache; still serve it
	} else {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes tenant, route and query into the storage key.  The
// tenant must be part of the key: two tenants share routes but never
// catalog contents.
func cacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	raw := strings.Join([]string{currentTenant(c), r.Method, c.Path(), r.URL.RawQuery}, "|")
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// NewResponseCache returns a middleware that caches successful
// responses of the configured methods in Redis.  Headers are stored
// alongside the body so clients see identical formatting on a hit.
// With caching disabled or redis unavailable the middleware is a
// pass-through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					for k, vals := range cached.Header {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(cached.Status)
					_, _ = c.Response().Write(cached.Body)
					return nil
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && !cw.overflow {
				cached := cachedResponse{
					Status: cw.status,
					Header: c.Response().Header().Clone(),
					Body:   cw.buf.Bytes(),
				}
				if raw, err := json.Marshal(cached); err == nil {
					_ = rdb.SetEx(context.Background(), key, raw, ttl).Err()
				}
			}
			return nil
		}
	}
}
