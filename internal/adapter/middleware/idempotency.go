package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"loan-marketplace/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HeaderReplayed marks a response served from the idempotency store.
const HeaderReplayed = "Ax-Idempotent-Replay"

type IdempotencyConfig struct {
	// TTL keeps a completed response replayable. Defaults to 5m.
	TTL time.Duration
	// LockTTL bounds how long an in-flight request blocks retries. Defaults to 60s.
	LockTTL time.Duration
	// MaxSkew is the tolerated distance between Ax-Request-At and the server clock. Defaults to 10m.
	MaxSkew time.Duration
	// Timeout bounds each Redis call. Defaults to 2s.
	Timeout time.Duration
	// Prefix namespaces the keys. Defaults to "idemp".
	Prefix string
}

func (c IdempotencyConfig) withDefaults() IdempotencyConfig {
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 60 * time.Second
	}
	if c.MaxSkew <= 0 {
		c.MaxSkew = 10 * time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "idemp"
	}
	return c
}

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// Idempotency deduplicates mutating requests per (method, route, Ax-User-Id, Ax-Request-Id).
// A repeated request with the same body gets the stored response; a different body
// or a request still in flight gets 409. Server errors are not stored, so the
// client may retry them with the same id.
func Idempotency(rdb *redis.Client, cfg IdempotencyConfig) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()
	store := replayStore{rdb: rdb, prefix: cfg.Prefix}
	log := logging.L().Named("idempotency")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			meta, err := readRequestMeta(req.Header, time.Now().UTC(), cfg.MaxSkew)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, err.Error())
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return errorJSON(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := store.key(req.Method, c.Path(), meta.UserID, meta.RequestID)
			rec := replay{
				State:      stateInFlight,
				UserID:     meta.UserID,
				RequestID:  meta.RequestID,
				RequestAt:  meta.RequestAt,
				BodyDigest: digest(body),
				CreatedAt:  time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), cfg.Timeout)
			reserved, err := store.reserve(ctx, key, rec, cfg.LockTTL)
			if err != nil {
				cancel()
				log.Warn("reserve failed", zap.String("key", key), zap.Error(err))
				return errorJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !reserved {
				prev, err := store.get(ctx, key)
				cancel()
				switch {
				case err != nil:
					log.Warn("load failed", zap.String("key", key), zap.Error(err))
					return errorJSON(c, http.StatusConflict, "request is already in progress")
				case prev.BodyDigest != rec.BodyDigest:
					return errorJSON(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				case prev.replayable():
					c.Response().Header().Set(HeaderReplayed, "true")
					return c.Blob(prev.Status, prev.ContentType, prev.Response)
				}
				return errorJSON(c, http.StatusConflict, "request is already in progress")
			}
			cancel()

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}

			ctx, cancel = context.WithTimeout(context.Background(), cfg.Timeout)
			defer cancel()
			if cw.status >= http.StatusInternalServerError {
				if err := store.release(ctx, key); err != nil {
					log.Warn("release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			rec.State = stateDone
			rec.Status = cw.status
			rec.ContentType = cw.Header().Get(echo.HeaderContentType)
			rec.Response = cw.buf.Bytes()
			if err := store.complete(ctx, key, rec, cfg.TTL); err != nil {
				log.Warn("store response failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
