package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// how long an in-flight submission holds its key
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second

	headerRequestID = "Ax-Request-Id"
	headerRequestAt = "Ax-Request-At"
	headerReplay    = "Ax-Idempotent-Replay"
)

// record is what redis keeps per idempotency key.
type record struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r record) replayable() bool { return !r.InProgress && r.Code != 0 && len(r.Body) > 0 }

// teeWriter copies the response body while passing it through.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]any{"success": false, "error": msg})
}

type idempotency struct {
	rdb redis.Cmdable
	ttl time.Duration
	log *slog.Logger
}

// IdempotencyMiddleware makes a retried submission return the first answer
// instead of creating a second application. It is keyed on method, route,
// caller and Ax-Request-Id; requests without that header pass through.
// Ax-Request-At is required alongside it and must be within maxClockSkew.
// Server errors are forgotten so the client can retry them.
func IdempotencyMiddleware(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	m := &idempotency{rdb: rdb, ttl: ttl, log: logger}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error { return m.handle(c, next) }
	}
}

func (m *idempotency) handle(c echo.Context, next echo.HandlerFunc) error {
	req := c.Request()
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return next(c)
	}

	reqID := strings.TrimSpace(req.Header.Get(headerRequestID))
	if reqID == "" {
		return next(c)
	}
	if !validReqID(reqID) {
		return errJSON(c, http.StatusBadRequest, "invalid Ax-Request-Id format")
	}
	reqAt, err := parseAxRequestAt(req.Header.Get(headerRequestAt))
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	if now := nowUTC(); reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
		return errJSON(c, http.StatusBadRequest, "Ax-Request-At too skewed")
	}

	var body []byte
	if req.Body != nil {
		if body, err = io.ReadAll(req.Body); err != nil {
			return errJSON(c, http.StatusBadRequest, "could not read request body")
		}
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	key := buildKey(req.Method, c.Path(), subjectKey(IdentityFrom(c)), strings.ToLower(reqID))
	pending := record{
		InProgress:  true,
		BodySHA256:  fingerprint(req.Header.Get(echo.HeaderContentType), body),
		RequestID:   reqID,
		RequestAtMS: reqAt.UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
	ok, err := reserve(ctx, m.rdb, key, pending)
	if err != nil {
		cancel()
		m.log.ErrorContext(req.Context(), "idempotency store unavailable", "key", key, "error", err)
		return errJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
	}
	if !ok {
		defer cancel()
		return m.replay(ctx, c, key, pending.BodySHA256)
	}
	cancel()

	tee := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
	c.Response().Writer = tee
	if err := next(c); err != nil {
		c.Error(err)
	}
	m.finish(req.Context(), key, pending, tee)
	return nil
}

// replay answers a request whose key is already taken.
func (m *idempotency) replay(ctx context.Context, c echo.Context, key, hash string) error {
	cur, err := loadRecord(ctx, m.rdb, key)
	if err != nil {
		m.log.WarnContext(ctx, "failed to load idempotency record", "key", key, "error", err)
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
		return errJSON(c, http.StatusConflict, "Ax-Request-Id reused with different body")
	}
	if cur.replayable() {
		c.Response().Header().Set(headerReplay, "true")
		return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
	}
	return errJSON(c, http.StatusConflict, "request is already in progress")
}

// finish stores the handler's answer, or releases the key after a server error.
func (m *idempotency) finish(reqCtx context.Context, key string, pending record, tee *teeWriter) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), storeTimeout)
	defer cancel()

	if tee.code >= http.StatusInternalServerError {
		if err := m.rdb.Del(ctx, key).Err(); err != nil {
			m.log.WarnContext(ctx, "failed to release idempotency key", "key", key, "error", err)
		}
		return
	}
	done := pending
	done.InProgress = false
	done.Code = tee.code
	done.Body = tee.buf.Bytes()
	done.CreatedAt = nowUTC()
	if err := remember(ctx, m.rdb, key, done, m.ttl); err != nil {
		m.log.WarnContext(ctx, "failed to store idempotent response", "key", key, "error", err)
	}
}
