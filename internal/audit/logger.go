package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
)

// Execer is satisfied by *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertEntry = `INSERT INTO audit_logs (user_id, username, action, entity_type, entity_id, details, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`

// Logger appends entries to audit_logs. A failed append never reaches the
// caller: the primary action already succeeded and must not be undone because
// bookkeeping failed. Failures go to the operational channel instead, as a
// structured error log plus a counter, so audit gaps stay detectable.
type Logger struct {
	db       Execer
	logger   *slog.Logger
	failures prometheus.Counter
	now      func() time.Time
}

// NewLogger constructs a Logger. The failure counter may be nil in tests.
func NewLogger(db Execer, logger *slog.Logger, failures prometheus.Counter) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{db: db, logger: logger, failures: failures, now: time.Now}
}

// Record appends one immutable entry. Single atomic insert; fire-and-forget
// from the caller's perspective.
func (l *Logger) Record(ctx context.Context, p authz.Principal, e Entry) {
	if e.Action == "" || e.Entity == "" {
		l.fail("audit entry requires action and entity", slog.String("action", e.Action), slog.String("entity", e.Entity))
		return
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		l.fail("marshal audit details", slog.Any("error", err), slog.String("action", e.Action))
		return
	}
	_, err = l.db.Exec(ctx, insertEntry,
		p.ID, p.Username, e.Action, e.Entity, e.EntityID, details, e.IP, e.UserAgent, l.now().UTC())
	if err != nil {
		l.fail("audit write failed",
			slog.Any("error", err),
			slog.String("action", e.Action),
			slog.String("entity", e.Entity),
			slog.String("entity_id", e.EntityID),
			slog.String("actor", p.Username))
	}
}

func (l *Logger) fail(msg string, attrs ...any) {
	l.logger.Error(msg, attrs...)
	if l.failures != nil {
		l.failures.Inc()
	}
}

// RequestMeta extracts the client address and user agent for an entry.
// RemoteAddr is already the real client IP behind the RealIP middleware.
func RequestMeta(r *http.Request) (ip, userAgent string) {
	ip = r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return ip, r.UserAgent()
}
