// Package data holds the Postgres repositories.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/target/grailed-admin/internal/data/pgxutil"
	"github.com/target/grailed-admin/internal/domain/audit"
	apperrors "github.com/target/grailed-admin/internal/errors"
	"github.com/target/grailed-admin/internal/ports"
)

const (
	// DefaultAuditLimit applies when ListOptions.Limit is not positive.
	DefaultAuditLimit = 50
	// MaxAuditLimit caps a single page.
	MaxAuditLimit = 500
)

var _ ports.AuditLog = (*AuditRepo)(nil)

// AuditRepo stores control actions in control_audit.
type AuditRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// NewAuditRepo creates an AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db, now: time.Now}
}

type auditRow struct {
	ID         uuid.UUID       `db:"id"`
	Actor      string          `db:"actor"`
	Kind       string          `db:"kind"`
	Action     string          `db:"action"`
	Params     json.RawMessage `db:"params"`
	Outcome    string          `db:"outcome"`
	Message    string          `db:"message"`
	OccurredAt time.Time       `db:"occurred_at"`
}

func (r auditRow) entry() audit.Entry {
	return audit.Entry{
		ID:         r.ID.String(),
		Actor:      r.Actor,
		Kind:       r.Kind,
		Action:     audit.Action(r.Action),
		Params:     r.Params,
		Outcome:    audit.Outcome(r.Outcome),
		Message:    r.Message,
		OccurredAt: r.OccurredAt,
	}
}

// Record inserts entry. A blank ID or zero time is filled in.
func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	id := uuid.New()
	if entry.ID != "" {
		parsed, err := uuid.Parse(entry.ID)
		if err != nil {
			return apperrors.ValidationField("id", "audit id must be a UUID")
		}
		id = parsed
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.now()
	}
	params := entry.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	if !json.Valid(params) {
		return apperrors.ValidationField("params", "audit params must be JSON")
	}

	const q = `
		INSERT INTO control_audit (id, actor, kind, action, params, outcome, message, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, q,
		id, entry.Actor, entry.Kind, string(entry.Action), string(params),
		string(entry.Outcome), entry.Message, entry.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", apperrors.MapDBError(err))
	}
	return nil
}

// List returns entries newest first, filtered by kind and action when set.
func (r *AuditRepo) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	q, args := buildAuditListQuery(opts)

	var out []audit.Entry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[auditRow])
		if err != nil {
			return err
		}
		out = make([]audit.Entry, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.entry())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// Get returns one entry by id.
func (r *AuditRepo) Get(ctx context.Context, id string) (audit.Entry, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return audit.Entry{}, apperrors.NotFoundf("audit entry %q not found", id)
	}
	var out audit.Entry
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, actor, kind, action, params, outcome, message, occurred_at
			FROM control_audit WHERE id = $1`, parsed)
		if err != nil {
			return err
		}
		rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[auditRow])
		if err != nil {
			return err
		}
		out = rec.entry()
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return audit.Entry{}, apperrors.NotFoundf("audit entry %q not found", id)
	}
	if err != nil {
		return audit.Entry{}, fmt.Errorf("get audit entry: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func buildAuditListQuery(opts audit.ListOptions) (string, []any) {
	var (
		b     strings.Builder
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	b.WriteString(`SELECT id, actor, kind, action, params, outcome, message, occurred_at FROM control_audit`)
	if opts.Kind != "" {
		conds = append(conds, "kind = "+arg(opts.Kind))
	}
	if opts.Action != "" {
		conds = append(conds, "action = "+arg(string(opts.Action)))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY occurred_at DESC, id DESC")

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	limit = min(limit, MaxAuditLimit)
	b.WriteString(" LIMIT " + arg(limit))
	if opts.Offset > 0 {
		b.WriteString(" OFFSET " + arg(opts.Offset))
	}
	return b.String(), args
}
