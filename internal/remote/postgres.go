package remote

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/lib/pq"
)

// SQLTable accesses the leads table directly over Postgres.
type SQLTable struct {
	db    *sql.DB
	table string
}

// OpenSQLTable opens a small pool and checks that the database answers.
func OpenSQLTable(ctx context.Context, dsn, table string) (*SQLTable, error) {
	db, err := sql.Open(config.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(config.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DBPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBPing, err)
	}

	return NewSQLTable(db, table), nil
}

// NewSQLTable wraps an open pool.
func NewSQLTable(db *sql.DB, table string) *SQLTable {
	return &SQLTable{db: db, table: table}
}

func (t *SQLTable) selectQuery() string {
	return "SELECT " + strings.Join(columns, ", ") +
		" FROM " + pq.QuoteIdentifier(t.table) +
		" ORDER BY created_at DESC"
}

func (t *SQLTable) insertQuery() string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO " + pq.QuoteIdentifier(t.table) +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
}

// Select returns all rows, newest first. NULL columns read as empty values.
func (t *SQLTable) Select(ctx context.Context) ([]Row, error) {
	rs, err := t.db.QueryContext(ctx, t.selectQuery())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rs.Close() }()

	var rows []Row
	for rs.Next() {
		var (
			id, typ, name, email, phone, service, notes  sql.NullString
			bestContact, referralCode, language, referrer sql.NullString
			source                                        sql.NullString
			createdAt                                     sql.NullTime
			consent                                       sql.NullBool
		)
		if err := rs.Scan(&id, &createdAt, &typ, &name, &email, &phone, &service, &notes,
			&bestContact, &referralCode, &language, &referrer, &consent, &source); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrDecodeRows, err)
		}

		row := Row{
			ID:           id.String,
			Type:         typ.String,
			Name:         name.String,
			Email:        email.String,
			Phone:        phone.String,
			Service:      service.String,
			Notes:        notes.String,
			BestContact:  bestContact.String,
			ReferralCode: referralCode.String,
			Language:     language.String,
			Referrer:     referrer.String,
			Consent:      consent.Bool,
			Source:       source.String,
		}
		if createdAt.Valid {
			row.CreatedAt = lead.FormatTimestamp(createdAt.Time)
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}

// Insert adds one row. An unparseable createdAt is stored as NULL.
func (t *SQLTable) Insert(ctx context.Context, row Row) error {
	var createdAt interface{}
	if ts, ok := lead.ParseTimestamp(row.CreatedAt); ok {
		createdAt = ts.UTC().Truncate(time.Microsecond)
	}

	_, err := t.db.ExecContext(ctx, t.insertQuery(),
		row.ID, createdAt, row.Type, row.Name, row.Email, row.Phone, row.Service, row.Notes,
		row.BestContact, row.ReferralCode, row.Language, row.Referrer, row.Consent, row.Source)
	return err
}

// Close releases the pool.
func (t *SQLTable) Close() error {
	return t.db.Close()
}
