// Package pgprobe inspects and pings the PostgreSQL database named by a
// configuration DSN.
package pgprobe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Driver is the database/sql driver name registered by pgx.
const Driver = "pgx"

// DefaultTimeout bounds Ping when the context has no deadline.
const DefaultTimeout = 5 * time.Second

// Target describes where a DSN points. It never carries the password.
type Target struct {
	Host     string `json:"host" yaml:"host"`
	Port     uint16 `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
}

// Addr returns host:port.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// Normalize drops a "+driver" suffix from the URL scheme, so
// "postgresql+psycopg://..." becomes "postgresql://...". Other DSNs are
// returned unchanged.
func Normalize(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if base, _, found := strings.Cut(scheme, "+"); found {
		return base + "://" + rest
	}
	return dsn
}

// Describe parses dsn and reports its target.
func Describe(dsn string) (Target, error) {
	cfg, err := pgx.ParseConfig(Normalize(dsn))
	if err != nil {
		return Target{}, fmt.Errorf("parse dsn: %w", err)
	}
	return Target{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		User:     cfg.User,
	}, nil
}

// Ping opens a connection to dsn and checks it answers.
func Ping(ctx context.Context, dsn string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	db, err := sql.Open(Driver, Normalize(dsn))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		if code := ErrorCode(err); code != "" {
			return fmt.Errorf("ping database: sqlstate %s: %w", code, err)
		}
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ErrorCode returns the SQLSTATE of a server error, or "".
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
