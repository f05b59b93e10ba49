// ABOUTME: SQLite request log: one row per accepted connection
// ABOUTME: Implements event.Observer and answers the management API's history queries

package db

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/netcmd/internal/event"
	"github.com/harper/netcmd/internal/logger"
	"github.com/harper/netcmd/internal/xdg"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

var log = logger.Tagged("db")

type DB struct {
	conn *sql.DB
}

// Open opens or creates the request log, creating its directory first.
func Open(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := xdg.EnsureParent("XDG_DATA_HOME", dbPath); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer keeps ":memory:" on one database and avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info("request log at %s", dbPath)
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Observe records e. Failures are logged; the dispatcher never waits on them.
func (db *DB) Observe(e event.Event) {
	if err := db.RecordRequest(e); err != nil {
		log.Warn("[%s] %v", e.ShortID(), err)
	}
}

func (db *DB) RecordRequest(e event.Event) error {
	args := e.Args
	if args == nil {
		args = []string{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode args: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO requests (id, time_ns, remote, route, args, outcome, error, error_type, bytes, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), e.Remote, e.Route, string(encoded), string(e.Outcome),
		nullable(e.Error), nullable(e.ErrorType), e.Bytes, int64(e.Duration),
	)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// RecentRequests returns up to limit requests, newest first.
func (db *DB) RecentRequests(limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		`SELECT id, time_ns, remote, route, args, outcome, error, error_type, bytes, duration_ns
		 FROM requests ORDER BY time_ns DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var e event.Event
		var timeNS, durationNS int64
		var args, outcome string
		var errText, errType sql.NullString

		if err := rows.Scan(&e.ID, &timeNS, &e.Remote, &e.Route, &args, &outcome, &errText, &errType, &e.Bytes, &durationNS); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}

		e.Time = time.Unix(0, timeNS)
		e.Duration = time.Duration(durationNS)
		e.Outcome = event.Outcome(outcome)
		if err := json.Unmarshal([]byte(args), &e.Args); err != nil {
			e.Args = []string{}
		}
		if errText.Valid {
			e.Error = errText.String
		}
		if errType.Valid {
			e.ErrorType = errType.String
		}

		events = append(events, e)
	}
	return events, rows.Err()
}

// RouteStat aggregates the request log for one route.
type RouteStat struct {
	Route       string        `json:"route"`
	Requests    int64         `json:"requests"`
	Errors      int64         `json:"errors"`
	AvgDuration time.Duration `json:"avg_duration_ns"`
	LastSeen    time.Time     `json:"last_seen"`
}

// RouteStats groups the log by route, busiest first. Index page hits are
// grouped under the route the client asked for.
func (db *DB) RouteStats() ([]RouteStat, error) {
	rows, err := db.conn.Query(
		`SELECT route,
		        COUNT(*),
		        SUM(CASE WHEN outcome IN ('error', 'timeout') THEN 1 ELSE 0 END),
		        CAST(AVG(duration_ns) AS INTEGER),
		        MAX(time_ns)
		 FROM requests
		 GROUP BY route
		 ORDER BY COUNT(*) DESC, route ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query route stats: %w", err)
	}
	defer rows.Close()

	stats := []RouteStat{}
	for rows.Next() {
		var s RouteStat
		var avg, last int64
		if err := rows.Scan(&s.Route, &s.Requests, &s.Errors, &avg, &last); err != nil {
			return nil, fmt.Errorf("failed to scan route stats: %w", err)
		}
		s.AvgDuration = time.Duration(avg)
		s.LastSeen = time.Unix(0, last)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
