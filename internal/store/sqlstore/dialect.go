package sqlstore

import (
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures what differs between the supported engines. Queries are
// written with ? placeholders and rebound per driver.
type Dialect struct {
	Name   string
	Driver string

	schema    []string
	columns   string
	orderBy   string
	returning bool
	maxConns  int
	prepare   func(dsn string) (string, error)
}

// SQLite is the embedded variant: a three-column table (id, text, done) listed
// in insertion order.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite3",
	schema: []string{`
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    done INTEGER NOT NULL DEFAULT 0
)`},
	columns:  "id, text, done",
	orderBy:  "id",
	maxConns: 1,
}

// NotifyChannel is the LISTEN/NOTIFY channel fed by the tasks trigger.
const NotifyChannel = "tasks_changes"

// Postgres is the hosted variant: rows carry created_at, listing follows
// creation time, and every row change is announced on NotifyChannel.
var Postgres = Dialect{
	Name:   "postgres",
	Driver: "pgx",
	schema: []string{`
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    done BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, `
CREATE OR REPLACE FUNCTION notify_tasks_change() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('` + NotifyChannel + `', json_build_object(
        'op', lower(TG_OP),
        'id', COALESCE(NEW.id, OLD.id),
        'at', now()
    )::text);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS tasks_notify ON tasks`,
		`CREATE TRIGGER tasks_notify AFTER INSERT OR UPDATE OR DELETE ON tasks FOR EACH ROW EXECUTE FUNCTION notify_tasks_change()`,
	},
	columns:   "id, text, done, created_at",
	orderBy:   "created_at, id",
	returning: true,
}

var MySQL = Dialect{
	Name:   "mysql",
	Driver: "mysql",
	schema: []string{`
CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    text TEXT NOT NULL,
    done TINYINT(1) NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
	columns: "id, text, done, created_at",
	orderBy: "id",
	prepare: mysqlDSN,
}

// mysqlDSN forces parseTime so created_at scans into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
