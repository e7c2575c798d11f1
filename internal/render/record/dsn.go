package record

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect holds what differs between the supported databases.
type dialect struct {
	name      string
	schema    []string
	returning bool // insert reports the new id via RETURNING instead of LastInsertId
	numbered  bool // placeholders are $1, $2 ...
}

var (
	sqliteDialect = dialect{
		name: "sqlite3",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tortuga_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				status TEXT NOT NULL,
				started_ns INTEGER NOT NULL,
				parse_ns INTEGER NOT NULL,
				link_ns INTEGER NOT NULL,
				exec_ns INTEGER NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS tortuga_calls (
				run_id INTEGER NOT NULL REFERENCES tortuga_runs(id),
				seq INTEGER NOT NULL,
				op TEXT NOT NULL,
				x1 REAL, y1 REAL, x2 REAL, y2 REAL, angle REAL,
				r REAL, g REAL, b REAL,
				text TEXT,
				turtle INTEGER,
				PRIMARY KEY (run_id, seq))`,
		},
	}
	mysqlDialect = dialect{
		name: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tortuga_runs (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(16) NOT NULL,
				started_ns BIGINT NOT NULL,
				parse_ns BIGINT NOT NULL,
				link_ns BIGINT NOT NULL,
				exec_ns BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS tortuga_calls (
				run_id BIGINT NOT NULL,
				seq INT NOT NULL,
				op VARCHAR(16) NOT NULL,
				x1 DOUBLE, y1 DOUBLE, x2 DOUBLE, y2 DOUBLE, angle DOUBLE,
				r DOUBLE, g DOUBLE, b DOUBLE,
				text TEXT,
				turtle INT,
				PRIMARY KEY (run_id, seq),
				FOREIGN KEY (run_id) REFERENCES tortuga_runs(id))`,
		},
	}
	postgresDialect = dialect{
		name:      "postgres",
		returning: true,
		numbered:  true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tortuga_runs (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				status TEXT NOT NULL,
				started_ns BIGINT NOT NULL,
				parse_ns BIGINT NOT NULL,
				link_ns BIGINT NOT NULL,
				exec_ns BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS tortuga_calls (
				run_id BIGINT NOT NULL REFERENCES tortuga_runs(id),
				seq INTEGER NOT NULL,
				op TEXT NOT NULL,
				x1 DOUBLE PRECISION, y1 DOUBLE PRECISION, x2 DOUBLE PRECISION, y2 DOUBLE PRECISION,
				angle DOUBLE PRECISION,
				r REAL, g REAL, b REAL,
				text TEXT,
				turtle INTEGER,
				PRIMARY KEY (run_id, seq))`,
		},
	}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, ch := range q {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// parseDSN picks the dialect for dsn and returns what the driver expects.
//
//	trace.db, sqlite3:trace.db, sqlite3::memory:   go-sqlite3
//	mysql://user:pw@tcp(host:3306)/db               go-sql-driver/mysql
//	postgres://user@host/db?sslmode=disable         lib/pq
func parseDSN(dsn string) (dialect, string, error) {
	switch {
	case dsn == "":
		return dialect{}, "", fmt.Errorf("empty record DSN")
	case strings.HasPrefix(dsn, "mysql://"):
		return mysqlDialect, strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgresDialect, dsn, nil
	case strings.HasPrefix(dsn, "sqlite3:"):
		return sqliteDialect, strings.TrimPrefix(dsn, "sqlite3:"), nil
	default:
		return sqliteDialect, dsn, nil
	}
}

func connect(d dialect, target string) (*sql.DB, error) {
	var (
		conn driver.Connector
		err  error
	)
	switch d.name {
	case mysqlDialect.name:
		cfg, perr := mysql.ParseDSN(target)
		if perr != nil {
			return nil, fmt.Errorf("mysql dsn: %w", perr)
		}
		cfg.ParseTime = true
		conn, err = mysql.NewConnector(cfg)
	case postgresDialect.name:
		conn, err = pq.NewConnector(target)
	default:
		db, err := sql.Open(d.name, target)
		if err != nil {
			return nil, err
		}
		// one connection keeps :memory: databases alive and avoids lock errors
		db.SetMaxOpenConns(1)
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s dsn: %w", d.name, err)
	}
	return sql.OpenDB(conn), nil
}
