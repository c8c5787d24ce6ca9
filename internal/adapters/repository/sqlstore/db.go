package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	_ "github.com/glebarez/go-sqlite"

	"github.com/mygeone2/quotes-fake-api/internal/config"
	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
)

// Store is the SQL backing of the quote and order tables.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the configured database and verifies the connection.
func Open(cfg *config.Repository) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("repository configuration is nil")
	}

	d, dsn, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d.name == config.DriverSQLite {
		// One connection: writes are serialized the way SQLite expects
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
			}
		}
	} else {
		if cfg.MaxConn > 0 {
			db.SetMaxOpenConns(cfg.MaxConn)
		}
		if cfg.MaxIdleConn > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConn)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Driver() string {
	return s.dialect.name
}

func (s *Store) Quotes() *QuoteStore {
	return &QuoteStore{store: s}
}

func (s *Store) Orders() *OrderStore {
	return &OrderStore{store: s}
}

func (s *Store) Close() error {
	return s.db.Close()
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
	"PRAGMA foreign_keys=ON;",
}

type dialect struct {
	name   string
	driver string

	createQuotes string
	createOrders string

	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	// INSERT ... RETURNING id instead of LastInsertId
	returning bool
	// quote ids must be bound as integers; other text cannot match
	integerIDs bool

	isUniqueViolation func(error) bool
}

func dialectFor(cfg *config.Repository) (dialect, string, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqliteDialect, cfg.DBPath, nil

	case config.DriverPostgres:
		port := cfg.DBPort
		if port == 0 {
			port = 5432
		}
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			port,
			cfg.DBUsername,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		return postgresDialect, dsn, nil

	case config.DriverMySQL:
		port := cfg.DBPort
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = cfg.DBUsername
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = cfg.DBHost + ":" + strconv.Itoa(port)
		mc.DBName = cfg.DBName
		return mysqlDialect, mc.FormatDSN(), nil
	}

	return dialect{}, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

var sqliteDialect = dialect{
	name:   config.DriverSQLite,
	driver: "sqlite",
	createQuotes: `CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT,
		offer REAL,
		bid REAL,
		last REAL,
		timestamp TEXT,
		lowPrice REAL,
		highPrice REAL,
		openPrice REAL,
		closePrice REAL
	)`,
	createOrders: `CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		amount REAL,
		currency TEXT,
		quoteId INTEGER,
		side TEXT,
		valuta INTEGER,
		createdAt TEXT
	)`,
	isUniqueViolation: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var postgresDialect = dialect{
	name:   config.DriverPostgres,
	driver: "postgres",
	createQuotes: `CREATE TABLE IF NOT EXISTS quotes (
		id BIGSERIAL PRIMARY KEY,
		symbol TEXT,
		offer DOUBLE PRECISION,
		bid DOUBLE PRECISION,
		last DOUBLE PRECISION,
		timestamp TEXT,
		lowPrice DOUBLE PRECISION,
		highPrice DOUBLE PRECISION,
		openPrice DOUBLE PRECISION,
		closePrice DOUBLE PRECISION
	)`,
	createOrders: `CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		amount DOUBLE PRECISION,
		currency TEXT,
		quoteId BIGINT,
		side TEXT,
		valuta BIGINT,
		createdAt TEXT
	)`,
	numbered:   true,
	returning:  true,
	integerIDs: true,
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
}

var mysqlDialect = dialect{
	name:   config.DriverMySQL,
	driver: "mysql",
	createQuotes: `CREATE TABLE IF NOT EXISTS quotes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		symbol VARCHAR(16),
		offer DOUBLE,
		bid DOUBLE,
		last DOUBLE,
		timestamp VARCHAR(32),
		lowPrice DOUBLE,
		highPrice DOUBLE,
		openPrice DOUBLE,
		closePrice DOUBLE
	)`,
	createOrders: `CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(36) PRIMARY KEY,
		amount DOUBLE,
		currency VARCHAR(16),
		quoteId BIGINT,
		side VARCHAR(16),
		valuta BIGINT,
		createdAt VARCHAR(32)
	)`,
	integerIDs: true,
	isUniqueViolation: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == 1062
	},
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quoteIDArg returns the bind value for a quote reference. SQLite compares
// the raw value with its own affinity rules; the other engines only get
// integral ids, and ok is false for anything else.
func (d dialect) quoteIDArg(ref domain.QuoteRef) (arg any, ok bool) {
	if !d.integerIDs {
		return ref.BindValue(), true
	}
	id, ok := ref.IntID()
	return id, ok
}

// Migrate creates the quotes and orders tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createQuotes); err != nil {
		return fmt.Errorf("failed to create quotes table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.createOrders); err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}
	return nil
}

