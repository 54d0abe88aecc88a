// Package database manages the MySQL connections lppminer reads from and writes to.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/dbsmedya/lppminer/internal/config"
)

// Manager holds the source (transaction log) and destination (results)
// connections. Either may be nil when the running jobs don't need it.
type Manager struct {
	Source      *sql.DB
	Destination *sql.DB
	config      *config.Config
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// Connect opens the connections the configured jobs need: the source when
// any job reads MySQL, the destination when any job stores results.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config.NeedsSource() {
		if err := m.ConnectSource(ctx); err != nil {
			return err
		}
	}

	if m.config.NeedsDestination() {
		if err := m.ConnectDestination(ctx); err != nil {
			_ = m.Close()
			return err
		}
	}

	return nil
}

// ConnectSource establishes the source connection only.
func (m *Manager) ConnectSource(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx, &m.config.Source)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	m.Source = db
	return nil
}

// ConnectDestination establishes the destination connection only.
func (m *Manager) ConnectDestination(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx, &m.config.Destination)
	if err != nil {
		return fmt.Errorf("failed to connect to destination database: %w", err)
	}
	m.Destination = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = connect(cfg)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				return db, nil
			}
			db.Close()
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DriverConfig converts a DatabaseConfig into the driver's connection config.
// DATE and DATETIME columns are scanned as time.Time.
func DriverConfig(cfg *config.DatabaseConfig) *mysql.Config {
	dc := mysql.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	dc.ParseTime = true

	switch cfg.TLS {
	case "disable":
		dc.TLSConfig = "false"
	case "required":
		dc.TLSConfig = "true"
	default:
		dc.TLSConfig = "preferred"
	}
	return dc
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	return DriverConfig(cfg).FormatDSN()
}

// Close closes all open connections.
func (m *Manager) Close() error {
	var errs []error

	if m.Destination != nil {
		if err := m.Destination.Close(); err != nil {
			errs = append(errs, fmt.Errorf("destination close: %w", err))
		}
		m.Destination = nil
	}

	if m.Source != nil {
		if err := m.Source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("source close: %w", err))
		}
		m.Source = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing connections: %v", errs)
	}
	return nil
}

// Ping verifies the open connections are alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Source != nil {
		if err := m.Source.PingContext(ctx); err != nil {
			return fmt.Errorf("source ping failed: %w", err)
		}
	}

	if m.Destination != nil {
		if err := m.Destination.PingContext(ctx); err != nil {
			return fmt.Errorf("destination ping failed: %w", err)
		}
	}

	return nil
}
