package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresJournal implements Journal using PostgreSQL.
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS mirror_decisions (
		id              TEXT PRIMARY KEY,
		signal_key      TEXT NOT NULL,
		market_id       TEXT NOT NULL,
		question        TEXT,
		outcome         TEXT,
		side            TEXT,
		signal_price    DOUBLE PRECISION,
		signal_notional DOUBLE PRECISION,
		category        TEXT,
		reason          TEXT,
		action          TEXT NOT NULL,
		size_usd        DOUBLE PRECISION,
		order_id        TEXT,
		order_status    TEXT,
		mode            TEXT,
		decided_at      TIMESTAMPTZ NOT NULL
	)
`

// NewPostgresJournal connects and ensures the decisions table exists.
func NewPostgresJournal(cfg *PostgresConfig) (*PostgresJournal, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	_, err = db.Exec(createTableQuery)
	if err != nil {
		return nil, fmt.Errorf("create decisions table: %w", err)
	}

	cfg.Logger.Info("postgres-journal-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresJournal{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// RecordDecision inserts one decision row.
func (p *PostgresJournal) RecordDecision(ctx context.Context, decision *Decision) error {
	query := `
		INSERT INTO mirror_decisions (
			id, signal_key, market_id, question, outcome, side,
			signal_price, signal_notional, category, reason, action,
			size_usd, order_id, order_status, mode, decided_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		decision.ID,
		decision.SignalKey,
		decision.MarketID,
		decision.Question,
		decision.Outcome,
		string(decision.Side),
		decision.SignalPrice,
		decision.SignalNotional,
		decision.Category,
		decision.Reason,
		decision.Action,
		decision.SizeUSD,
		decision.OrderID,
		decision.OrderStatus,
		decision.Mode,
		decision.DecidedAt,
	)

	if err != nil {
		WriteErrorsTotal.Inc()
		return fmt.Errorf("insert decision: %w", err)
	}

	DecisionsRecordedTotal.WithLabelValues(decision.Action).Inc()

	p.logger.Debug("decision-stored",
		zap.String("decision-id", decision.ID),
		zap.String("market", decision.MarketID),
		zap.String("action", decision.Action))

	return nil
}

// Close closes the database connection.
func (p *PostgresJournal) Close() error {
	p.logger.Info("closing-postgres-journal")
	return p.db.Close()
}
