package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/omnilaze/internal/models"
)

// Connect opens the durable datastore, creating the database if needed,
// and runs migrations.
func Connect(dsn string, verbose bool, log *zap.Logger) (*gorm.DB, error) {
	if err := ensureDatabase(dsn); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	log.Info("database ready", zap.String("database", databaseName(dsn)))
	return conn, nil
}

// Migrate creates the tables and the order numbering trigger.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.User{},
		&models.VerificationCode{},
		&models.InviteCode{},
		&models.Order{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	for _, stmt := range orderNumberDDL {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("order number trigger: %w", err)
		}
	}

	return nil
}

// Order numbers are assigned inside the database from a per-day counter
// row, so concurrent inserts on one day never share a sequence value.
var orderNumberDDL = []string{
	`CREATE TABLE IF NOT EXISTS order_number_counters (
		order_day date PRIMARY KEY,
		last_seq integer NOT NULL
	)`,
	`CREATE OR REPLACE FUNCTION assign_order_number() RETURNS trigger AS $$
	DECLARE
		next_seq integer;
	BEGIN
		INSERT INTO order_number_counters (order_day, last_seq)
		VALUES (NEW.order_date, 1)
		ON CONFLICT (order_day) DO UPDATE SET last_seq = order_number_counters.last_seq + 1
		RETURNING last_seq INTO next_seq;

		NEW.order_number := 'ORD' || to_char(NEW.order_date, 'YYYYMMDD') ||
			CASE WHEN next_seq < 1000 THEN lpad(next_seq::text, 3, '0') ELSE next_seq::text END;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS orders_assign_number ON orders`,
	`CREATE TRIGGER orders_assign_number BEFORE INSERT ON orders
		FOR EACH ROW EXECUTE FUNCTION assign_order_number()`,
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

func databaseName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if parsed, err := url.Parse(dsn); err == nil && parsed.Path != "" {
			return strings.TrimPrefix(parsed.Path, "/")
		}
	}
	return "postgres"
}
