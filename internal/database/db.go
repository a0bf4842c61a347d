package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-ticketing/internal/config"
)

// DSN builds the go-sql-driver connection string for mc.
func DSN(mc config.MySQLConfig) string {
	auth := mc.User
	if mc.Pass != "" {
		auth = fmt.Sprintf("%s:%s", mc.User, mc.Pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, mc.Host, mc.Port, mc.Name)
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, mc config.MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(mc))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
