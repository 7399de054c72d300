package main

import (
	"database/sql"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

var db *sql.DB

func initDB() {
	// Database URL from environment, with a development fallback
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = "user=amora password=amora dbname=amoradb sslmode=disable"
		logrus.Warn("DATABASE_URL not set, using default connection string")
	}

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		logrus.WithError(err).Fatal("Error connecting to the database")
	}
	if err = db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Cannot reach the database")
	}
	logrus.Info("Database connection established successfully")

	// Schema is applied out-of-band; see schema.sql at the repo root.
}
