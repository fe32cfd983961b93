package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/fs"
)

// pingAttempts bounds the startup wait for the database container.
const pingAttempts = 30

// dsn builds a postgres connection URL for the given database. Sessions run
// in UTC; every timestamp the services write is UTC already, so the session
// timezone must never reinterpret them. TLS stays on unless explicitly
// disabled for local development.
func dsn(dbName string, creds *url.Userinfo, conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     creds,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the tenant database as the app role.
func Open(conf *core.Config) (*sql.DB, error) {
	creds := url.UserPassword(conf.Database.User, conf.Database.Password)
	return sql.Open(conf.Database.Engine, dsn(conf.Database.Name, creds, conf))
}

// ping waits for the database to accept connections, sleeping 100ms longer
// after each failed attempt.
func ping(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

// exists runs a single-row boolean query against the postgres catalogs.
func exists(db *sql.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := db.QueryRow(query, args...).Scan(&found); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return found, nil
}

// CreateIfNotExist provisions the app role and the tenant database over a
// single admin connection. It is run once per deployment by the `createdb`
// admin command; the API itself never connects with admin credentials.
func CreateIfNotExist(conf *core.Config) error {
	creds := url.UserPassword(conf.Database.User, conf.Database.Password)
	if conf.Database.AdminUser != "" {
		creds = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}
	db, err := sql.Open(conf.Database.Engine, dsn("postgres", creds, conf))
	if err != nil {
		return errors.Wrap(err, "opening admin connection")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return err
	}
	if err = createAppRole(db, conf); err != nil {
		return err
	}
	return createAppDB(db, conf)
}

func createAppRole(db *sql.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app role")
	}
	if found {
		return nil
	}

	// identifiers cannot be bound as parameters; these come from our own
	// deployment config, not from request input
	q := fmt.Sprintf("CREATE ROLE %s LOGIN ENCRYPTED PASSWORD '%s'", conf.Database.User, conf.Database.Password)
	if _, err = db.Exec(q); err != nil {
		return errors.Wrap(err, "creating app role")
	}
	return nil
}

func createAppDB(db *sql.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking database")
	}
	if found {
		return nil
	}

	owner := conf.Database.User
	if owner == "" {
		owner = "CURRENT_USER"
	}
	if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s OWNER %s", conf.Database.Name, owner)); err != nil {
		return errors.Wrap(err, "creating database")
	}

	// the app role owns the database, so migrations (goose version table
	// included) need no further grants
	_, err = db.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s", conf.Database.Name, owner))
	return errors.Wrap(err, "granting database privileges")
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	return errors.Wrap(goose.RunFS("up", db, appfs.FS, "migrations"), "migrating database")
}
