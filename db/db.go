package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/config"
	"github.com/sksmith/fulfilment/core"
)

type dbconfig struct {
	timeZone              string
	sslMode               string
	poolMaxConns          int32
	poolMinConns          int32
	poolMaxConnLifetime   time.Duration
	poolMaxConnIdleTime   time.Duration
	poolHealthCheckPeriod time.Duration
}

type configOption func(cn *dbconfig)

func MinPoolConns(minConns int32) func(cn *dbconfig) {
	return func(c *dbconfig) {
		c.poolMinConns = minConns
	}
}

func MaxPoolConns(maxConns int32) func(cn *dbconfig) {
	return func(c *dbconfig) {
		c.poolMaxConns = maxConns
	}
}

func newDbConfig() dbconfig {
	return dbconfig{
		sslMode:               "disable",
		timeZone:              "UTC",
		poolMaxConns:          4,
		poolMinConns:          0,
		poolMaxConnLifetime:   time.Hour,
		poolMaxConnIdleTime:   time.Minute * 30,
		poolHealthCheckPeriod: time.Minute,
	}
}

func formatOption(url, option string, value interface{}) string {
	return url + " " + option + "=" + fmt.Sprintf("%v", value)
}

func addOptionsToConnStr(connStr string, options ...configOption) string {
	config := newDbConfig()
	for _, option := range options {
		option(&config)
	}

	connStr = formatOption(connStr, "sslmode", config.sslMode)
	connStr = formatOption(connStr, "TimeZone", config.timeZone)
	connStr = formatOption(connStr, "pool_max_conns", config.poolMaxConns)
	connStr = formatOption(connStr, "pool_min_conns", config.poolMinConns)
	connStr = formatOption(connStr, "pool_max_conn_lifetime", config.poolMaxConnLifetime)
	connStr = formatOption(connStr, "pool_max_conn_idle_time", config.poolMaxConnIdleTime)
	connStr = formatOption(connStr, "pool_health_check_period", config.poolHealthCheckPeriod)

	return connStr
}

// ConnectDb runs migrations when configured and then blocks until a
// connection pool can be established or ctx is done.
func ConnectDb(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	log.Info().Str("host", cfg.Db.Host.Value).Str("name", cfg.Db.Name.Value).Msg("connecting to the database...")
	var err error

	if cfg.Db.Migrate.Value {
		log.Info().Msg("executing migrations")

		if err = RunMigrations(
			cfg.Db.Host.Value,
			cfg.Db.Name.Value,
			cfg.Db.Port.Value,
			cfg.Db.User.Value,
			cfg.Db.Pass.Value,
			cfg.Db.Clean.Value); err != nil {
			log.Warn().Err(err).Msg("error executing migrations")
		}
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		cfg.Db.Host.Value, cfg.Db.Port.Value, cfg.Db.User.Value, cfg.Db.Pass.Value, cfg.Db.Name.Value)

	var pool *pgxpool.Pool

	url := addOptionsToConnStr(connStr,
		MinPoolConns(int32(cfg.Db.Pool.MinSize.Value)),
		MaxPoolConns(int32(cfg.Db.Pool.MaxSize.Value)))
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	poolConfig.ConnConfig.Logger = logger{}

	for {
		pool, err = pgxpool.ConnectConfig(ctx, poolConfig)
		if err == nil {
			break
		}
		log.Error().Err(err).Msg("failed to create connection pool... retrying")
		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-time.After(1 * time.Second):
		}
	}

	return pool, nil
}

type logger struct {
}

func (l logger) Log(ctx context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	var evt *zerolog.Event
	switch level {
	case pgx.LogLevelTrace:
		evt = log.Trace()
	case pgx.LogLevelDebug:
		evt = log.Debug()
	case pgx.LogLevelInfo:
		evt = log.Debug()
	case pgx.LogLevelWarn:
		evt = log.Warn()
	case pgx.LogLevelError:
		evt = log.Error()
	default:
		evt = log.Debug()
	}

	for k, v := range data {
		evt.Interface(k, v)
	}

	evt.Msg(msg)
}

func RunMigrations(host, database, port, user, password string, clean bool) error {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, database)
	m, err := migrate.New("file:db/migrations", connStr)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrations")
		}
	}()

	if clean {
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			return errors.WithStack(err)
		}
	}
	if err := m.Up(); err != nil {
		if err != migrate.ErrNoChange {
			return errors.WithStack(err)
		}
		log.Info().Msg("schema is up to date")
	}

	return nil
}

// GetQueryOptions picks the connection a read should run on and the row
// locking clause it should append.
func GetQueryOptions(cn core.Conn, options ...core.QueryOptions) (conn core.Conn, forUpdate string, err error) {
	conn = cn
	if len(options) == 0 {
		return conn, "", nil
	}
	if options[0].ForUpdate {
		forUpdate = "FOR UPDATE"
	}
	if options[0].Tx != nil {
		if conn, err = asConn(options[0].Tx); err != nil {
			return nil, "", err
		}
	}
	return conn, forUpdate, nil
}

func GetUpdateOptions(cn core.Conn, options ...core.UpdateOptions) (conn core.Conn, err error) {
	conn = cn
	if len(options) > 0 && options[0].Tx != nil {
		return asConn(options[0].Tx)
	}
	return conn, nil
}

func asConn(tx core.Transaction) (core.Conn, error) {
	conn, ok := tx.(core.Conn)
	if !ok {
		return nil, errors.Errorf("unsupported transaction type %T", tx)
	}
	return conn, nil
}

// AdvisoryLock takes a transaction scoped advisory lock for every key. Keys
// are locked in sorted order so that overlapping scopes cannot deadlock.
func AdvisoryLock(ctx context.Context, conn core.Conn, keys []string) error {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	for _, k := range sorted {
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", k); err != nil {
			return errors.WithMessagef(err, "failed to lock %s", k)
		}
	}
	return nil
}
