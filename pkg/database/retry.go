package database

import (
	"context"
	"database/sql/driver"
	"math/rand"
	"strings"
	"time"
)

const (
	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// busyRetrier re-runs an operation while SQLite reports the database as busy
// or locked, with exponential backoff and jitter.
type busyRetrier struct {
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func newBusyRetrier(maxRetries int) *busyRetrier {
	return &busyRetrier{maxRetries: maxRetries, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// busyMarkers covers the messages produced by both modernc.org/sqlite and
// mattn/go-sqlite3. (5) and (6) are the SQLITE_BUSY and SQLITE_LOCKED codes.
var busyMarkers = []string{
	"database is locked",
	"database table is locked",
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"(5)",
	"(6)",
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range busyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (r *busyRetrier) delay(attempt int) time.Duration {
	d := retryBaseDelay * time.Duration(1<<attempt)
	if d >= retryMaxDelay {
		return retryMaxDelay
	}
	d += time.Duration(rand.Int63n(int64(d / 4)))
	if d > retryMaxDelay {
		d = retryMaxDelay
	}
	return d
}

func (r *busyRetrier) do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isBusyError(err) || attempt >= r.maxRetries {
			return err
		}
		if serr := r.sleep(ctx, r.delay(attempt)); serr != nil {
			return serr
		}
	}
}

// busyConnector hands out connections whose exec, query, and begin calls are
// retried through the retrier.
type busyConnector struct {
	driver.Connector
	retrier *busyRetrier
}

func (bc *busyConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := bc.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &busyConn{conn: conn, retrier: bc.retrier}, nil
}

type busyConn struct {
	conn    driver.Conn
	retrier *busyRetrier
}

func (c *busyConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *busyConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var stmt driver.Stmt
	var err error
	if pc, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = pc.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &busyStmt{stmt: stmt, retrier: c.retrier}, nil
}

func (c *busyConn) Close() error {
	return c.conn.Close()
}

func (c *busyConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *busyConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	var tx driver.Tx
	err := c.retrier.do(ctx, func() error {
		var err error
		if bt, ok := c.conn.(driver.ConnBeginTx); ok {
			tx, err = bt.BeginTx(ctx, opts)
		} else {
			tx, err = c.conn.Begin() //nolint:staticcheck // required by driver.Conn
		}
		return err
	})
	return tx, err
}

func (c *busyConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ec, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	var res driver.Result
	err := c.retrier.do(ctx, func() error {
		var err error
		res, err = ec.ExecContext(ctx, query, args)
		return err
	})
	return res, err
}

func (c *busyConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qc, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	var rows driver.Rows
	err := c.retrier.do(ctx, func() error {
		var err error
		rows, err = qc.QueryContext(ctx, query, args)
		return err
	})
	return rows, err
}

func (c *busyConn) Ping(ctx context.Context) error {
	if p, ok := c.conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *busyConn) ResetSession(ctx context.Context) error {
	if r, ok := c.conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *busyConn) IsValid() bool {
	if v, ok := c.conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

type busyStmt struct {
	stmt    driver.Stmt
	retrier *busyRetrier
}

func (s *busyStmt) Close() error {
	return s.stmt.Close()
}

func (s *busyStmt) NumInput() int {
	return s.stmt.NumInput()
}

func (s *busyStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *busyStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *busyStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	var res driver.Result
	err := s.retrier.do(ctx, func() error {
		var err error
		if ec, ok := s.stmt.(driver.StmtExecContext); ok {
			res, err = ec.ExecContext(ctx, args)
		} else {
			res, err = s.stmt.Exec(plainValues(args)) //nolint:staticcheck // required by driver.Stmt
		}
		return err
	})
	return res, err
}

func (s *busyStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	var rows driver.Rows
	err := s.retrier.do(ctx, func() error {
		var err error
		if qc, ok := s.stmt.(driver.StmtQueryContext); ok {
			rows, err = qc.QueryContext(ctx, args)
		} else {
			rows, err = s.stmt.Query(plainValues(args)) //nolint:staticcheck // required by driver.Stmt
		}
		return err
	})
	return rows, err
}

func namedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return named
}

func plainValues(args []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	return values
}
