package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLRecorder stands in for a MySQL server behind gorm's mysql dialector.
// It records every statement and keeps just enough state to answer the
// table-existence and single-row reload queries the repository issues.
type MySQLRecorder struct {
	// CreatedAt is the timestamp the fake storage assigns to inserted rows.
	CreatedAt time.Time
	// FailCreateTable makes CREATE TABLE statements fail.
	FailCreateTable bool

	mu        sync.Mutex
	execs     []string
	hasTable  bool
	lastID    int64
	lastValue string
}

// NewMySQLRecorder returns a gorm handle using the real mysql dialector with
// its default datetime precision, wired to a recorder instead of a server.
func NewMySQLRecorder(t *testing.T) (*gorm.DB, *MySQLRecorder) {
	t.Helper()

	rec := &MySQLRecorder{CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	sqlDB := sql.OpenDB(&recorderConnector{rec: rec})
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, rec
}

// Execs returns the statements executed so far, in order.
func (r *MySQLRecorder) Execs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.execs...)
}

// CreateTableStatements returns the recorded CREATE TABLE statements.
func (r *MySQLRecorder) CreateTableStatements() []string {
	var out []string
	for _, stmt := range r.Execs() {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "CREATE TABLE") {
			out = append(out, stmt)
		}
	}
	return out
}

func (r *MySQLRecorder) exec(query string, args []driver.NamedValue) (driver.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, query)

	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		if r.FailCreateTable {
			return nil, errors.New("Error 1067 (42000): Invalid default value for 'created_at'")
		}
		r.hasTable = true
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(upper, "INSERT INTO"):
		r.lastID++
		if len(args) > 0 {
			if s, ok := args[0].Value.(string); ok {
				r.lastValue = s
			}
		}
		return insertResult{id: r.lastID}, nil
	}
	return driver.RowsAffected(0), nil
}

func (r *MySQLRecorder) query(query string) (driver.Rows, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "information_schema.tables"):
		count := int64(0)
		if r.hasTable {
			count = 1
		}
		return &recorderRows{columns: []string{"count(*)"}, values: [][]driver.Value{{count}}}, nil
	case strings.HasPrefix(lower, "select database()"):
		return &recorderRows{columns: []string{"DATABASE()"}, values: [][]driver.Value{{"twotierdb"}}}, nil
	case strings.Contains(lower, "from `messages`"):
		if r.lastID == 0 {
			return &recorderRows{columns: []string{"id", "content", "created_at"}}, nil
		}
		return &recorderRows{
			columns: []string{"id", "content", "created_at"},
			values:  [][]driver.Value{{r.lastID, r.lastValue, r.CreatedAt}},
		}, nil
	}
	return &recorderRows{columns: []string{"result"}}, nil
}

type recorderConnector struct {
	rec *MySQLRecorder
}

func (c *recorderConnector) Connect(context.Context) (driver.Conn, error) {
	return &recorderConn{rec: c.rec}, nil
}

func (c *recorderConnector) Driver() driver.Driver {
	return recorderDriver{}
}

type recorderDriver struct{}

func (recorderDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open the recorder through its connector")
}

type recorderConn struct {
	rec *MySQLRecorder
}

func (c *recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not recorded")
}

func (c *recorderConn) Close() error              { return nil }
func (c *recorderConn) Begin() (driver.Tx, error) { return recorderTx{}, nil }

func (c *recorderConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.rec.exec(query, args)
}

func (c *recorderConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	return c.rec.query(query)
}

type recorderTx struct{}

func (recorderTx) Commit() error   { return nil }
func (recorderTx) Rollback() error { return nil }

type insertResult struct {
	id int64
}

func (r insertResult) LastInsertId() (int64, error) { return r.id, nil }
func (r insertResult) RowsAffected() (int64, error) { return 1, nil }

type recorderRows struct {
	columns []string
	values  [][]driver.Value
	next    int
}

func (r *recorderRows) Columns() []string { return r.columns }
func (r *recorderRows) Close() error      { return nil }

func (r *recorderRows) Next(dest []driver.Value) error {
	if r.next >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.next])
	r.next++
	return nil
}
