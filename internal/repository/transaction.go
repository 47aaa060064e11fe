package repository

import (
    "context"
    "database/sql"
    "errors"
)

// Tx is the narrow transaction handle passed between the reservation
// coordinator and the repositories.  Repositories that accept a Tx run
// their statements inside it; the caller owns commit and rollback.
// Abstracting *sql.Tx behind this interface lets the coordinator be
// exercised against in-memory fakes in tests.
type Tx interface {
    Commit() error
    Rollback() error
}

// TxManager begins transactions.  The production implementation wraps
// a *sql.DB; tests substitute a fake that hands out no-op transactions.
type TxManager interface {
    Begin(ctx context.Context) (Tx, error)
}

// sqlTx adapts *sql.Tx to the Tx interface.  Repositories unwrap it
// with sqlTxFrom to reach the underlying handle.
type sqlTx struct {
    tx *sql.Tx
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

// SQLTxManager is the MySQL-backed TxManager used in production.
type SQLTxManager struct {
    db *sql.DB
}

// NewSQLTxManager returns a TxManager bound to the given database.
func NewSQLTxManager(db *sql.DB) *SQLTxManager { return &SQLTxManager{db: db} }

// Begin opens a database transaction with default isolation.
func (m *SQLTxManager) Begin(ctx context.Context) (Tx, error) {
    tx, err := m.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    return &sqlTx{tx: tx}, nil
}

// errNotSQLTx indicates that a repository received a transaction handle
// that did not originate from SQLTxManager.  This is a wiring bug, not
// a runtime condition.
var errNotSQLTx = errors.New("repository: tx is not a sql transaction")

// sqlTxFrom extracts the *sql.Tx from a Tx produced by SQLTxManager.
func sqlTxFrom(tx Tx) (*sql.Tx, error) {
    st, ok := tx.(*sqlTx)
    if !ok {
        return nil, errNotSQLTx
    }
    return st.tx, nil
}
