// Package repo is the relational store. Every store is bound to a
// dialect.ExecQuerier so the same code runs on the pooled driver and inside
// a transaction opened by Client.WithTx.
package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Stores groups the per-entity stores bound to one executor.
type Stores struct {
	Users           *UserStore
	Patients        *PatientStore
	Practitioners   *PractitionerStore
	Catalog         *ProfileCatalogStore
	AuthTokens      *AuthTokenStore
	AssessmentTypes *AssessmentTypeStore
	Questions       *QuestionStore
	Answers         *AnswerStore
	Assessments     *AssessmentStore
	Results         *ResultStore
}

func newStores(q dialect.ExecQuerier, name string) Stores {
	b := entsql.Dialect(name)
	return Stores{
		Users:           &UserStore{q: q, b: b},
		Patients:        &PatientStore{q: q, b: b},
		Practitioners:   &PractitionerStore{q: q, b: b},
		Catalog:         &ProfileCatalogStore{q: q, b: b},
		AuthTokens:      &AuthTokenStore{q: q, b: b},
		AssessmentTypes: &AssessmentTypeStore{q: q, b: b},
		Questions:       &QuestionStore{q: q, b: b},
		Answers:         &AnswerStore{q: q, b: b},
		Assessments:     &AssessmentStore{q: q, b: b},
		Results:         &ResultStore{q: q, b: b},
	}
}

type Client struct {
	Stores
	drv dialect.Driver
}

func NewClient(drv dialect.Driver) *Client {
	return &Client{Stores: newStores(drv, drv.Dialect()), drv: drv}
}

func (c *Client) Driver() dialect.Driver { return c.drv }

func (c *Client) Close() error { return c.drv.Close() }

// Tx is a transaction with its own set of stores.
type Tx struct {
	Stores
	tx dialect.Tx
}

func (tx *Tx) Commit() error   { return tx.tx.Commit() }
func (tx *Tx) Rollback() error { return tx.tx.Rollback() }

func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo: starting a transaction: %w", err)
	}
	return &Tx{Stores: newStores(tx, c.drv.Dialect()), tx: tx}, nil
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back when fn returns an error or panics.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := c.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repo: committing transaction: %w", err)
	}
	return nil
}

// exec runs a statement and returns the number of affected rows.
func exec(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier) (int64, error) {
	query, args := stmt.Query()
	var res stdsql.Result
	if err := q.Exec(ctx, query, args, &res); err != nil {
		return 0, wrapErr(err)
	}
	return res.RowsAffected()
}

// query runs a select and calls scan once per row.
func query(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier, scan func(rows *entsql.Rows) error) error {
	text, args := stmt.Query()
	rows := &entsql.Rows{}
	if err := q.Query(ctx, text, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// queryOne is query for a single row; no row yields ErrNotFound.
func queryOne(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier, scan func(rows *entsql.Rows) error) error {
	found := false
	err := query(ctx, q, stmt, func(rows *entsql.Rows) error {
		if found {
			return nil
		}
		found = true
		return scan(rows)
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier) (int, error) {
	var n int
	err := queryOne(ctx, q, stmt, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(s *entsql.Selector) *entsql.Selector {
	if p.Limit > 0 {
		s.Limit(p.Limit)
	}
	if p.Offset > 0 {
		s.Offset(p.Offset)
	}
	return s
}
