package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-vault/internal/domain"
	"github.com/go-petr/pet-vault/internal/ledger"
	"github.com/go-petr/pet-vault/pkg/dbpkg"
)

// RepoPGS keeps the vault state in Postgres.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns RepoPGS with connection to start transactions.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{conn: conn}
}

// Begin starts a database transaction.
//
// The transaction ignores cancellation of ctx: once a payout has been
// delivered its debit must still commit.
func (r *RepoPGS) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := r.conn.BeginTx(dbpkg.Detach(ctx), nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return nil, errors.Wrap(err, "begin vault transaction")
	}

	return &TxPGS{db: tx, tx: tx}, nil
}

// TxPGS runs vault queries inside a database transaction.
type TxPGS struct {
	db dbpkg.SQLInterface
	tx *sql.Tx
}

// NewTxPGS returns TxPGS running queries on db.
//
// Commit and Rollback are no-ops: the transaction belongs to the caller.
func NewTxPGS(db dbpkg.SQLInterface) *TxPGS {
	return &TxPGS{db: db}
}

const vaultQuery = `
SELECT
	total, deposit_count, withdrawal_count
FROM vault_state
WHERE id = 1
FOR UPDATE
`

// Vault returns the aggregate state. A fresh database reads as the zero state.
func (t *TxPGS) Vault(ctx context.Context) (domain.VaultState, error) {
	l := zerolog.Ctx(ctx)

	row := t.db.QueryRowContext(ctx, vaultQuery)

	var v domain.VaultState

	err := row.Scan(
		&v.Total,
		&v.DepositCount,
		&v.WithdrawalCount,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return domain.VaultState{}, nil
		}

		l.Error().Err(err).Send()

		return v, errors.Wrap(err, "select vault state")
	}

	return v, nil
}

const accountQuery = `
SELECT
	account, balance, deposit_count, withdrawal_count
FROM vault_accounts
WHERE account = $1
FOR UPDATE
`

// Account returns the account state. Accounts without history read as zero.
func (t *TxPGS) Account(ctx context.Context, account string) (domain.AccountState, error) {
	l := zerolog.Ctx(ctx)

	row := t.db.QueryRowContext(ctx, accountQuery, account)

	var a domain.AccountState

	err := row.Scan(
		&a.Account,
		&a.Balance,
		&a.DepositCount,
		&a.WithdrawalCount,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return domain.AccountState{Account: account}, nil
		}

		l.Error().Err(err).Send()

		return a, errors.Wrapf(err, "select vault account %q", account)
	}

	return a, nil
}

const saveVaultQuery = `
INSERT INTO
	vault_state (id, total, deposit_count, withdrawal_count)
VALUES
	(1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
	total = EXCLUDED.total,
	deposit_count = EXCLUDED.deposit_count,
	withdrawal_count = EXCLUDED.withdrawal_count
`

// SaveVault writes the aggregate state.
func (t *TxPGS) SaveVault(ctx context.Context, v domain.VaultState) error {
	l := zerolog.Ctx(ctx)

	_, err := t.db.ExecContext(ctx, saveVaultQuery, v.Total, v.DepositCount, v.WithdrawalCount)
	if err != nil {
		l.Error().Err(err).Send()
		return checkViolation(errors.Wrap(err, "save vault state"))
	}

	return nil
}

const saveAccountQuery = `
INSERT INTO
	vault_accounts (account, balance, deposit_count, withdrawal_count)
VALUES
	($1, $2, $3, $4)
ON CONFLICT (account) DO UPDATE SET
	balance = EXCLUDED.balance,
	deposit_count = EXCLUDED.deposit_count,
	withdrawal_count = EXCLUDED.withdrawal_count
`

// SaveAccount writes the account state.
func (t *TxPGS) SaveAccount(ctx context.Context, a domain.AccountState) error {
	l := zerolog.Ctx(ctx)

	_, err := t.db.ExecContext(ctx, saveAccountQuery, a.Account, a.Balance, a.DepositCount, a.WithdrawalCount)
	if err != nil {
		l.Error().Err(err).Send()
		return checkViolation(errors.Wrapf(err, "save vault account %q", a.Account))
	}

	return nil
}

const appendEventQuery = `
INSERT INTO
	vault_events (kind, account, amount, balance)
VALUES
	($1, $2, $3, $4)
RETURNING id, kind, account, amount, balance, created_at
`

// AppendEvent inserts e into the journal and returns the stored row.
func (t *TxPGS) AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	l := zerolog.Ctx(ctx)

	row := t.db.QueryRowContext(ctx, appendEventQuery, string(e.Kind), e.Account, e.Amount, e.Balance)

	got, err := scanEvent(row)
	if err != nil {
		l.Error().Err(err).Msgf("AppendEvent(ctx, %+v)", e)
		return domain.Event{}, errors.Wrap(err, "insert vault event")
	}

	return got, nil
}

const listEventsQuery = `
SELECT
	id, kind, account, amount, balance, created_at
FROM vault_events
WHERE account = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// ListEvents returns a page of the account's journal ordered by id.
// A non-positive limit returns all events after offset.
func (t *TxPGS) ListEvents(ctx context.Context, arg domain.ListEventsParams) ([]domain.Event, error) {
	l := zerolog.Ctx(ctx)

	var limit interface{}
	if arg.Limit > 0 {
		limit = arg.Limit
	}

	rows, err := t.db.QueryContext(ctx, listEventsQuery, arg.Account, limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errors.Wrap(err, "list vault events")
	}
	defer rows.Close()

	items := []domain.Event{}

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errors.Wrap(err, "scan vault event")
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errors.Wrap(err, "iterate vault events")
	}

	return items, nil
}

// Commit commits the database transaction.
func (t *TxPGS) Commit() error {
	if t.tx == nil {
		return nil
	}

	return errors.Wrap(t.tx.Commit(), "commit vault transaction")
}

// Rollback aborts the database transaction.
func (t *TxPGS) Rollback() error {
	if t.tx == nil {
		return nil
	}

	return errors.Wrap(t.tx.Rollback(), "rollback vault transaction")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (domain.Event, error) {
	var (
		e    domain.Event
		kind string
	)

	err := s.Scan(
		&e.ID,
		&kind,
		&e.Account,
		&e.Amount,
		&e.Balance,
		&e.CreatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}

	e.Kind = domain.EventKind(kind)

	return e, nil
}

// checkViolation maps an account balance check violation to ErrInsufficientBalance.
// A negative vault total is a broken invariant and stays an internal error.
func checkViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "vault_accounts_balance_check":
			return domain.ErrInsufficientBalance
		case "vault_state_total_check":
			return errors.Wrap(err, "vault total would be negative")
		}
	}

	return err
}
