package store

import (
	"database/sql"
	"errors"

	"mailshop/internal/logging"
	"mailshop/internal/model"
)

// ErrDepositNotFound also covers requests already resolved: resolving
// twice is a safe no-op that reports not found.
var ErrDepositNotFound = errors.New("deposit request not found or already processed")

func (r *Database) RecordDeposit(userID int64, amount float64, method string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(
		`INSERT INTO deposit_requests (user_id, amount, method) VALUES ($1, $2, $3) RETURNING id`,
		userID, amount, method).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LatestPendingDeposit finds the request a follow-up transaction id
// belongs to.
func (r *Database) LatestPendingDeposit(userID int64) (int64, error) {
	var id int64
	err := r.DB.QueryRow(
		`SELECT id FROM deposit_requests WHERE user_id = $1 AND status = 'pending'
		 ORDER BY id DESC LIMIT 1`, userID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrDepositNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *Database) AttachTransactionID(requestID int64, txnID string) error {
	res, err := r.DB.Exec(
		`UPDATE deposit_requests SET transaction_id = $1 WHERE id = $2 AND status = 'pending'`,
		txnID, requestID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDepositNotFound
	}
	return nil
}

// ResolveDeposit moves a pending request to approved or rejected.
// Approval credits the user's balance in the same transaction. Only a
// request still pending transitions, so a second resolve returns
// ErrDepositNotFound and the balance is credited at most once.
func (r *Database) ResolveDeposit(requestID int64, approve bool) (*model.DepositRequest, error) {
	status := model.DepositRejected
	if approve {
		status = model.DepositApproved
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req model.DepositRequest
	err = tx.QueryRow(
		`UPDATE deposit_requests SET status = $1 WHERE id = $2 AND status = 'pending'
		 RETURNING id, user_id, amount, method, status`,
		status, requestID).
		Scan(&req.ID, &req.UserID, &req.Amount, &req.Method, &req.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}

	if approve {
		_, err = tx.Exec(`UPDATE users SET balance = balance + $1 WHERE user_id = $2`,
			req.Amount, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	logging.Logg.Info("Deposit resolved",
		"request_id", req.ID, "user_id", req.UserID, "status", req.Status)
	return &req, nil
}

func (r *Database) PendingDeposits() ([]model.DepositRequest, error) {
	rows, err := r.DB.Query(
		`SELECT d.id, d.user_id, u.username, d.amount, d.method,
		        COALESCE(d.transaction_id, ''), d.status, d.created_at
		 FROM deposit_requests d
		 JOIN users u ON u.user_id = d.user_id
		 WHERE d.status = 'pending'
		 ORDER BY d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []model.DepositRequest
	for rows.Next() {
		var d model.DepositRequest
		err := rows.Scan(&d.ID, &d.UserID, &d.Username, &d.Amount, &d.Method,
			&d.TransactionID, &d.Status, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deposits, nil
}
