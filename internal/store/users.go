package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mailshop/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// GetOrCreateUser registers the user on first contact. The returned
// flag reports whether the row was created by this call, which is what
// decides referral eligibility.
func (r *Database) GetOrCreateUser(userID int64, username string) (*model.User, bool, error) {
	code := newReferralCode(userID)
	res, err := r.DB.Exec(
		`INSERT INTO users (user_id, username, referral_code) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, username, code)
	if err != nil {
		return nil, false, err
	}
	inserted, _ := res.RowsAffected()

	user, err := r.GetUserByID(userID)
	if err != nil {
		return nil, false, err
	}
	return user, inserted == 1, nil
}

func (r *Database) GetUserByID(id int64) (*model.User, error) {
	var user model.User
	var code sql.NullString
	err := r.DB.QueryRow(
		`SELECT user_id, username, balance, referral_code, referred_by, total_referrals, created_at
		 FROM users WHERE user_id = $1`, id).
		Scan(&user.ID, &user.Username, &user.Balance, &code, &user.ReferredBy, &user.TotalReferrals, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.ReferralCode = code.String
	return &user, nil
}

// GetBalance returns 0 for unknown users.
func (r *Database) GetBalance(userID int64) (float64, error) {
	var balance float64
	err := r.DB.QueryRow(`SELECT balance FROM users WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

func (r *Database) CreditBalance(userID int64, amount float64) error {
	res, err := r.DB.Exec(
		`UPDATE users SET balance = balance + $1 WHERE user_id = $2`,
		amount, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// debitBalance runs inside the caller's transaction. The balance check
// and the subtraction are one statement, so a concurrent debit cannot
// slip between them.
func debitBalance(tx *sql.Tx, userID int64, amount float64) error {
	res, err := tx.Exec(
		`UPDATE users SET balance = balance - $1 WHERE user_id = $2 AND balance >= $1`,
		amount, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func newReferralCode(userID int64) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("REF%d%s", userID, suffix)
}
