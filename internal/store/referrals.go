package store

import (
	"database/sql"
	"errors"

	"mailshop/internal/logging"
	"mailshop/internal/model"
)

var (
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrAlreadyReferred      = errors.New("user already has a referrer")
	ErrSelfReferral         = errors.New("user cannot refer themselves")
)

func (r *Database) UserIDByReferralCode(code string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(`SELECT user_id FROM users WHERE referral_code = $1`, code).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrReferralCodeNotFound
		}
		return 0, err
	}
	return id, nil
}

// RegisterReferral links a freshly signed-up user to the owner of the
// referral code, credits the referred user's welcome bonus immediately
// and records a pending reward for the referrer. The reward amount is
// snapshotted from the current settings.
func (r *Database) RegisterReferral(referredID int64, code string) error {
	referrerID, err := r.UserIDByReferralCode(code)
	if err != nil {
		return err
	}
	if referrerID == referredID {
		return ErrSelfReferral
	}

	settings, err := r.GetReferralSettings()
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE users SET referred_by = $1 WHERE user_id = $2 AND referred_by IS NULL`,
		referrerID, referredID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyReferred
	}

	_, err = tx.Exec(
		`UPDATE users SET total_referrals = total_referrals + 1 WHERE user_id = $1`,
		referrerID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`UPDATE users SET balance = balance + $1 WHERE user_id = $2`,
		settings.ReferredBonus, referredID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO referral_rewards (referrer_id, referred_id, amount, status)
		 VALUES ($1, $2, $3, $4)`,
		referrerID, referredID, settings.ReferrerBonus, model.RewardPending)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	logging.Logg.Info("Referral registered",
		"referrer_id", referrerID, "referred_id", referredID)
	return nil
}

func (r *Database) ReferralStats(userID int64) (*model.ReferralStats, error) {
	stats := &model.ReferralStats{}

	err := r.DB.QueryRow(
		`SELECT total_referrals FROM users WHERE user_id = $1`, userID).
		Scan(&stats.TotalReferrals)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = r.DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM referral_rewards
		 WHERE referrer_id = $1 AND status = 'approved'`, userID).
		Scan(&stats.TotalEarnings)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(
		`SELECT COUNT(*) FROM referral_rewards
		 WHERE referrer_id = $1 AND status = 'pending'`, userID).
		Scan(&stats.PendingRewards)
	if err != nil {
		return nil, err
	}

	stats.Settings, err = r.GetReferralSettings()
	if err != nil {
		return nil, err
	}
	return stats, nil
}
