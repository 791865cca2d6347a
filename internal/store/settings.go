package store

import (
	"database/sql"

	"mailshop/internal/model"
)

func (r *Database) GetPrice(service model.Service) (float64, error) {
	var price float64
	err := r.DB.QueryRow(`SELECT price FROM prices WHERE service = $1`, service).Scan(&price)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return price, nil
}

func (r *Database) SetPrice(service model.Service, price float64) error {
	_, err := r.DB.Exec(
		`INSERT INTO prices (service, price) VALUES ($1, $2)
		 ON CONFLICT (service) DO UPDATE SET price = EXCLUDED.price`,
		service, price)
	return err
}

func (r *Database) Prices() (map[model.Service]float64, error) {
	rows, err := r.DB.Query(`SELECT service, price FROM prices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[model.Service]float64)
	for rows.Next() {
		var service model.Service
		var price float64
		if err := rows.Scan(&service, &price); err != nil {
			return nil, err
		}
		prices[service] = price
	}
	return prices, rows.Err()
}

func (r *Database) DiscountTiers() ([]model.DiscountTier, error) {
	rows, err := r.DB.Query(
		`SELECT min_quantity, percent FROM discount_settings ORDER BY min_quantity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []model.DiscountTier
	for rows.Next() {
		var t model.DiscountTier
		if err := rows.Scan(&t.MinQuantity, &t.Percent); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *Database) SetDiscountTier(minQuantity int, percent float64) error {
	_, err := r.DB.Exec(
		`INSERT INTO discount_settings (min_quantity, percent) VALUES ($1, $2)
		 ON CONFLICT (min_quantity) DO UPDATE SET percent = EXCLUDED.percent`,
		minQuantity, percent)
	return err
}

func (r *Database) RemoveDiscountTier(minQuantity int) error {
	_, err := r.DB.Exec(`DELETE FROM discount_settings WHERE min_quantity = $1`, minQuantity)
	return err
}

func (r *Database) GetReferralSettings() (model.ReferralSettings, error) {
	var s model.ReferralSettings
	err := r.DB.QueryRow(
		`SELECT referrer_bonus, referred_bonus FROM referral_settings WHERE id = 1`).
		Scan(&s.ReferrerBonus, &s.ReferredBonus)
	if err != nil && err != sql.ErrNoRows {
		return s, err
	}
	return s, nil
}

func (r *Database) SetReferralSettings(referrerBonus, referredBonus float64) error {
	_, err := r.DB.Exec(
		`INSERT INTO referral_settings (id, referrer_bonus, referred_bonus) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET referrer_bonus = EXCLUDED.referrer_bonus,
		                                referred_bonus = EXCLUDED.referred_bonus`,
		referrerBonus, referredBonus)
	return err
}
