package store

import (
	"context"
	"database/sql"
	"errors"

	"mailshop/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Database struct {
	DBDSN string
	DB    *sql.DB
}

func (ms *Database) NewStorage(DBDSN string) error {
	var err error
	ms.DBDSN = DBDSN

	if ms.DB, err = sql.Open("pgx", ms.DBDSN); err != nil {
		logging.Logg.Error("Couldn't connect to the database", "error", err)
		return err
	}

	err = ms.initDBTables()
	if err != nil {
		logging.Logg.Error("Failed to initialize DB", "error", err)
		return err
	}
	logging.Logg.Info("Database connection was created")
	return nil
}

func (ms *Database) Ping(ctx context.Context) error {
	return ms.DB.PingContext(ctx)
}

func (ms *Database) Close() error {
	return ms.DB.Close()
}

func (ms *Database) initDBTables() error {
	var errs []error
	stmts := []string{
		`create table if not exists users (
			user_id BIGINT PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			balance DECIMAL(12, 2) NOT NULL DEFAULT 0.00 CHECK (balance >= 0),
			referral_code VARCHAR(40) UNIQUE,
			referred_by BIGINT,
			total_referrals INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT (now() at time zone 'utc')
		);`,

		`create table if not exists prices (
			service VARCHAR(30) PRIMARY KEY,
			price DECIMAL(12, 2) NOT NULL CHECK (price >= 0)
		);`,

		`create table if not exists stock (
			id BIGSERIAL PRIMARY KEY,
			service VARCHAR(30) NOT NULL,
			fields TEXT NOT NULL
		);`,

		`create index if not exists stock_service_idx ON stock (service, id);`,

		`create table if not exists deposit_requests (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			amount DECIMAL(12, 2) NOT NULL CHECK (amount > 0),
			method VARCHAR(30) NOT NULL,
			transaction_id TEXT,
			status VARCHAR(30) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT (now() at time zone 'utc')
		);`,

		`create table if not exists referral_rewards (
			id BIGSERIAL PRIMARY KEY,
			referrer_id BIGINT NOT NULL,
			referred_id BIGINT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT (now() at time zone 'utc')
		);`,

		`create table if not exists referral_settings (
			id INT PRIMARY KEY,
			referrer_bonus DECIMAL(12, 2) NOT NULL,
			referred_bonus DECIMAL(12, 2) NOT NULL
		);`,

		`create table if not exists discount_settings (
			min_quantity INT PRIMARY KEY,
			percent DECIMAL(5, 2) NOT NULL
		);`,

		`create table if not exists broadcasts (
			id BIGSERIAL PRIMARY KEY,
			admin_id BIGINT NOT NULL,
			message TEXT NOT NULL,
			sent_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT (now() at time zone 'utc')
		);`,

		// Seed rows the admin panel expects to exist.
		`insert into referral_settings (id, referrer_bonus, referred_bonus)
			VALUES (1, 50.00, 25.00) ON CONFLICT (id) DO NOTHING;`,

		`insert into prices (service, price) VALUES
			('hotmail', 10.00), ('outlook', 10.00), ('fb_gmail', 10.00)
			ON CONFLICT (service) DO NOTHING;`,
	}

	for _, s := range stmts {
		_, err := ms.DB.Exec(s)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
