package store

import (
	"database/sql"
	"errors"
	"strings"

	"mailshop/internal/logging"
	"mailshop/internal/model"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// fieldSep joins a credential tuple into the stored fields column.
const fieldSep = "|"

func (r *Database) Count(service model.Service) (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM stock WHERE service = $1`, service).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// AppendStock adds rows to the tail of the service's stock and returns
// how many were inserted.
func (r *Database) AppendStock(service model.Service, rows [][]string) (int, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		_, err = tx.Exec(`INSERT INTO stock (service, fields) VALUES ($1, $2)`,
			service, strings.Join(fields, fieldSep))
		if err != nil {
			return 0, err
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *Database) ClearStock(service model.Service) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM stock WHERE service = $1`, service)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TakeForPurchase atomically removes the first n rows of the service's
// stock. When fewer than n rows exist the whole call fails and nothing
// is removed. A shortfall is retried once: under READ COMMITTED a
// concurrent purchase of the same head rows can make the locking
// SELECT return fewer rows than the LIMIT even though enough stock
// remains, and a fresh snapshot sees the real count.
func (r *Database) TakeForPurchase(service model.Service, n int) ([]model.StockRow, error) {
	rows, err := r.takeForPurchase(service, n)
	if errors.Is(err, ErrInsufficientStock) {
		return r.takeForPurchase(service, n)
	}
	return rows, err
}

func (r *Database) takeForPurchase(service model.Service, n int) ([]model.StockRow, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := takeRows(tx, service, n)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rows, nil
}

// takeRows locks and deletes the n head rows inside the caller's
// transaction, FIFO by id.
func takeRows(tx *sql.Tx, service model.Service, n int) ([]model.StockRow, error) {
	res, err := tx.Query(
		`SELECT id, fields FROM stock WHERE service = $1 ORDER BY id LIMIT $2 FOR UPDATE`,
		service, n)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var taken []model.StockRow
	var ids []int64
	for res.Next() {
		var row model.StockRow
		var fields string
		if err := res.Scan(&row.ID, &fields); err != nil {
			return nil, err
		}
		row.Fields = strings.Split(fields, fieldSep)
		taken = append(taken, row)
		ids = append(ids, row.ID)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	if len(taken) < n {
		logging.Logg.Warn("Stock shortfall, purchase refused",
			"service", service, "requested", n, "available", len(taken))
		return nil, ErrInsufficientStock
	}

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM stock WHERE id = $1`, id); err != nil {
			return nil, err
		}
	}
	return taken, nil
}

// PurchaseRows debits total from the user and removes n head rows of
// stock as one transaction. Balance and stock checks cannot interleave
// with another purchase for the same rows. A stock shortfall gets the
// same single retry as TakeForPurchase before it is reported.
func (r *Database) PurchaseRows(userID int64, service model.Service, n int, total float64) ([]model.StockRow, error) {
	rows, err := r.purchaseRows(userID, service, n, total)
	if errors.Is(err, ErrInsufficientStock) {
		return r.purchaseRows(userID, service, n, total)
	}
	return rows, err
}

func (r *Database) purchaseRows(userID int64, service model.Service, n int, total float64) ([]model.StockRow, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balance float64
	err = tx.QueryRow(`SELECT balance FROM users WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	if balance < total {
		return nil, ErrInsufficientFunds
	}

	rows, err := takeRows(tx, service, n)
	if err != nil {
		return nil, err
	}

	if err = debitBalance(tx, userID, total); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	logging.Logg.Info("Purchase committed",
		"user_id", userID, "service", service, "quantity", n, "total", total)
	return rows, nil
}
