package store

func (r *Database) AllUserIDs() ([]int64, error) {
	rows, err := r.DB.Query(`SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Database) SaveBroadcast(adminID int64, message string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(
		`INSERT INTO broadcasts (admin_id, message) VALUES ($1, $2) RETURNING id`,
		adminID, message).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Database) UpdateBroadcastCount(id int64, sent int) error {
	_, err := r.DB.Exec(`UPDATE broadcasts SET sent_count = $1 WHERE id = $2`, sent, id)
	return err
}
