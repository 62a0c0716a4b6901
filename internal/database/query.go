package database

import (
	"database/sql"
	"time"
)

const selectRecords = `
	SELECT id, timestamp, action, command, path, file_name, object_type,
	       entries, size, error_message
	FROM deletions
`

// GetRecent returns the N most recent records
func (h *HistoryDB) GetRecent(limit int) ([]Record, error) {
	return h.queryRecords(selectRecords+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetByDateRange returns records within a time range
func (h *HistoryDB) GetByDateRange(start, end time.Time) ([]Record, error) {
	return h.queryRecords(selectRecords+`
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC, id DESC
	`, start, end)
}

// GetByAction returns records filtered by action type
func (h *HistoryDB) GetByAction(action string) ([]Record, error) {
	return h.queryRecords(selectRecords+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`, action)
}

// GetByPath returns records whose path matches a LIKE pattern
func (h *HistoryDB) GetByPath(pathPattern string) ([]Record, error) {
	return h.queryRecords(selectRecords+`
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`, pathPattern)
}

// GetLargest returns the N largest successful deletions by size
func (h *HistoryDB) GetLargest(limit int) ([]Record, error) {
	return h.queryRecords(selectRecords+`
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`, limit)
}

// GetCountByAction returns count of records grouped by action since a time
func (h *HistoryDB) GetCountByAction(since time.Time) (map[string]int, error) {
	rows, err := h.db.Query(`
	SELECT action, COUNT(*)
	FROM deletions
	WHERE timestamp >= ?
	GROUP BY action
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// Stats holds aggregated statistics
type Stats struct {
	TotalDeletions int
	TotalSkipped   int
	TotalErrors    int
	EntriesDeleted int64
	BytesDeleted   int64
	ByAction       map[string]int
	StartDate      time.Time
	EndDate        time.Time
}

// GetStats returns statistics for the last days days
func (h *HistoryDB) GetStats(days int) (*Stats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &Stats{
		StartDate: since,
		EndDate:   now,
	}

	err := h.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END),
			COALESCE(SUM(entries), 0),
			COALESCE(SUM(size), 0)
		FROM deletions
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeletions, &stats.TotalSkipped, &stats.TotalErrors,
		&stats.EntriesDeleted, &stats.BytesDeleted)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = h.GetCountByAction(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (h *HistoryDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := h.db.Exec(`DELETE FROM deletions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryRecords executes a query and scans results
func (h *HistoryDB) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var fileName, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Command, &r.Path, &fileName,
			&r.ObjectType, &r.Entries, &r.Size, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
