package services

import (
	"database/sql"
	"time"

	"github.com/L33hy/cse340/internal/models"
	"github.com/google/uuid"
)

// ActivityServiceProvider defines the interface for the account activity
// trail.
type ActivityServiceProvider interface {
	Record(activityType, level, message string, accountID *int) error
	RecentForAccount(accountID, limit int) ([]models.Activity, error)
	PruneOlderThan(age time.Duration) (int64, error)
}

// ActivityService records account events (logins, profile changes) for
// display and diagnostics.
type ActivityService struct {
	db *sql.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record logs a new account event to the database.
func (s *ActivityService) Record(activityType, level, message string, accountID *int) error {
	stmt, err := s.db.Prepare(`INSERT INTO account_activity
		(id, type, level, message, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(uuid.New().String(), activityType, level, message, accountID, now())
	return err
}

// RecentForAccount retrieves the most recent events for one account.
func (s *ActivityService) RecentForAccount(accountID, limit int) ([]models.Activity, error) {
	rows, err := s.db.Query(`SELECT id, type, level, message, account_id, created_at
		FROM account_activity WHERE account_id = ?
		ORDER BY created_at DESC LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var createdAt string
		if err := rows.Scan(&activity.ID, &activity.Type, &activity.Level,
			&activity.Message, &activity.AccountID, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			activity.CreatedAt = t
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// PruneOlderThan deletes events older than the given age and returns how many
// rows were removed.
func (s *ActivityService) PruneOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM account_activity WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
