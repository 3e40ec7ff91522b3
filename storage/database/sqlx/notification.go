package sqlxrepos

import (
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/notification"
)

type notificationRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Kind      string    `db:"kind"`
	Subject   string    `db:"subject"`
	Link      string    `db:"link"`
	ReadAt    null.Time `db:"read_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (row notificationRow) notification() notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		StudentID: row.StudentID,
		Kind:      row.Kind,
		Subject:   row.Subject,
		Link:      row.Link,
		ReadAt:    row.ReadAt.Time,
		CreatedAt: row.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(notif notification.Notification) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO notification (id, student_id, kind, subject, link, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		notif.ID, notif.StudentID, notif.Kind, notif.Subject, notif.Link,
		null.NewTime(notif.ReadAt.UTC(), !notif.ReadAt.IsZero()), notif.CreatedAt.UTC())
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) QueryNotificationsByStudent(studentID string) ([]notification.Notification, error) {
	var rows []notificationRow
	err := repo.db.Select(&rows, `SELECT * FROM notification WHERE student_id = $1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.notification())
	}
	return notifs, nil
}
