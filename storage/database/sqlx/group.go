package sqlxrepos

import (
	"database/sql"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/group"
)

type groupRow struct {
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type membershipRow struct {
	ID            string       `db:"id"`
	GroupID       string       `db:"group_id"`
	StudentID     string       `db:"student_id"`
	ReceiveEmails bool         `db:"receive_emails"`
	CreatedAt     sql.NullTime `db:"created_at"`
}

func (row groupRow) group() group.Group {
	return group.Group{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func (row membershipRow) membership() group.Membership {
	return group.Membership{
		ID:            row.ID,
		GroupID:       row.GroupID,
		StudentID:     row.StudentID,
		ReceiveEmails: row.ReceiveEmails,
		CreatedAt:     row.CreatedAt.Time,
	}
}

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) CreateGroup(grp group.Group) (group.Group, error) {
	grp.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO student_group (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`, grp.ID, grp.Name, grp.CreatedAt.UTC(), grp.UpdatedAt.UTC())
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) GetGroupByID(id string) (group.Group, error) {
	var row groupRow
	if err := repo.db.Get(&row, `SELECT * FROM student_group WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "getting group by id")
	}
	return row.group(), nil
}

func (repo groupRepository) AddMember(mbr group.Membership) (group.Membership, error) {
	mbr.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO group_membership (id, group_id, student_id, receive_emails, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		mbr.ID, mbr.GroupID, mbr.StudentID, mbr.ReceiveEmails, mbr.CreatedAt.UTC())
	if err != nil {
		return group.Membership{}, errors.Wrap(err, "inserting membership")
	}
	return mbr, nil
}

func (repo groupRepository) GetMembership(groupID, studentID string) (group.Membership, error) {
	var row membershipRow
	err := repo.db.Get(&row, `SELECT * FROM group_membership WHERE group_id = $1 AND student_id = $2`, groupID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.Membership{}, group.ErrMembershipNotFound
		}
		return group.Membership{}, errors.Wrap(err, "getting membership")
	}
	return row.membership(), nil
}

func (repo groupRepository) QueryMembershipsByGroup(groupID string) ([]group.Membership, error) {
	var rows []membershipRow
	err := repo.db.Select(&rows, `SELECT * FROM group_membership WHERE group_id = $1 ORDER BY created_at`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying memberships")
	}
	members := make([]group.Membership, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.membership())
	}
	return members, nil
}
