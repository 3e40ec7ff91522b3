package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/student"
)

type studentRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func rowFromStudent(stu student.Student) studentRow {
	return studentRow{
		ID:           stu.ID,
		Name:         stu.Name,
		Username:     stu.Username,
		Email:        stu.Email,
		IsActive:     stu.IsActive,
		Roles:        stu.Roles,
		PasswordHash: stu.PasswordHash,
		CreatedAt:    stu.CreatedAt.UTC(),
		UpdatedAt:    stu.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(stu.LastLogin.UTC(), !stu.LastLogin.IsZero()),
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) checkTaken(column, value string, excluded []student.Student) (bool, error) {
	if value == "" {
		return false, nil
	}
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE ` + column + ` = ?)`
	args := []interface{}{value}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, stu := range excluded {
			ids = append(ids, stu.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM student WHERE ` + column + ` = ? AND id NOT IN (?))`
		var err error
		if query, args, err = sqlx.In(query, value, ids); err != nil {
			return false, err
		}
	}
	var taken bool
	err := repo.db.Get(&taken, repo.db.Rebind(query), args...)
	return taken, err
}

func (repo studentRepository) CheckUsernameUniqueness(username, email string, excluded ...student.Student) error {
	taken, err := repo.checkTaken("username", username, excluded)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if taken {
		return student.ErrUsernameExists
	}

	if taken, err = repo.checkTaken("email", email, excluded); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if taken {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(stu student.Student) (student.Student, error) {
	stu.ID = uuid.New().String()
	row := rowFromStudent(stu)
	_, err := repo.db.NamedExec(`
		INSERT INTO student (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.student(), nil
}

func (repo studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, `SELECT * FROM student ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.Get(&row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by id")
	}
	return row.student(), nil
}

func (repo studentRepository) GetStudentByUsernameOrEmail(username string) (student.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, `SELECT * FROM student WHERE username = $1 OR email = $1`, username)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by username or email")
	}
	return row.student(), nil
}

func (repo studentRepository) UpdateStudent(stu student.Student, isActive *bool) (student.Student, error) {
	existing, err := repo.GetStudentByID(stu.ID)
	if err != nil {
		return student.Student{}, err
	}
	if stu.Name != "" {
		existing.Name = stu.Name
	}
	if stu.Username != "" {
		existing.Username = stu.Username
	}
	if stu.Email != "" {
		existing.Email = stu.Email
	}
	if stu.Roles != nil {
		existing.Roles = stu.Roles
	}
	if stu.PasswordHash != nil {
		existing.PasswordHash = stu.PasswordHash
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	existing.UpdatedAt = time.Now().UTC()

	row := rowFromStudent(existing)
	_, err = repo.db.NamedExec(`
		UPDATE student
		SET name = :name, username = :username, email = :email, is_active = :is_active,
			roles = :roles, password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return existing, nil
}

func (repo studentRepository) SetLastLogin(stu student.Student) (student.Student, error) {
	now := time.Now().UTC()
	if _, err := repo.db.Exec(`UPDATE student SET last_login = $1 WHERE id = $2`, now, stu.ID); err != nil {
		return student.Student{}, errors.Wrap(err, "setting last login")
	}
	stu.LastLogin = now
	return stu, nil
}
