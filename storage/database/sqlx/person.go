package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shulehub/shule/core/person"
)

type personRepository struct {
	db *sqlx.DB
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *sqlx.DB) *personRepository {
	return &personRepository{db: db}
}

type teacherRow struct {
	UID              string         `db:"uid"`
	OrgID            string         `db:"org_id"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Phone            null.String    `db:"phone"`
	PhotoURL         null.String    `db:"photo_url"`
	AssignedSubjects pq.StringArray `db:"assigned_subjects"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (repo personRepository) teacherRow(t person.Teacher) teacherRow {
	return teacherRow{
		UID:              t.UID,
		OrgID:            t.OrgID,
		Name:             t.Name,
		Email:            t.Email,
		Phone:            null.NewString(t.Phone, t.Phone != ""),
		PhotoURL:         null.NewString(t.PhotoURL, t.PhotoURL != ""),
		AssignedSubjects: t.AssignedSubjects,
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}
}

func (repo personRepository) unrowTeacher(row teacherRow) person.Teacher {
	return person.Teacher{
		UID:              row.UID,
		OrgID:            row.OrgID,
		Name:             row.Name,
		Email:            row.Email,
		Phone:            row.Phone.String,
		PhotoURL:         row.PhotoURL.String,
		AssignedSubjects: row.AssignedSubjects,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type studentRow struct {
	UID           string      `db:"uid"`
	OrgID         string      `db:"org_id"`
	Name          string      `db:"name"`
	Email         string      `db:"email"`
	Phone         null.String `db:"phone"`
	PhotoURL      null.String `db:"photo_url"`
	GradeID       string      `db:"grade_id"`
	GuardianName  null.String `db:"guardian_name"`
	GuardianPhone null.String `db:"guardian_phone"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (repo personRepository) studentRow(s person.Student) studentRow {
	return studentRow{
		UID:           s.UID,
		OrgID:         s.OrgID,
		Name:          s.Name,
		Email:         s.Email,
		Phone:         null.NewString(s.Phone, s.Phone != ""),
		PhotoURL:      null.NewString(s.PhotoURL, s.PhotoURL != ""),
		GradeID:       s.GradeID,
		GuardianName:  null.NewString(s.GuardianName, s.GuardianName != ""),
		GuardianPhone: null.NewString(s.GuardianPhone, s.GuardianPhone != ""),
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
}

func (repo personRepository) unrowStudent(row studentRow) person.Student {
	return person.Student{
		UID:           row.UID,
		OrgID:         row.OrgID,
		Name:          row.Name,
		Email:         row.Email,
		Phone:         row.Phone.String,
		PhotoURL:      row.PhotoURL.String,
		GradeID:       row.GradeID,
		GuardianName:  row.GuardianName.String,
		GuardianPhone: row.GuardianPhone.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (repo *personRepository) CreateTeacher(ctx context.Context, t person.Teacher) (person.Teacher, error) {
	const q = `
	INSERT INTO teacher (uid, org_id, name, email, phone, photo_url, assigned_subjects, created_at, updated_at)
	VALUES (:uid, :org_id, :name, :email, :phone, :photo_url, :assigned_subjects, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.teacherRow(t)); err != nil {
		return person.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *personRepository) GetTeacher(ctx context.Context, uid string) (person.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE uid = $1`, uid)
	if err == sql.ErrNoRows {
		return person.Teacher{}, person.ErrTeacherNotFound
	}
	if err != nil {
		return person.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return repo.unrowTeacher(row), nil
}

func (repo *personRepository) QueryTeachers(ctx context.Context, orgID string) ([]person.Teacher, error) {
	var rows []teacherRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM teacher WHERE org_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]person.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, repo.unrowTeacher(row))
	}
	return teachers, nil
}

func (repo *personRepository) DeleteTeacher(ctx context.Context, uid string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM teacher WHERE uid = $1`, uid); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return nil
}

func (repo *personRepository) CreateStudent(ctx context.Context, s person.Student) (person.Student, error) {
	const q = `
	INSERT INTO student (uid, org_id, name, email, phone, photo_url, grade_id, guardian_name, guardian_phone, created_at, updated_at)
	VALUES (:uid, :org_id, :name, :email, :phone, :photo_url, :grade_id, :guardian_name, :guardian_phone, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.studentRow(s)); err != nil {
		return person.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *personRepository) GetStudent(ctx context.Context, uid string) (person.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE uid = $1`, uid)
	if err == sql.ErrNoRows {
		return person.Student{}, person.ErrStudentNotFound
	}
	if err != nil {
		return person.Student{}, errors.Wrap(err, "getting student")
	}
	return repo.unrowStudent(row), nil
}

func (repo *personRepository) QueryStudents(ctx context.Context, orgID string) ([]person.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student WHERE org_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]person.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unrowStudent(row))
	}
	return students, nil
}

func (repo *personRepository) FilterStudentsByGrade(ctx context.Context, orgID, gradeID string) ([]person.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM student WHERE org_id = $1 AND grade_id = $2 ORDER BY name`, orgID, gradeID)
	if err != nil {
		return nil, errors.Wrap(err, "filtering students by grade")
	}
	students := make([]person.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unrowStudent(row))
	}
	return students, nil
}

func (repo *personRepository) DeleteStudent(ctx context.Context, uid string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE uid = $1`, uid); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}
