package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/gradebook"
)

type gradebookRepository struct {
	db *sqlx.DB
}

var _ gradebook.Repository = (*gradebookRepository)(nil) // interface compliance check

func NewGradebookRepository(db *sqlx.DB) *gradebookRepository {
	return &gradebookRepository{db: db}
}

type activityRow struct {
	ID         string    `db:"id"`
	LoadID     string    `db:"load_id"`
	Name       string    `db:"name"`
	Percentage float64   `db:"percentage"`
	CreatedBy  string    `db:"created_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (repo gradebookRepository) actRow(act gradebook.Activity) activityRow {
	return activityRow{
		ID:         act.ID,
		LoadID:     act.LoadID,
		Name:       act.Name,
		Percentage: act.Percentage,
		CreatedBy:  act.CreatedBy,
		CreatedAt:  act.CreatedAt.UTC(),
		UpdatedAt:  act.UpdatedAt.UTC(),
	}
}

func (repo gradebookRepository) unrowAct(row activityRow) gradebook.Activity {
	return gradebook.Activity{
		ID:         row.ID,
		LoadID:     row.LoadID,
		Name:       row.Name,
		Percentage: row.Percentage,
		CreatedBy:  row.CreatedBy,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type studentGradeRow struct {
	ID         string    `db:"id"`
	LoadID     string    `db:"load_id"`
	ActivityID string    `db:"activity_id"`
	StudentUID string    `db:"student_uid"`
	Score      float64   `db:"score"`
	CreatedBy  string    `db:"created_by"`
	UpdatedBy  string    `db:"updated_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (repo gradebookRepository) gradeRow(sg gradebook.StudentGrade) studentGradeRow {
	return studentGradeRow{
		ID:         sg.ID,
		LoadID:     sg.LoadID,
		ActivityID: sg.ActivityID,
		StudentUID: sg.StudentUID,
		Score:      sg.Score,
		CreatedBy:  sg.CreatedBy,
		UpdatedBy:  sg.UpdatedBy,
		CreatedAt:  sg.CreatedAt.UTC(),
		UpdatedAt:  sg.UpdatedAt.UTC(),
	}
}

func (repo gradebookRepository) unrowGrade(row studentGradeRow) gradebook.StudentGrade {
	return gradebook.StudentGrade{
		ID:         row.ID,
		LoadID:     row.LoadID,
		ActivityID: row.ActivityID,
		StudentUID: row.StudentUID,
		Score:      row.Score,
		CreatedBy:  row.CreatedBy,
		UpdatedBy:  row.UpdatedBy,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (repo *gradebookRepository) CreateActivity(ctx context.Context, act gradebook.Activity) (gradebook.Activity, error) {
	const q = `
	INSERT INTO activity (id, load_id, name, percentage, created_by, created_at, updated_at)
	VALUES (:id, :load_id, :name, :percentage, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.actRow(act)); err != nil {
		return gradebook.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return act, nil
}

func (repo *gradebookRepository) GetActivity(ctx context.Context, id string) (gradebook.Activity, error) {
	var row activityRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM activity WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return gradebook.Activity{}, gradebook.ErrActivityNotFound
	}
	if err != nil {
		return gradebook.Activity{}, errors.Wrap(err, "getting activity")
	}
	return repo.unrowAct(row), nil
}

func (repo *gradebookRepository) QueryActivitiesByLoad(ctx context.Context, loadID string) ([]gradebook.Activity, error) {
	var rows []activityRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM activity WHERE load_id = $1 ORDER BY name`, loadID)
	if err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	acts := make([]gradebook.Activity, 0, len(rows))
	for _, row := range rows {
		acts = append(acts, repo.unrowAct(row))
	}
	return acts, nil
}

func (repo *gradebookRepository) UpdateActivity(ctx context.Context, act gradebook.Activity) (gradebook.Activity, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE activity SET name = $1, percentage = $2, updated_at = $3 WHERE id = $4`,
		act.Name, act.Percentage, act.UpdatedAt.UTC(), act.ID)
	if err != nil {
		return gradebook.Activity{}, errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gradebook.Activity{}, gradebook.ErrActivityNotFound
	}
	return act, nil
}

// DeleteActivityWithGrades deletes the activity and its grades in one
// transaction so a failure leaves the gradebook untouched.
func (repo *gradebookRepository) DeleteActivityWithGrades(ctx context.Context, activityID string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM student_grade WHERE activity_id = $1`, activityID); err != nil {
		return errors.Wrap(err, "deleting activity grades")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM activity WHERE id = $1`, activityID); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return errors.Wrap(tx.Commit(), "committing activity delete")
}

func (repo *gradebookRepository) CreateStudentGrade(ctx context.Context, sg gradebook.StudentGrade) (gradebook.StudentGrade, error) {
	// UNIQUE (student_uid, activity_id) backs the upsert; a concurrent
	// duplicate insert fails here instead of forking the pair.
	const q = `
	INSERT INTO student_grade (id, load_id, activity_id, student_uid, score, created_by, updated_by, created_at, updated_at)
	VALUES (:id, :load_id, :activity_id, :student_uid, :score, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.gradeRow(sg)); err != nil {
		return gradebook.StudentGrade{}, errors.Wrap(err, "inserting student grade")
	}
	return sg, nil
}

func (repo *gradebookRepository) GetStudentGradeByStudentActivity(ctx context.Context, studentUID, activityID string) (gradebook.StudentGrade, error) {
	var row studentGradeRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM student_grade WHERE student_uid = $1 AND activity_id = $2`, studentUID, activityID)
	if err == sql.ErrNoRows {
		return gradebook.StudentGrade{}, gradebook.ErrGradeNotFound
	}
	if err != nil {
		return gradebook.StudentGrade{}, errors.Wrap(err, "getting student grade")
	}
	return repo.unrowGrade(row), nil
}

func (repo *gradebookRepository) QueryGradesByLoad(ctx context.Context, loadID string) ([]gradebook.StudentGrade, error) {
	var rows []studentGradeRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student_grade WHERE load_id = $1`, loadID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student grades")
	}
	grades := make([]gradebook.StudentGrade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, repo.unrowGrade(row))
	}
	return grades, nil
}

func (repo *gradebookRepository) UpdateStudentGrade(ctx context.Context, sg gradebook.StudentGrade) (gradebook.StudentGrade, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student_grade SET score = $1, updated_by = $2, updated_at = $3 WHERE id = $4`,
		sg.Score, sg.UpdatedBy, sg.UpdatedAt.UTC(), sg.ID)
	if err != nil {
		return gradebook.StudentGrade{}, errors.Wrap(err, "updating student grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gradebook.StudentGrade{}, gradebook.ErrGradeNotFound
	}
	return sg, nil
}
