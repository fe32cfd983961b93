package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/load"
)

type loadRepository struct {
	db *sqlx.DB
}

var _ load.Repository = (*loadRepository)(nil) // interface compliance check

func NewLoadRepository(db *sqlx.DB) *loadRepository {
	return &loadRepository{db: db}
}

type loadRow struct {
	ID         string    `db:"id"`
	OrgID      string    `db:"org_id"`
	TeacherUID string    `db:"teacher_uid"`
	SubjectID  string    `db:"subject_id"`
	GradeID    string    `db:"grade_id"`
	PeriodID   string    `db:"period_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (repo loadRepository) row(ld load.Load) loadRow {
	return loadRow{
		ID:         ld.ID,
		OrgID:      ld.OrgID,
		TeacherUID: ld.TeacherUID,
		SubjectID:  ld.SubjectID,
		GradeID:    ld.GradeID,
		PeriodID:   ld.PeriodID,
		CreatedAt:  ld.CreatedAt.UTC(),
		UpdatedAt:  ld.UpdatedAt.UTC(),
	}
}

func (repo loadRepository) unrow(row loadRow) load.Load {
	return load.Load{
		ID:         row.ID,
		OrgID:      row.OrgID,
		TeacherUID: row.TeacherUID,
		SubjectID:  row.SubjectID,
		GradeID:    row.GradeID,
		PeriodID:   row.PeriodID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (repo *loadRepository) CreateLoad(ctx context.Context, ld load.Load) (load.Load, error) {
	const q = `
	INSERT INTO academic_load (id, org_id, teacher_uid, subject_id, grade_id, period_id, created_at, updated_at)
	VALUES (:id, :org_id, :teacher_uid, :subject_id, :grade_id, :period_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(ld)); err != nil {
		return load.Load{}, errors.Wrap(err, "inserting academic load")
	}
	return ld, nil
}

func (repo *loadRepository) GetLoad(ctx context.Context, id string) (load.Load, error) {
	var row loadRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM academic_load WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return load.Load{}, load.ErrNotFound
	}
	if err != nil {
		return load.Load{}, errors.Wrap(err, "getting academic load")
	}
	return repo.unrow(row), nil
}

func (repo *loadRepository) QueryLoadsByOrg(ctx context.Context, orgID string) ([]load.Load, error) {
	var rows []loadRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM academic_load WHERE org_id = $1 ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "querying academic loads")
	}
	loads := make([]load.Load, 0, len(rows))
	for _, row := range rows {
		loads = append(loads, repo.unrow(row))
	}
	return loads, nil
}

func (repo *loadRepository) QueryLoadsByTeacher(ctx context.Context, orgID, teacherUID string) ([]load.Load, error) {
	var rows []loadRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM academic_load WHERE org_id = $1 AND teacher_uid = $2 ORDER BY created_at, id`, orgID, teacherUID)
	if err != nil {
		return nil, errors.Wrap(err, "querying academic loads by teacher")
	}
	loads := make([]load.Load, 0, len(rows))
	for _, row := range rows {
		loads = append(loads, repo.unrow(row))
	}
	return loads, nil
}

func (repo *loadRepository) DeleteLoad(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM academic_load WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting academic load")
	}
	return nil
}
