package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shulehub/shule/core/refdata"
)

type refDataRepository struct {
	db *sqlx.DB
}

var _ refdata.Repository = (*refDataRepository)(nil) // interface compliance check

func NewRefDataRepository(db *sqlx.DB) *refDataRepository {
	return &refDataRepository{db: db}
}

type recordRow struct {
	ID          string      `db:"id"`
	OrgID       string      `db:"org_id"`
	Kind        string      `db:"kind"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	Code        null.String `db:"code"`
	Level       int         `db:"level"`
	MinScore    float64     `db:"min_score"`
	MaxScore    float64     `db:"max_score"`
	StartsOn    null.Time   `db:"starts_on"`
	EndsOn      null.Time   `db:"ends_on"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (repo refDataRepository) row(rec refdata.Record) recordRow {
	return recordRow{
		ID:          rec.ID,
		OrgID:       rec.OrgID,
		Kind:        string(rec.Kind),
		Name:        rec.Name,
		Description: null.NewString(rec.Description, rec.Description != ""),
		Code:        null.NewString(rec.Code, rec.Code != ""),
		Level:       rec.Level,
		MinScore:    rec.MinScore,
		MaxScore:    rec.MaxScore,
		StartsOn:    null.NewTime(rec.StartsOn.UTC(), !rec.StartsOn.IsZero()),
		EndsOn:      null.NewTime(rec.EndsOn.UTC(), !rec.EndsOn.IsZero()),
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}

func (repo refDataRepository) unrow(row recordRow) refdata.Record {
	return refdata.Record{
		ID:          row.ID,
		OrgID:       row.OrgID,
		Kind:        refdata.Kind(row.Kind),
		Name:        row.Name,
		Description: row.Description.String,
		Code:        row.Code.String,
		Level:       row.Level,
		MinScore:    row.MinScore,
		MaxScore:    row.MaxScore,
		StartsOn:    row.StartsOn.Time,
		EndsOn:      row.EndsOn.Time,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (repo *refDataRepository) CreateRecord(ctx context.Context, rec refdata.Record) (refdata.Record, error) {
	const q = `
	INSERT INTO ref_record (id, org_id, kind, name, description, code, level, min_score, max_score, starts_on, ends_on, created_at, updated_at)
	VALUES (:id, :org_id, :kind, :name, :description, :code, :level, :min_score, :max_score, :starts_on, :ends_on, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(rec)); err != nil {
		return refdata.Record{}, errors.Wrap(err, "inserting record")
	}
	return rec, nil
}

func (repo *refDataRepository) GetRecord(ctx context.Context, kind refdata.Kind, id string) (refdata.Record, error) {
	var row recordRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM ref_record WHERE id = $1 AND kind = $2`, id, string(kind))
	if err == sql.ErrNoRows {
		return refdata.Record{}, refdata.ErrNotFound
	}
	if err != nil {
		return refdata.Record{}, errors.Wrap(err, "getting record")
	}
	return repo.unrow(row), nil
}

func (repo *refDataRepository) QueryRecords(ctx context.Context, kind refdata.Kind, orgID string) ([]refdata.Record, error) {
	var rows []recordRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM ref_record WHERE kind = $1 AND org_id = $2 ORDER BY name`, string(kind), orgID)
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	recs := make([]refdata.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, repo.unrow(row))
	}
	return recs, nil
}

func (repo *refDataRepository) UpdateRecord(ctx context.Context, rec refdata.Record) (refdata.Record, error) {
	const q = `
	UPDATE ref_record SET
		name = :name, description = :description, code = :code, level = :level,
		min_score = :min_score, max_score = :max_score, starts_on = :starts_on, ends_on = :ends_on,
		updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.row(rec))
	if err != nil {
		return refdata.Record{}, errors.Wrap(err, "updating record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return refdata.Record{}, refdata.ErrNotFound
	}
	return rec, nil
}

func (repo *refDataRepository) DeleteRecord(ctx context.Context, kind refdata.Kind, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM ref_record WHERE id = $1 AND kind = $2`, id, string(kind)); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return nil
}
