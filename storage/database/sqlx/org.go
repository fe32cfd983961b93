package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shulehub/shule/core/org"
)

type orgRepository struct {
	db *sqlx.DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) *orgRepository {
	return &orgRepository{db: db}
}

type orgRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Email         string      `db:"email"`
	Phone         null.String `db:"phone"`
	Address       null.String `db:"address"`
	LogoURL       null.String `db:"logo_url"`
	AdminUID      string      `db:"admin_uid"`
	AdminPhotoURL null.String `db:"admin_photo_url"`
	UserCount     int         `db:"user_count"`
	UserLimit     int         `db:"user_limit"`
	DataUsedBytes int64       `db:"data_used_bytes"`
	Status        string      `db:"status"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (repo orgRepository) row(o org.Organization) orgRow {
	return orgRow{
		ID:            o.ID,
		Name:          o.Name,
		Email:         o.Email,
		Phone:         null.NewString(o.Phone, o.Phone != ""),
		Address:       null.NewString(o.Address, o.Address != ""),
		LogoURL:       null.NewString(o.LogoURL, o.LogoURL != ""),
		AdminUID:      o.AdminUID,
		AdminPhotoURL: null.NewString(o.AdminPhotoURL, o.AdminPhotoURL != ""),
		UserCount:     o.UserCount,
		UserLimit:     o.UserLimit,
		DataUsedBytes: o.DataUsedBytes,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.UTC(),
		UpdatedAt:     o.UpdatedAt.UTC(),
	}
}

func (repo orgRepository) unrow(row orgRow) org.Organization {
	return org.Organization{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Phone:         row.Phone.String,
		Address:       row.Address.String,
		LogoURL:       row.LogoURL.String,
		AdminUID:      row.AdminUID,
		AdminPhotoURL: row.AdminPhotoURL.String,
		UserCount:     row.UserCount,
		UserLimit:     row.UserLimit,
		DataUsedBytes: row.DataUsedBytes,
		Status:        org.Status(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (repo *orgRepository) CreateOrganization(ctx context.Context, o org.Organization) (org.Organization, error) {
	const q = `
	INSERT INTO organization (
		id, name, email, phone, address, logo_url, admin_uid, admin_photo_url,
		user_count, user_limit, data_used_bytes, status, created_at, updated_at
	) VALUES (
		:id, :name, :email, :phone, :address, :logo_url, :admin_uid, :admin_photo_url,
		:user_count, :user_limit, :data_used_bytes, :status, :created_at, :updated_at
	)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(o)); err != nil {
		return org.Organization{}, errors.Wrap(err, "inserting organization")
	}
	return o, nil
}

func (repo *orgRepository) GetOrganization(ctx context.Context, id string) (org.Organization, error) {
	var row orgRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM organization WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return org.Organization{}, org.ErrNotFound
	}
	if err != nil {
		return org.Organization{}, errors.Wrap(err, "getting organization")
	}
	return repo.unrow(row), nil
}

func (repo *orgRepository) QueryAllOrganizations(ctx context.Context) ([]org.Organization, error) {
	var rows []orgRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM organization ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying organizations")
	}
	orgs := make([]org.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, repo.unrow(row))
	}
	return orgs, nil
}

func (repo *orgRepository) UpdateOrganizationStatus(ctx context.Context, id string, status org.Status) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE organization SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating organization status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return org.ErrNotFound
	}
	return nil
}

func (repo *orgRepository) IncrementUserCount(ctx context.Context, id string, delta int) error {
	// single-statement increment; concurrent provisioning must not lose counts
	res, err := repo.db.ExecContext(ctx,
		`UPDATE organization SET user_count = user_count + $1, updated_at = $2 WHERE id = $3`,
		delta, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "incrementing user count")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return org.ErrNotFound
	}
	return nil
}

func (repo *orgRepository) DeleteOrganization(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM organization WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting organization")
	}
	return nil
}
