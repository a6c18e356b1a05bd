package memberrepo

import (
	"context"
	"errors"

	"bookloans/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the member store contract. FindByID returns (nil, nil) when the
// member does not exist.
type Repo interface {
	FindByID(ctx context.Context, id string) (*model.Member, error)
	FindAll(ctx context.Context) ([]model.Member, error)
	Save(ctx context.Context, m *model.Member) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) Repo { return &repo{db} }

func (r *repo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	const q = `SELECT id, name FROM members WHERE id=$1`
	var m model.Member
	err := r.db.QueryRow(ctx, q, id).Scan(&m.ID, &m.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindAll(ctx context.Context) ([]model.Member, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) Save(ctx context.Context, m *model.Member) error {
	const q = `
INSERT INTO members (id, name) VALUES ($1,$2)
ON CONFLICT (id) DO UPDATE SET name=excluded.name`
	_, err := r.db.Exec(ctx, q, m.ID, m.Name)
	return err
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM members WHERE id=$1`, id)
	return err
}

func (r *repo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}
