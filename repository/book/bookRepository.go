package bookrepo

import (
	"context"
	"errors"
	"time"

	"bookloans/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionConflict is returned by Save when the book row changed since it
// was read. Callers treat it as an internal error; the engine does not retry.
var ErrVersionConflict = errors.New("book version conflict")

// Repo is the book store contract the services depend on. Lookups return
// (nil, nil) when the book does not exist. CountByLoanedTo must be an
// indexed count; it runs on every borrow and on every queue-drain candidate.
type Repo interface {
	FindByID(ctx context.Context, id string) (*model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Save(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)

	CountByLoanedTo(ctx context.Context, memberID string) (int64, error)
	FindByLoanedTo(ctx context.Context, memberID string) ([]model.Book, error)
	FindByQueueContaining(ctx context.Context, memberID string) ([]model.Book, error)
	FindByDueDateBefore(ctx context.Context, day time.Time) ([]model.Book, error)
	ExistsByLoanedTo(ctx context.Context, memberID string) (bool, error)
	FindByTitleContaining(ctx context.Context, substr string) ([]model.Book, error)
	FindAvailable(ctx context.Context) ([]model.Book, error)

	// RemoveFromAllQueues splices memberID out of every reservation queue in
	// one statement, preserving the relative order of the other entries.
	RemoveFromAllQueues(ctx context.Context, memberID string) error
}

type repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) Repo { return &repo{db} }

const bookCols = `id, title, loaned_to, due_date, first_due_date, version`

func (r *repo) FindByID(ctx context.Context, id string) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id=$1`
	var b model.Book
	err := r.db.QueryRow(ctx, q, id).
		Scan(&b.ID, &b.Title, &b.LoanedTo, &b.DueDate, &b.FirstDueDate, &b.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadQueues(ctx, []*model.Book{&b}); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindAll(ctx context.Context) ([]model.Book, error) {
	return r.selectBooks(ctx, `SELECT `+bookCols+` FROM books ORDER BY id`)
}

func (r *repo) Save(ctx context.Context, b *model.Book) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if b.Version == 0 {
		const ins = `
INSERT INTO books (id, title, loaned_to, due_date, first_due_date, version)
VALUES ($1,$2,$3,$4,$5,1)`
		if _, err = tx.Exec(ctx, ins, b.ID, b.Title, b.LoanedTo, b.DueDate, b.FirstDueDate); err != nil {
			return err
		}
		b.Version = 1
	} else {
		const upd = `
UPDATE books
SET title=$2, loaned_to=$3, due_date=$4, first_due_date=$5, version=version+1
WHERE id=$1 AND version=$6`
		tag, execErr := tx.Exec(ctx, upd, b.ID, b.Title, b.LoanedTo, b.DueDate, b.FirstDueDate, b.Version)
		if execErr != nil {
			err = execErr
			return err
		}
		if tag.RowsAffected() == 0 {
			err = ErrVersionConflict
			return err
		}
		b.Version++
	}

	// Rewrite the queue side table; positions restart from 0.
	if _, err = tx.Exec(ctx, `DELETE FROM book_reservations WHERE book_id=$1`, b.ID); err != nil {
		return err
	}
	const insQ = `INSERT INTO book_reservations (book_id, position, member_id) VALUES ($1,$2,$3)`
	for i, m := range b.Queue {
		if _, err = tx.Exec(ctx, insQ, b.ID, i, m); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	return err
}

func (r *repo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (r *repo) CountByLoanedTo(ctx context.Context, memberID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE loaned_to=$1`, memberID).Scan(&n)
	return n, err
}

func (r *repo) FindByLoanedTo(ctx context.Context, memberID string) ([]model.Book, error) {
	return r.selectBooks(ctx,
		`SELECT `+bookCols+` FROM books WHERE loaned_to=$1 ORDER BY id`, memberID)
}

func (r *repo) FindByQueueContaining(ctx context.Context, memberID string) ([]model.Book, error) {
	return r.selectBooks(ctx, `
SELECT `+bookCols+` FROM books
WHERE id IN (SELECT book_id FROM book_reservations WHERE member_id=$1)
ORDER BY id`, memberID)
}

func (r *repo) FindByDueDateBefore(ctx context.Context, day time.Time) ([]model.Book, error) {
	return r.selectBooks(ctx,
		`SELECT `+bookCols+` FROM books WHERE due_date < $1 ORDER BY id`, day)
}

func (r *repo) ExistsByLoanedTo(ctx context.Context, memberID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE loaned_to=$1)`, memberID).Scan(&ok)
	return ok, err
}

func (r *repo) FindByTitleContaining(ctx context.Context, substr string) ([]model.Book, error) {
	return r.selectBooks(ctx,
		`SELECT `+bookCols+` FROM books WHERE title ILIKE '%' || $1 || '%' ORDER BY id`, substr)
}

func (r *repo) FindAvailable(ctx context.Context) ([]model.Book, error) {
	return r.selectBooks(ctx,
		`SELECT `+bookCols+` FROM books WHERE loaned_to IS NULL ORDER BY id`)
}

func (r *repo) RemoveFromAllQueues(ctx context.Context, memberID string) error {
	// Remaining rows keep their positions; gaps are fine, ORDER BY position
	// still yields the surviving FIFO order.
	_, err := r.db.Exec(ctx, `DELETE FROM book_reservations WHERE member_id=$1`, memberID)
	return err
}

func (r *repo) selectBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.LoanedTo, &b.DueDate, &b.FirstDueDate, &b.Version); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*model.Book, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.loadQueues(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) loadQueues(ctx context.Context, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]string, len(books))
	byID := make(map[string]*model.Book, len(books))
	for i, b := range books {
		ids[i] = b.ID
		byID[b.ID] = b
		b.Queue = nil
	}
	const q = `
SELECT book_id, member_id FROM book_reservations
WHERE book_id = ANY($1)
ORDER BY book_id, position`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookID, memberID string
		if err := rows.Scan(&bookID, &memberID); err != nil {
			return err
		}
		if b := byID[bookID]; b != nil {
			b.Queue = append(b.Queue, memberID)
		}
	}
	return rows.Err()
}
