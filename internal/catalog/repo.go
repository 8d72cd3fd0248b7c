package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/retailkit/pos/internal/postgres"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrCategoryInUse = errors.New("category is referenced by one or more products")
)

type Repo struct{ DB postgres.DB }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, code, name, price, COALESCE(category_id, 0), image
	                              FROM products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.CategoryID, &p.Image); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Product(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT id, code, name, price, COALESCE(category_id, 0), image
	                           FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.CategoryID, &p.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) FindProductByCode(ctx context.Context, code string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT id, code, name, price, COALESCE(category_id, 0), image
	                           FROM products WHERE code=$1`, code).
		Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.CategoryID, &p.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// SaveProduct inserts when p.ID is zero, otherwise updates in place. On
// insert the generated id is written back to p.
func (r *Repo) SaveProduct(ctx context.Context, p *Product) error {
	if p.ID == 0 {
		return r.DB.QueryRow(ctx, `
			INSERT INTO products(code, name, price, category_id, image)
			VALUES ($1, $2, $3, NULLIF($4, 0), $5)
			RETURNING id`,
			p.Code, p.Name, p.Price, p.CategoryID, p.Image).Scan(&p.ID)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET code=$2, name=$3, price=$4, category_id=NULLIF($5, 0), image=$6
		WHERE id=$1`,
		p.ID, p.Code, p.Name, p.Price, p.CategoryID, p.Image)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) SaveCategory(ctx context.Context, c *Category) error {
	if c.ID == 0 {
		return r.DB.QueryRow(ctx, `INSERT INTO categories(name) VALUES ($1) RETURNING id`, c.Name).
			Scan(&c.ID)
	}
	ct, err := r.DB.Exec(ctx, `UPDATE categories SET name=$2 WHERE id=$1`, c.ID, c.Name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory refuses to delete a category any product still references.
// The check and the delete share one transaction so no product can slip in
// between them.
func (r *Repo) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	ct, err := tx.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
