package products

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/db"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

const productColumns = `id, name, description, price_cents, is_active, in_stock, inventory_qty, created_at, updated_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.IsActive,
		&p.InStock,
		&p.InventoryQty,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := scanProduct(r.q.QueryRow(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = $1
`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetMany returns the products that still exist, keyed by id. Missing ids
// are simply absent from the map; callers decide whether that matters.
func (r *Repository) GetMany(ctx context.Context, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.q.Query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, onlyActive bool, limit, offset int) ([]Product, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	if onlyActive {
		where = "is_active = true"
	}

	rows, err := r.q.Query(ctx, fmt.Sprintf(`
SELECT %s, COUNT(*) OVER() AS total
FROM products
WHERE %s
ORDER BY id ASC
LIMIT $1 OFFSET $2
`, productColumns, where), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	total := 0
	for rows.Next() {
		var p Product
		var t int
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.PriceCents,
			&p.IsActive,
			&p.InStock,
			&p.InventoryQty,
			&p.CreatedAt,
			&p.UpdatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// DecrementInventory floors at zero: a purchase recorded against stock
// that was concurrently drained must not drive the counter negative.
// Both assignments read the pre-update inventory_qty, so in_stock ends up
// false exactly when the floored result is zero.
func (r *Repository) DecrementInventory(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement qty must be > 0, got %d", qty)
	}

	tag, err := r.q.Exec(ctx, `
UPDATE products
SET inventory_qty = GREATEST(inventory_qty - $2, 0),
    in_stock      = (inventory_qty - $2) > 0,
    updated_at    = now()
WHERE id = $1
`, id, qty)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
