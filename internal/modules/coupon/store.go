// README: Coupon store backed by PostgreSQL; redemption locks the coupon row.
package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dishpatch/internal/types"
)

const couponColumns = `id, code, discount_type, discount_value, min_order_amount,
	max_discount, start_date, end_date, is_active, usage_limit, used_count,
	created_at, updated_at`

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, c *Coupon) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(c.ID), c.Code, string(c.Type), c.DiscountValue, c.MinOrderAmount,
		c.MaxDiscount, c.StartDate, c.EndDate, c.IsActive, c.UsageLimit, c.UsedCount,
		c.CreatedAt, c.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return err
}

func (s *PGStore) GetByID(ctx context.Context, id types.ID) (*Coupon, error) {
	row := s.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, string(id))
	return scanCoupon(row)
}

func (s *PGStore) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	row := s.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
	return scanCoupon(row)
}

func (s *PGStore) List(ctx context.Context, limit, offset int) ([]Coupon, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, c *Coupon) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE coupons
		SET code = $2, discount_type = $3, discount_value = $4, min_order_amount = $5,
		    max_discount = $6, start_date = $7, end_date = $8, is_active = $9,
		    usage_limit = $10, updated_at = $11
		WHERE id = $1`,
		string(c.ID), c.Code, string(c.Type), c.DiscountValue, c.MinOrderAmount,
		c.MaxDiscount, c.StartDate, c.EndDate, c.IsActive, c.UsageLimit, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem evaluates the coupon and consumes one usage in a single
// transaction. SELECT ... FOR UPDATE serializes concurrent redemptions of
// the same code, so the usage limit cannot be raced past.
func (s *PGStore) Redeem(ctx context.Context, code string, subtotal float64, at time.Time) (Discount, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Discount{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1 FOR UPDATE`, code)
	c, err := scanCoupon(row)
	if errors.Is(err, ErrNotFound) {
		return notApplied(subtotal, ReasonNotFound), nil
	}
	if err != nil {
		return Discount{}, err
	}

	d := c.DiscountFor(subtotal, at)
	if !d.Applied {
		return d, nil
	}
	if c.Exhausted() {
		return notApplied(subtotal, ReasonUsageLimitReach), nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE coupons SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1`, string(c.ID),
	); err != nil {
		return Discount{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Discount{}, err
	}
	return d, nil
}

// Release decrements used_count, floored at zero.
func (s *PGStore) Release(ctx context.Context, code string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE coupons
		SET used_count = GREATEST(used_count - 1, 0), updated_at = NOW()
		WHERE code = $1`, code,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.Type, &c.DiscountValue, &c.MinOrderAmount,
		&c.MaxDiscount, &c.StartDate, &c.EndDate, &c.IsActive, &c.UsageLimit,
		&c.UsedCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
