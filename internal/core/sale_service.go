package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleService commits sales against the backend database.
type SaleService interface {
	// SubmitSale records the sale and decrements stock atomically. A request
	// whose quantities exceed current stock is rejected with
	// *InsufficientStockError and nothing is written. Resubmitting a request
	// with the same IdempotencyKey returns the original sale.
	SubmitSale(ctx context.Context, req *SaleRequest) (*Sale, error)
	GetSale(ctx context.Context, receiptNumber string) (*Sale, error)
}

type saleService struct {
	pool *pgxpool.Pool
}

func NewSaleService(pool *pgxpool.Pool) SaleService {
	return &saleService{pool: pool}
}

func (s *saleService) SubmitSale(ctx context.Context, req *SaleRequest) (*Sale, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Concurrent retries of one key queue on the key's transaction lock, so
	// the later one sees the committed sale instead of failing on insert.
	if req.IdempotencyKey != "" {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", req.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("failed to lock idempotency key: %w", err)
		}
		existing, err := s.saleByIdempotencyKey(ctx, tx, req.IdempotencyKey)
		if err == nil {
			return existing, tx.Commit(ctx)
		}
		if !errors.Is(err, ErrSaleNotFound) {
			return nil, err
		}
	}

	// Lock stock rows in product id order so concurrent checkouts of
	// overlapping carts cannot deadlock.
	requested := make(map[int]int, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: quantity must be positive", it.ProductID)
		}
		requested[it.ProductID] += it.Quantity
	}
	ids := make([]int, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows, err := tx.Query(ctx, `
		SELECT p.id, ii.qty_on_hand - ii.qty_reserved, ii.product_id IS NOT NULL
		FROM products p
		LEFT JOIN inventory_items ii ON ii.product_id = p.id
		WHERE p.id = ANY($1) AND p.is_active = true
		ORDER BY p.id
		FOR UPDATE OF p
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock: %w", err)
	}
	type stockRow struct {
		available *int
		tracked   bool
	}
	stock := make(map[int]stockRow, len(ids))
	for rows.Next() {
		var id int
		var r stockRow
		if err := rows.Scan(&id, &r.available, &r.tracked); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock[id] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stock rows: %w", err)
	}

	var shortages []StockShortage
	for _, id := range ids {
		r, ok := stock[id]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		if !r.tracked {
			continue // service item
		}
		avail := 0
		if r.available != nil {
			avail = *r.available
		}
		if requested[id] > avail {
			shortages = append(shortages, StockShortage{ProductID: id, Requested: requested[id], Available: avail})
		}
	}
	if len(shortages) > 0 {
		return nil, &InsufficientStockError{Shortages: shortages}
	}

	var seq int64
	if err := tx.QueryRow(ctx, "SELECT nextval('sale_receipt_seq')").Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate receipt number: %w", err)
	}

	var idemKey *string
	if req.IdempotencyKey != "" {
		idemKey = &req.IdempotencyKey
	}

	var saleID int
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (receipt_number, idempotency_key, subtotal, tax_amount, discount_amount,
		                   total_amount, payment_method, customer_name, customer_phone, customer_email, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, receiptNumber(seq), idemKey,
		decimal.NewFromFloat(req.Subtotal), decimal.NewFromFloat(req.TaxAmount),
		decimal.NewFromFloat(req.DiscountAmount), decimal.NewFromFloat(req.TotalAmount),
		string(req.PaymentMethod), req.CustomerName, req.CustomerPhone, req.CustomerEmail, req.Notes,
	).Scan(&saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	for i, it := range req.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, line_number, product_id, quantity, unit_price, discount_amount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, saleID, i+1, it.ProductID, it.Quantity,
			decimal.NewFromFloat(it.UnitPrice), decimal.NewFromFloat(it.DiscountAmount), decimal.NewFromFloat(it.LineTotal))
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale line %d: %w", i+1, err)
		}
	}

	for _, id := range ids {
		if !stock[id].tracked {
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE inventory_items SET qty_on_hand = qty_on_hand - $1, updated_at = NOW()
			WHERE product_id = $2
		`, requested[id], id); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_movements (product_id, movement_type, quantity, sale_id, notes)
			VALUES ($1, 'SALE', $2, $3, $4)
		`, id, -requested[id], saleID, "Sale "+receiptNumber(seq)); err != nil {
			return nil, fmt.Errorf("failed to record stock movement for product %d: %w", id, err)
		}
	}

	sale, err := s.saleByID(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, receiptNumber string) (*Sale, error) {
	var id int
	err := s.pool.QueryRow(ctx, "SELECT id FROM sales WHERE receipt_number = $1", receiptNumber).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receipt %s: %w", receiptNumber, ErrSaleNotFound)
		}
		return nil, fmt.Errorf("failed to look up sale: %w", err)
	}
	return s.saleByID(ctx, s.pool, id)
}

// saleQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type saleQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *saleService) saleByIdempotencyKey(ctx context.Context, q saleQuerier, key string) (*Sale, error) {
	var id int
	err := q.QueryRow(ctx, "SELECT id FROM sales WHERE idempotency_key = $1", key).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return s.saleByID(ctx, q, id)
}

func (s *saleService) saleByID(ctx context.Context, q saleQuerier, id int) (*Sale, error) {
	var sale Sale
	var idemKey, name, phone, email, notes *string
	var method string
	err := q.QueryRow(ctx, `
		SELECT id, receipt_number, idempotency_key, subtotal, tax_amount, discount_amount, total_amount,
		       payment_method, customer_name, customer_phone, customer_email, notes, created_at
		FROM sales WHERE id = $1
	`, id).Scan(&sale.ID, &sale.ReceiptNumber, &idemKey, &sale.Subtotal, &sale.TaxAmount,
		&sale.DiscountAmount, &sale.TotalAmount, &method, &name, &phone, &email, &notes, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}
	sale.PaymentMethod = PaymentMethod(method)
	sale.IdempotencyKey = deref(idemKey)
	sale.CustomerName = deref(name)
	sale.CustomerPhone = deref(phone)
	sale.CustomerEmail = deref(email)
	sale.Notes = deref(notes)

	rows, err := q.Query(ctx, `
		SELECT si.line_number, si.product_id, p.name, si.quantity, si.unit_price, si.discount_amount, si.line_total
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.line_number
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.LineNumber, &l.ProductID, &l.ProductName, &l.Quantity,
			&l.UnitPrice, &l.DiscountAmount, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale line: %w", err)
		}
		sale.Lines = append(sale.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sale lines: %w", err)
	}
	return &sale, nil
}

func receiptNumber(seq int64) string {
	return fmt.Sprintf("R-%06d", seq)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
