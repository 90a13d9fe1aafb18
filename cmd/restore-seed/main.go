// restore-seed restores the demo catalog and its stock levels. Run it after
// the schema migrations, or whenever a demo till has sold everything.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"

	"pos-terminal/internal/config"
	"pos-terminal/internal/db"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (sku, name, selling_price, tax_rate, is_taxable, attributes)
		VALUES
		  ('WTR-500',  'Mineral Water 500ml', 0.80,  0,    false, '{"category":"drinks"}'),
		  ('COF-250',  'Ground Coffee 250g',  6.50,  7.5,  true,  '{"category":"grocery"}'),
		  ('BRD-LOAF', 'Sourdough Loaf',      3.20,  0,    false, '{"category":"bakery"}'),
		  ('SOAP-3',   'Bar Soap (3 pack)',   2.90,  18,   true,  '{"category":"household"}'),
		  ('CHG-USBC', 'USB-C Charger',       14.99, 18,   true,  '{"category":"electronics"}'),
		  ('SVC-GIFT', 'Gift Wrapping',       1.50,  18,   true,  '{"category":"services"}')
		ON CONFLICT (sku) DO UPDATE
		  SET name = EXCLUDED.name,
		      selling_price = EXCLUDED.selling_price,
		      tax_rate = EXCLUDED.tax_rate,
		      is_taxable = EXCLUDED.is_taxable,
		      attributes = EXCLUDED.attributes,
		      is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to restore products: %v", err)
	}

	// Gift wrapping is a service and deliberately has no inventory row.
	log.Println("Restoring stock levels...")
	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_items (product_id, qty_on_hand, qty_reserved)
		SELECT p.id, s.qty, 0
		FROM products p
		JOIN (VALUES
		    ('WTR-500',  240),
		    ('COF-250',  36),
		    ('BRD-LOAF', 12),
		    ('SOAP-3',   50),
		    ('CHG-USBC', 5)
		) AS s(sku, qty) ON s.sku = p.sku
		ON CONFLICT (product_id) DO UPDATE
		  SET qty_on_hand = EXCLUDED.qty_on_hand,
		      qty_reserved = 0,
		      updated_at = NOW();
	`)
	if err != nil {
		log.Fatalf("Failed to restore stock levels: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_movements (product_id, movement_type, quantity, notes)
		SELECT product_id, 'ADJUSTMENT', qty_on_hand, 'demo seed restore'
		FROM inventory_items;
	`)
	if err != nil {
		log.Fatalf("Failed to record stock adjustments: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Demo catalog restored.")
}
