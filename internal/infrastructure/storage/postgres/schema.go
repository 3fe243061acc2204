package postgres

import (
	"context"
	"fmt"
)

// Schema is the full DDL for the ledger database. Tablet counts are plain
// integers; BHD totals are NUMERIC(12,3), per-tablet prices NUMERIC(10,4).
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id               UUID PRIMARY KEY,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	order_date       DATE NOT NULL,
	type             TEXT NOT NULL CHECK (type IN ('silver', 'purple')),
	packets          INTEGER NOT NULL CHECK (packets >= 1),
	tablets          INTEGER NOT NULL CHECK (tablets > 0),
	amount_paid      NUMERIC(12,3) NOT NULL CHECK (amount_paid >= 0),
	status           TEXT NOT NULL DEFAULT 'pending'
	                 CHECK (status IN ('pending', 'partial', 'complete')),
	tablets_received INTEGER NOT NULL DEFAULT 0
	                 CHECK (tablets_received >= 0 AND tablets_received <= tablets)
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders (order_date DESC);

CREATE TABLE IF NOT EXISTS receipts (
	id           UUID PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	receipt_date DATE NOT NULL,
	type         TEXT NOT NULL CHECK (type IN ('silver', 'purple')),
	packets      INTEGER NOT NULL CHECK (packets >= 1),
	tablets      INTEGER NOT NULL CHECK (tablets > 0),
	order_id     UUID REFERENCES orders (id),
	notes        TEXT
);

CREATE INDEX IF NOT EXISTS idx_receipts_order_id ON receipts (order_id);
CREATE INDEX IF NOT EXISTS idx_receipts_receipt_date ON receipts (receipt_date DESC);

CREATE TABLE IF NOT EXISTS consumption (
	id               UUID PRIMARY KEY,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	consumption_date DATE NOT NULL,
	type             TEXT NOT NULL CHECK (type IN ('silver', 'purple')),
	quantity         INTEGER NOT NULL CHECK (quantity >= 1)
);

CREATE INDEX IF NOT EXISTS idx_consumption_date ON consumption (consumption_date DESC);

CREATE TABLE IF NOT EXISTS sales (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sale_date  DATE NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('silver', 'purple')),
	quantity   INTEGER NOT NULL CHECK (quantity >= 1),
	revenue    NUMERIC(12,3) NOT NULL CHECK (revenue >= 0)
);

CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date DESC);

CREATE TABLE IF NOT EXISTS settings (
	id                    UUID PRIMARY KEY,
	buffer_days           INTEGER NOT NULL CHECK (buffer_days >= 0),
	cost_per_tablet       NUMERIC(10,4) NOT NULL CHECK (cost_per_tablet >= 0),
	sale_price_per_tablet NUMERIC(10,4) NOT NULL CHECK (sale_price_per_tablet >= 0),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// ApplySchema creates all tables and indexes.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
