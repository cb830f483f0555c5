package postgres

import "database/sql"

// Schema is the full DDL for the catalog and sync tables. Applied by
// cmd/migrate; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	ean13 TEXT,
	name TEXT NOT NULL,
	description TEXT,
	price BIGINT NOT NULL DEFAULT 0,
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	category TEXT NOT NULL DEFAULT '',
	sku_level TEXT NOT NULL DEFAULT 'grandparent',
	parent_id UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shopify_stores (
	id UUID PRIMARY KEY,
	store_name TEXT NOT NULL,
	shopify_domain TEXT NOT NULL UNIQUE,
	access_token TEXT NOT NULL,
	api_key TEXT NOT NULL DEFAULT '',
	api_secret TEXT NOT NULL DEFAULT '',
	webhook_secret TEXT,
	is_active BOOLEAN NOT NULL DEFAULT true,
	sync_status TEXT NOT NULL DEFAULT 'idle',
	last_sync_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	shopify_order_id BIGINT NOT NULL,
	shopify_store_id UUID NOT NULL,
	order_number TEXT NOT NULL,
	customer_email TEXT,
	customer_first_name TEXT,
	customer_last_name TEXT,
	total_price BIGINT NOT NULL DEFAULT 0,
	subtotal_price BIGINT NOT NULL DEFAULT 0,
	total_tax BIGINT NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT '',
	financial_status TEXT NOT NULL DEFAULT '',
	fulfillment_status TEXT NOT NULL DEFAULT 'unfulfilled',
	order_status TEXT NOT NULL DEFAULT 'open',
	shipping_address JSONB,
	billing_address JSONB,
	tags TEXT,
	note TEXT,
	processed_at TIMESTAMPTZ,
	cancelled_at TIMESTAMPTZ,
	cancelled_reason TEXT,
	last_synced_at TIMESTAMPTZ,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (shopify_order_id, shopify_store_id)
);

CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id),
	shopify_line_item_id BIGINT NOT NULL,
	product_id UUID,
	shopify_product_id BIGINT,
	shopify_variant_id BIGINT,
	sku TEXT,
	title TEXT NOT NULL,
	variant_title TEXT,
	quantity INTEGER NOT NULL DEFAULT 0,
	price BIGINT NOT NULL DEFAULT 0,
	total_discount BIGINT NOT NULL DEFAULT 0,
	fulfillment_status TEXT NOT NULL DEFAULT 'unfulfilled',
	requires_shipping BOOLEAN NOT NULL DEFAULT true,
	taxable BOOLEAN NOT NULL DEFAULT true,
	gift_card BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (shopify_line_item_id, order_id)
);

CREATE TABLE IF NOT EXISTS product_links (
	id UUID PRIMARY KEY,
	local_product_id UUID NOT NULL,
	shopify_product_id BIGINT NOT NULL,
	shopify_variant_id BIGINT,
	shopify_store_id UUID NOT NULL,
	last_synced_at TIMESTAMPTZ,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (local_product_id, shopify_store_id)
);

CREATE INDEX IF NOT EXISTS idx_orders_store ON orders(shopify_store_id);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_products_parent ON products(parent_id);
`

// ApplySchema creates the tables if they do not exist yet
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
