package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/feirou/backend/internal/domain"
)

// Store is the SQLite-backed catalog of registered markets, products and
// price history. It implements domain.CatalogRepository.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the catalog database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	store := &Store{conn: conn}
	if err := store.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS markets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  legal_name TEXT,
  street TEXT,
  number TEXT,
  neighborhood TEXT
);

CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  barcode TEXT,
  category_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);

CREATE TABLE IF NOT EXISTS price_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL,
  market_id TEXT NOT NULL,
  unit_price REAL NOT NULL,
  condition TEXT,
  recorded_at TEXT NOT NULL,
  FOREIGN KEY(product_id) REFERENCES products(id),
  FOREIGN KEY(market_id) REFERENCES markets(id)
);
CREATE INDEX IF NOT EXISTS idx_price_records_product ON price_records(product_id);
CREATE INDEX IF NOT EXISTS idx_price_records_market ON price_records(market_id);
`

	_, err := s.conn.Exec(schema)
	return err
}

// UpsertMarket inserts or updates a registered market. Used by seeding.
func (s *Store) UpsertMarket(ctx context.Context, m domain.RegisteredMarket) error {
	var street, number, neighborhood string
	if m.Address != nil {
		street = m.Address.Street
		number = m.Address.Number
		neighborhood = m.Address.Neighborhood
	}

	_, err := s.conn.ExecContext(ctx, `
INSERT INTO markets (id, name, legal_name, street, number, neighborhood)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  legal_name=excluded.legal_name,
  street=excluded.street,
  number=excluded.number,
  neighborhood=excluded.neighborhood
`, m.ID, m.Name, m.LegalName, street, number, neighborhood)
	return err
}

// UpsertProduct inserts or updates a catalog product. Used by seeding.
func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO products (id, name, barcode, category_id)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  barcode=excluded.barcode,
  category_id=excluded.category_id
`, p.ID, p.Name, p.Barcode, p.CategoryID)
	return err
}

func (s *Store) ListMarkets(ctx context.Context) ([]domain.RegisteredMarket, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, name, legal_name, street, number, neighborhood
FROM markets ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMarkets(rows)
}

func (s *Store) MarketsByIDs(ctx context.Context, ids []string) ([]domain.RegisteredMarket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`
SELECT id, name, legal_name, street, number, neighborhood
FROM markets WHERE id IN (%s) ORDER BY id ASC`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMarkets(rows)
}

func scanMarkets(rows *sql.Rows) ([]domain.RegisteredMarket, error) {
	var out []domain.RegisteredMarket
	for rows.Next() {
		var m domain.RegisteredMarket
		var street, number, neighborhood sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.LegalName, &street, &number, &neighborhood); err != nil {
			return nil, err
		}
		if street.String != "" || number.String != "" || neighborhood.String != "" {
			m.Address = &domain.Address{
				Street:       street.String,
				Number:       number.String,
				Neighborhood: neighborhood.String,
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, name, barcode, category_id FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var barcode, categoryID sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &barcode, &categoryID); err != nil {
			return nil, err
		}
		p.Barcode = barcode.String
		p.CategoryID = categoryID.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// PriceRecords returns the price history of a product, optionally
// restricted to the given market IDs (empty slice means all markets).
func (s *Store) PriceRecords(ctx context.Context, productID string, marketIDs []string) ([]domain.PriceRecord, error) {
	query := `
SELECT market_id, unit_price, condition, recorded_at
FROM price_records WHERE product_id = ?`
	args := []interface{}{productID}

	if len(marketIDs) > 0 {
		placeholders := strings.Repeat("?,", len(marketIDs))
		placeholders = placeholders[:len(placeholders)-1]
		query += fmt.Sprintf(" AND market_id IN (%s)", placeholders)
		for _, id := range marketIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY recorded_at ASC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PriceRecord
	for rows.Next() {
		var r domain.PriceRecord
		var condition sql.NullString
		var recordedAt string
		if err := rows.Scan(&r.MarketID, &r.UnitPrice, &condition, &recordedAt); err != nil {
			return nil, err
		}
		r.Condition = condition.String
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			r.RecordedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SavePriceRecord(ctx context.Context, productID string, record domain.PriceRecord) error {
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := s.conn.ExecContext(ctx, `
INSERT INTO price_records (product_id, market_id, unit_price, condition, recorded_at)
VALUES (?, ?, ?, ?, ?)
`, productID, record.MarketID, record.UnitPrice, record.Condition, recordedAt.Format(time.RFC3339))
	return err
}
