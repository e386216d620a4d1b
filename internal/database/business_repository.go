package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/modaflow/retail-insights/internal/models"
)

// Querier defines the database operations the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// BusinessRepository aggregates raw transactional rows into the snapshots
// the analytics engine consumes. It is the data-fetch collaborator of the
// forecast and insight endpoints; no analytics happen here.
type BusinessRepository struct {
	db Querier
}

// NewBusinessRepository creates a repository over a Postgres pool.
func NewBusinessRepository(db *PostgresDB) *BusinessRepository {
	var querier Querier
	if db != nil {
		querier = db.Pool
	}
	return &BusinessRepository{db: querier}
}

// NewBusinessRepositoryWithQuerier creates a repository with a custom
// querier (for tests).
func NewBusinessRepositoryWithQuerier(db Querier) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// LoadMetricSeries aggregates order rows into one raw record per day for
// the requested lookback window. The series normalizer owns validation and
// gap filling; this query only groups and sums.
func (r *BusinessRepository) LoadMetricSeries(ctx context.Context, lookbackDays int) ([]models.RawRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT DATE(o.ordered_at) AS day,
			   SUM(o.total_amount) AS revenue,
			   SUM(o.item_count) AS quantity,
			   COUNT(*) AS orders
		FROM orders o
		WHERE o.ordered_at >= $1
		GROUP BY 1
		ORDER BY 1 ASC
	`

	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var day time.Time
		var revenue decimal.Decimal
		var quantity, orders int64
		if err := rows.Scan(&day, &revenue, &quantity, &orders); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		revenueF, _ := revenue.Float64()
		records = append(records, models.RawRecord{
			Timestamp: day.Format("2006-01-02"),
			Fields: map[string]interface{}{
				"revenue":  revenueF,
				"quantity": int(quantity),
				"orders":   int(orders),
			},
		})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return records, nil
}

// LoadBusinessSnapshot loads the full read-only bundle the insight engine
// scans: daily sales per marketplace, daily ad spend per channel, the
// product catalog and the customer segment aggregates.
func (r *BusinessRepository) LoadBusinessSnapshot(ctx context.Context, lookbackDays int) (*models.BusinessDataBundle, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	bundle := &models.BusinessDataBundle{}

	sales, err := r.loadSales(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	bundle.Sales = sales

	advertising, err := r.loadAdvertising(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load advertising: %w", err)
	}
	bundle.Advertising = advertising

	products, err := r.loadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	bundle.Products = products

	customers, err := r.loadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	bundle.Customers = customers

	return bundle, nil
}

func (r *BusinessRepository) loadSales(ctx context.Context, since time.Time) ([]models.SalesRecord, error) {
	query := `
		SELECT DATE(o.ordered_at) AS day,
			   m.name AS marketplace,
			   SUM(o.total_amount) AS revenue,
			   SUM(o.item_count) AS quantity,
			   COUNT(*) AS orders
		FROM orders o
		JOIN marketplaces m ON o.marketplace_id = m.id
		WHERE o.ordered_at >= $1
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []models.SalesRecord
	for rows.Next() {
		var rec models.SalesRecord
		var quantity, orders int64
		if err := rows.Scan(&rec.Date, &rec.Marketplace, &rec.Revenue, &quantity, &orders); err != nil {
			return nil, err
		}
		rec.Quantity = int(quantity)
		rec.Orders = int(orders)
		sales = append(sales, rec)
	}
	return sales, rows.Err()
}

func (r *BusinessRepository) loadAdvertising(ctx context.Context, since time.Time) ([]models.AdvertisingRecord, error) {
	query := `
		SELECT a.spent_at::date AS day, a.channel, SUM(a.spend), SUM(a.attributed_revenue), SUM(a.clicks)
		FROM ad_spend a
		WHERE a.spent_at >= $1
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []models.AdvertisingRecord
	for rows.Next() {
		var rec models.AdvertisingRecord
		var clicks int64
		if err := rows.Scan(&rec.Date, &rec.Channel, &rec.Spend, &rec.Revenue, &clicks); err != nil {
			return nil, err
		}
		rec.Clicks = int(clicks)
		ads = append(ads, rec)
	}
	return ads, rows.Err()
}

func (r *BusinessRepository) loadProducts(ctx context.Context) ([]models.ProductRecord, error) {
	query := `
		SELECT p.sku, p.name, b.name AS brand, p.category, p.price, p.stock
		FROM products p
		JOIN brands b ON p.brand_id = b.id
		ORDER BY p.sku ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.ProductRecord
	for rows.Next() {
		var rec models.ProductRecord
		var stock int64
		if err := rows.Scan(&rec.SKU, &rec.Name, &rec.Brand, &rec.Category, &rec.Price, &stock); err != nil {
			return nil, err
		}
		rec.Stock = int(stock)
		products = append(products, rec)
	}
	return products, rows.Err()
}

func (r *BusinessRepository) loadCustomers(ctx context.Context) ([]models.CustomerRecord, error) {
	query := `
		SELECT c.segment, COUNT(*), AVG(c.lifetime_value), AVG(c.acquisition_cost)
		FROM customers c
		GROUP BY 1
		ORDER BY 1 ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.CustomerRecord
	for rows.Next() {
		var rec models.CustomerRecord
		var count int64
		if err := rows.Scan(&rec.Segment, &count, &rec.LifetimeValue, &rec.AcquisitionCost); err != nil {
			return nil, err
		}
		rec.Count = int(count)
		customers = append(customers, rec)
	}
	return customers, rows.Err()
}
