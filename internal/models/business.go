package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is an untyped business row as it comes out of an import
// pipeline or an aggregation query. Field values may be numbers, numeric
// strings, or garbage; the series normalizer coerces and validates them.
// Nothing past the normalizer ever sees a RawRecord.
type RawRecord struct {
	Timestamp string                 `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields"`
}

// SalesRecord is one day of sales on a single marketplace channel.
type SalesRecord struct {
	Date        time.Time       `json:"date"`
	Marketplace string          `json:"marketplace"`
	Revenue     decimal.Decimal `json:"revenue"`
	Quantity    int             `json:"quantity"`
	Orders      int             `json:"orders"`
}

// AdvertisingRecord is one day of spend and attributed revenue for an
// advertising channel.
type AdvertisingRecord struct {
	Date    time.Time       `json:"date"`
	Channel string          `json:"channel"`
	Spend   decimal.Decimal `json:"spend"`
	Revenue decimal.Decimal `json:"revenue"`
	Clicks  int             `json:"clicks"`
}

// ProductRecord is a catalog entry with its current stock position.
type ProductRecord struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// CustomerRecord aggregates a customer segment: how many customers it
// holds and what each is worth against what they cost to acquire.
type CustomerRecord struct {
	Segment         string          `json:"segment"`
	Count           int             `json:"count"`
	LifetimeValue   decimal.Decimal `json:"lifetime_value"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
}

// BusinessDataBundle is the read-only snapshot of adjacent business
// dimensions handed to the insight engine. It is never mutated.
type BusinessDataBundle struct {
	Sales       []SalesRecord       `json:"sales"`
	Advertising []AdvertisingRecord `json:"advertising"`
	Products    []ProductRecord     `json:"products"`
	Customers   []CustomerRecord    `json:"customers"`
}
