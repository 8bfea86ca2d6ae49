// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and the AutoMigrate model list
// - catalog.go: products
// - partner.go: customers
// - inventory.go: inventory batches, stock levels, inventory transactions
// - finance.go: invoices, ledger entries, receipts, bank accounts
// - pos.go: sale audit log and system settings
package models
