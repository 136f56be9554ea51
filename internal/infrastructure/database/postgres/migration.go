// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Catalog
		&product.Category{},
		&product.Brand{},
		&product.Product{},
		&product.Variation{},

		// Ledger
		&inventory.StockMovement{},
		&inventory.StockAlert{},

		// Coupons
		&coupon.Coupon{},

		// Orders
		&order.Order{},
		&order.OrderItem{},
		&order.OrderHistory{},

		// Usage and reviews reference orders, so they come last
		&coupon.CouponUsage{},
		&product.Review{},
		&product.ReviewVote{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_status_active ON products(stock_status, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_product_variations_product_active ON product_variations(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_sort ON categories(parent_id, sort_order)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_product_reviews_product_status ON product_reviews(product_id, status, id DESC)",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_target ON stock_movements(product_id, variation_id, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_type, reference_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_alerts_open ON stock_alerts(product_id, variation_id) WHERE is_resolved = false",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_total_amount ON orders(total_amount)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_history_order ON order_history(order_id, created_at DESC)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_window ON coupons(is_active, valid_from, valid_until)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupon_usage_order ON coupon_usage(coupon_id, order_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to create index: %s", indexSQL)
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// ProtectLedger makes stock_movements append-only at the database level:
// UPDATE and DELETE statements on it are rewritten to do nothing
func (m *Migration) ProtectLedger() error {
	rules := []string{
		"CREATE OR REPLACE RULE stock_movements_no_update AS ON UPDATE TO stock_movements DO INSTEAD NOTHING",
		"CREATE OR REPLACE RULE stock_movements_no_delete AS ON DELETE TO stock_movements DO INSTEAD NOTHING",
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_movements_balance') THEN
		    ALTER TABLE stock_movements
		      ADD CONSTRAINT chk_stock_movements_balance CHECK (stock_after = stock_before + quantity);
		  END IF;
		END $$`,
	}

	for _, sql := range rules {
		if err := m.db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to protect stock ledger: %w", err)
		}
	}

	m.logger.Info("✅ Stock ledger is append-only")
	return nil
}

// SeedInitialData seeds the database with initial data
func (m *Migration) SeedInitialData() error {
	m.logger.Info("🌱 Seeding initial data...")

	categories, err := m.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedBrands(); err != nil {
		return fmt.Errorf("failed to seed brands: %w", err)
	}
	if err := m.seedProducts(categories); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	m.logger.Info("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the top-level categories and returns their IDs by slug
func (m *Migration) seedCategories() (map[string]uint, error) {
	categories := []product.Category{
		{Name: "Clothing", Slug: "clothing", Description: "Apparel and accessories", SortOrder: 1, IsActive: true, IsFeatured: true},
		{Name: "Electronics", Slug: "electronics", Description: "Audio, mobile and computing", SortOrder: 2, IsActive: true, IsFeatured: true},
		{Name: "Gift Cards", Slug: "gift-cards", Description: "Store gift cards", SortOrder: 3, IsActive: true},
	}

	ids := make(map[string]uint, len(categories))
	for i := range categories {
		c := &categories[i]
		var existing product.Category
		if err := m.db.Where("slug = ?", c.Slug).First(&existing).Error; err == nil {
			ids[c.Slug] = existing.ID
			continue
		}
		if err := m.db.Create(c).Error; err != nil {
			return nil, err
		}
		ids[c.Slug] = c.ID
		m.logger.Infof("✅ Created category: %s", c.Name)
	}
	return ids, nil
}

func (m *Migration) seedBrands() error {
	brands := []product.Brand{
		{Name: "Khadi Weaves", Slug: "khadi-weaves", IsIndianBrand: true, SortOrder: 1, IsActive: true},
		{Name: "boAt", Slug: "boat", WebsiteURL: "https://www.boat-lifestyle.com", IsIndianBrand: true, SortOrder: 2, IsActive: true},
	}

	for i := range brands {
		b := &brands[i]
		var existing product.Brand
		if err := m.db.Where("slug = ?", b.Slug).First(&existing).Error; err == nil {
			continue
		}
		if err := m.db.Create(b).Error; err != nil {
			return err
		}
		m.logger.Infof("✅ Created brand: %s", b.Name)
	}
	return nil
}

// seedProducts creates demo products. Each one gets its opening stock as a
// purchase movement so the ledger reconciles from the start.
func (m *Migration) seedProducts(categories map[string]uint) error {
	var count int64
	m.db.Model(&product.Product{}).Count(&count)
	if count > 0 {
		m.logger.Info("⏭️ Products already exist")
		return nil
	}

	products := []product.Product{
		{
			SKU:               "TSHIRT-001",
			Name:              "Classic Cotton T-Shirt",
			Slug:              "classic-cotton-t-shirt",
			Description:       "Comfortable 100% cotton t-shirt",
			Price:             decimal.RequireFromString("100.00"),
			ComparePrice:      decimal.RequireFromString("149.00"),
			GSTRate:           decimal.NewFromInt(5),
			HSNCode:           "6109",
			IsActive:          true,
			TrackInventory:    true,
			StockQuantity:     50,
			LowStockThreshold: 5,
			MinCartQuantity:   1,
			MaxCartQuantity:   10,
		},
		{
			SKU:               "HEADPHONE-001",
			Name:              "Wireless Bluetooth Headphones",
			Slug:              "wireless-bluetooth-headphones",
			Description:       "High-quality wireless headphones with noise cancellation",
			Price:             decimal.RequireFromString("2499.00"),
			ComparePrice:      decimal.RequireFromString("3999.00"),
			GSTRate:           decimal.NewFromInt(18),
			HSNCode:           "8518",
			IsActive:          true,
			TrackInventory:    true,
			StockQuantity:     25,
			LowStockThreshold: 5,
			MinCartQuantity:   1,
			MaxCartQuantity:   5,
		},
		{
			SKU:               "GIFTCARD-500",
			Name:              "Gift Card ₹500",
			Slug:              "gift-card-500",
			Price:             decimal.RequireFromString("500.00"),
			GSTRate:           decimal.Zero,
			IsActive:          true,
			TrackInventory:    false,
			LowStockThreshold: 5,
			MinCartQuantity:   1,
			MaxCartQuantity:   10,
		},
	}

	categorySlugs := []string{"clothing", "electronics", "gift-cards"}
	for i := range products {
		p := &products[i]
		if id, ok := categories[categorySlugs[i]]; ok {
			p.CategoryID = &id
		}
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			if !p.TrackInventory || p.StockQuantity == 0 {
				return nil
			}
			return tx.Create(&inventory.StockMovement{
				ProductID:     p.ID,
				MovementType:  inventory.MovementTypePurchase,
				Quantity:      p.StockQuantity,
				StockBefore:   0,
				StockAfter:    p.StockQuantity,
				ReferenceType: inventory.ReferenceAdmin,
				Reason:        "Opening stock",
				PerformedAt:   time.Now().UTC(),
			}).Error
		})
		if err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to create product %s", p.SKU)
			continue
		}
		m.logger.Infof("✅ Created product: %s", p.Name)
	}
	return nil
}

func (m *Migration) seedCoupons() error {
	maxDiscount := decimal.NewNullDecimal(decimal.NewFromInt(200))
	perUser := 1

	coupons := []coupon.Coupon{
		{
			Code:                  "WELCOME10",
			Name:                  "Welcome 10% off",
			Description:           "10% off your first order, up to ₹200",
			DiscountType:          coupon.DiscountTypePercentage,
			DiscountValue:         decimal.NewFromInt(10),
			MaximumDiscountAmount: maxDiscount,
			MinimumOrderAmount:    decimal.NewFromInt(500),
			UsageLimitPerUser:     &perUser,
			ValidFrom:             time.Now().UTC(),
			IsActive:              true,
		},
		{
			Code:               "FLAT100",
			Name:               "Flat ₹100 off",
			DiscountType:       coupon.DiscountTypeFixedAmount,
			DiscountValue:      decimal.NewFromInt(100),
			MinimumOrderAmount: decimal.NewFromInt(999),
			ValidFrom:          time.Now().UTC(),
			IsActive:           true,
		},
		{
			Code:         "FREESHIP",
			Name:         "Free shipping",
			DiscountType: coupon.DiscountTypeFreeShipping,
			ValidFrom:    time.Now().UTC(),
			IsActive:     true,
		},
	}

	for i := range coupons {
		c := &coupons[i]
		var existing coupon.Coupon
		if err := m.db.Where("code = ?", c.Code).First(&existing).Error; err == nil {
			m.logger.Infof("⏭️ Coupon already exists: %s", c.Code)
			continue
		}
		if err := m.db.Create(c).Error; err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to create coupon %s", c.Code)
			continue
		}
		m.logger.Infof("✅ Created coupon: %s", c.Code)
	}
	return nil
}

// DropAllTables drops all tables (use with caution!)
func (m *Migration) DropAllTables() error {
	m.logger.Warn("⚠️ WARNING: Dropping all database tables...")

	tables := []string{
		"review_helpfulness",
		"product_reviews",
		"coupon_usage",
		"order_history",
		"order_items",
		"orders",
		"coupons",
		"stock_alerts",
		"stock_movements",
		"product_variations",
		"products",
		"brands",
		"categories",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to drop table %s", table)
		} else {
			m.logger.Infof("🗑️ Dropped table: %s", table)
		}
	}

	m.logger.Info("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs row counts per table
func (m *Migration) GetTableInfo() error {
	tables := []string{
		"products", "product_variations", "stock_movements", "stock_alerts",
		"coupons", "coupon_usage", "orders", "order_items", "order_history",
		"categories", "brands", "product_reviews", "review_helpfulness",
	}

	var totalRecords int64
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			m.logger.WithError(err).Warnf("❌ %s", table)
			continue
		}
		totalRecords += count
		m.logger.Infof("📊 %-20s | %d records", table, count)
	}

	m.logger.Infof("📈 Total records across all tables: %d", totalRecords)
	return nil
}
