// Package seed はデモ用の初期データ投入を提供する。
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/vaultsync/internal/document"
)

// seedCustomer はシードするテナントの定義。
type seedCustomer struct {
	customerID  string
	displayName string
	logoURL     string
}

// seedUser はシードするユーザーの定義。
type seedUser struct {
	username   string
	password   string
	role       string
	customerID string
}

// seedDocument はシードするドキュメントの定義。
type seedDocument struct {
	customerID string
	title      string
	content    string
}

var customers = []seedCustomer{
	{customerID: "ACC-100", displayName: "Chum Bucket", logoURL: "/assets/logos/chum.svg"},
	{customerID: "ACC-101", displayName: "Krusty Krab", logoURL: "/assets/logos/krusty.svg"},
	{customerID: "ACC-102", displayName: "McDonalds", logoURL: "/assets/logos/mcd.svg"},
	{customerID: "ACC-103", displayName: "KFC", logoURL: "/assets/logos/kfc.svg"},
	{customerID: "ACC-104", displayName: "Gino's", logoURL: "/assets/logos/ginos.svg"},
}

var users = []seedUser{
	{username: "plankton", password: "plankton123", role: "owner", customerID: "ACC-100"},
	{username: "mrkrabs", password: "mrkrabs123", role: "owner", customerID: "ACC-101"},
	{username: "ronald", password: "ronald123", role: "owner", customerID: "ACC-102"},
	{username: "colonel", password: "colonel123", role: "owner", customerID: "ACC-103"},
	{username: "gino", password: "gino123", role: "owner", customerID: "ACC-104"},
}

var documents = []seedDocument{
	{
		customerID: "ACC-100",
		title:      "chum_bucket_formula.txt",
		content:    "CHUM BUCKET FORMULA (CONFIDENTIAL)\n\nIngredient list:\n- Chum\n- Chum\n- More chum\n\nNote: The secret ingredient is not actually a secret.",
	},
	{
		customerID: "ACC-100",
		title:      "plankton_lab_notes.md",
		content:    "# Plankton Lab Notes\n\n- Prototype A failed\n- Prototype B failed\n- Try again tomorrow",
	},
	{
		customerID: "ACC-101",
		title:      "krabby_patty_formula.md",
		content:    "# Krabby Patty Formula\n\nIngredients:\n- Bun\n- Patty\n- Pickles\n- Onions\n- Lettuce\n- Cheese\n- Tomato\n- Secret Sauce",
	},
	{
		customerID: "ACC-101",
		title:      "kelp_shake_recipe.txt",
		content:    "Kelp Shake Recipe\n\nBlend kelp, ice, sugar, and milk until smooth.",
	},
	{
		customerID: "ACC-102",
		title:      "big_mac_sauce.xlsx",
		content:    "BINARY_PLACEHOLDER_BIG_MAC_SAUCE",
	},
	{
		customerID: "ACC-102",
		title:      "happy_meal_toy_list.csv",
		content:    "toy,month\nRace Car,Jan\nRobot,Feb\nDinosaur,Mar",
	},
	{
		customerID: "ACC-103",
		title:      "kfc_11_spices.pdf",
		content:    "BINARY_PLACEHOLDER_KFC_11_SPICES",
	},
	{
		customerID: "ACC-103",
		title:      "colonel_notes.txt",
		content:    "Keep the blend locked. Rotate inventory weekly.",
	},
	{
		customerID: "ACC-104",
		title:      "carbonara_recipe.docx",
		content:    "BINARY_PLACEHOLDER_CARBONARA",
	},
	{
		customerID: "ACC-104",
		title:      "ginos_gravy.md",
		content:    "# Gino's Gravy\n\nSlow simmer tomatoes, garlic, and basil for 4 hours.",
	},
}

// Seeder はデモデータの投入を行う。
type Seeder struct {
	db     *sql.DB
	logger *slog.Logger

	// hashSecrets が真の場合、ユーザーシークレットをbcryptハッシュで保存する。
	// AUTH_VERIFIER=bcrypt で起動する環境向け。
	hashSecrets bool
}

// NewSeeder はSeederを生成する。
func NewSeeder(db *sql.DB, logger *slog.Logger, hashSecrets bool) *Seeder {
	return &Seeder{
		db:          db,
		logger:      logger,
		hashSecrets: hashSecrets,
	}
}

// Run はデモデータを投入する。
// すでにテナントが存在する場合は何もせず正常終了する（冪等）。
func (s *Seeder) Run(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing customers: %w", err)
	}
	if count > 0 {
		s.logger.Info("seed skipped: customers already exist", slog.Int("customers", count))
		return nil
	}

	now := time.Now().UTC()

	for _, c := range customers {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO customers (customer_id, display_name, logo_url, created_at)
			 VALUES ($1, $2, $3, $4)`,
			c.customerID, c.displayName, c.logoURL, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.customerID, err)
		}
	}

	for _, u := range users {
		secret := u.password
		if s.hashSecrets {
			hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash secret for %s: %w", u.username, err)
			}
			secret = string(hashed)
		}

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, username, password, role, customer_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), u.username, secret, u.role, u.customerID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.username, err)
		}
	}

	for _, d := range documents {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO documents (id, customer_id, title, content, content_type, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), d.customerID, d.title, []byte(d.content),
			document.DetectContentType(d.title), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed document %s: %w", d.title, err)
		}
	}

	s.logger.Info("seed completed",
		slog.Int("customers", len(customers)),
		slog.Int("users", len(users)),
		slog.Int("documents", len(documents)),
	)

	return nil
}
