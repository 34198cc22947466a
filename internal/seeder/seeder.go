package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth/password"
	"github.com/skilllink/skilllink/internal/database"
	"github.com/skilllink/skilllink/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	hasher *password.Hasher
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, hasher *password.Hasher, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, hasher: hasher, logger: logger}
}

// Run seeds a demo buyer, seller and gig if they are missing.
func (s *Seeder) Run(ctx context.Context) error {
	now := time.Now().UTC()

	hash, err := s.hasher.Hash("Skilllink1")
	if err != nil {
		return err
	}

	users := []entity.User{
		{Name: "Demo Buyer", Email: "buyer@skilllink.dev", PasswordHash: hash, Role: entity.RoleBuyer, CreatedAt: now, UpdatedAt: now},
		{Name: "Demo Seller", Email: "seller@skilllink.dev", PasswordHash: hash, Role: entity.RoleSeller, Skills: []string{"go", "postgres"}, CreatedAt: now, UpdatedAt: now},
	}

	for _, sample := range users {
		user := sample
		_, err := s.db.NewInsert().Model(&user).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	seller := new(entity.User)
	if err := s.db.NewSelect().Model(seller).Where("email = ?", "seller@skilllink.dev").Scan(ctx); err != nil {
		return err
	}

	gig := entity.Gig{
		SellerID:     seller.ID,
		Title:        "Backend API development",
		Description:  "I will build a production-grade REST API for your product.",
		Price:        250,
		Category:     "web-development",
		DeliveryTime: 7,
		Tags:         []string{"go", "api"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	exists, err := s.db.NewSelect().Model((*entity.Gig)(nil)).
		Where("seller_id = ? AND title = ?", gig.SellerID, gig.Title).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := s.db.NewInsert().Model(&gig).Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seed data applied", zap.Int("users", len(users)))
	}
	return nil
}
