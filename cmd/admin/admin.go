package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/random"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	const prefix = "STOREFRONT"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd := cfg.Args.Num(0); cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("migrations complete")

	case "seed":
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := seed(ctx, log, db, cfg.Args.Num(1), cfg.Args.Num(2)); err != nil {
			return err
		}
		log.Info("seed complete")

	default:
		return fmt.Errorf("unknown command %q: use migrate or seed [admin-email] [admin-password]", cmd)
	}

	return nil
}

// seed creates the admin account and the sample catalog. Without a password
// argument one is generated and logged once.
func seed(ctx context.Context, log logrus.FieldLogger, db *sqlx.DB, email, password string) error {
	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		var err error
		if password, err = random.Password(16); err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		log.WithField("email", email).Infof("generated admin password %s", password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	return database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		now := time.Now().UTC()
		h := string(hash)
		admin := user.User{
			ID:           validate.GenerateID(),
			Name:         "Admin",
			Email:        email,
			PasswordHash: &h,
			Role:         claims.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := user.Create(ctx, tx, admin); err != nil && !errors.Is(err, database.ErrDBDuplicatedEntry) {
			return fmt.Errorf("creating admin: %w", err)
		}

		for i, p := range sampleProducts() {
			p.ID = validate.GenerateID()
			p.CreatedAt = now.Add(time.Duration(i) * time.Second)
			p.UpdatedAt = p.CreatedAt
			if err := product.Create(ctx, tx, p); err != nil && !errors.Is(err, database.ErrDBDuplicatedEntry) {
				return fmt.Errorf("creating product[%s]: %w", p.Slug, err)
			}
		}

		return nil
	})
}

func sampleProducts() []product.Product {
	return []product.Product{
		{
			Name: "Polo Sporting Stretch Shirt", Slug: "polo-sporting-stretch-shirt",
			Category: "Men's Dress Shirts", Brand: "Polo",
			Description: "Classic Polo style with modern comfort",
			Images:      []string{"/images/sample-products/p1-1.jpg", "/images/sample-products/p1-2.jpg"},
			Stock:       5, Price: decimal.RequireFromString("59.99"), IsFeatured: true,
		},
		{
			Name: "Brooks Brothers Long Sleeved Shirt", Slug: "brooks-brothers-long-sleeved-shirt",
			Category: "Men's Dress Shirts", Brand: "Brooks Brothers",
			Description: "Timeless style and premium comfort",
			Images:      []string{"/images/sample-products/p2-1.jpg", "/images/sample-products/p2-2.jpg"},
			Stock:       10, Price: decimal.RequireFromString("85.90"), IsFeatured: true,
		},
		{
			Name: "Tommy Hilfiger Classic Fit Dress Shirt", Slug: "tommy-hilfiger-classic-fit-dress-shirt",
			Category: "Men's Dress Shirts", Brand: "Tommy Hilfiger",
			Description: "A perfect blend of sophistication and comfort",
			Images:      []string{"/images/sample-products/p3-1.jpg", "/images/sample-products/p3-2.jpg"},
			Stock:       0, Price: decimal.RequireFromString("99.95"),
		},
		{
			Name: "Calvin Klein Slim Fit Stretch Shirt", Slug: "calvin-klein-slim-fit-stretch-shirt",
			Category: "Men's Dress Shirts", Brand: "Calvin Klein",
			Description: "Streamlined design with flexible stretch fabric",
			Images:      []string{"/images/sample-products/p4-1.jpg", "/images/sample-products/p4-2.jpg"},
			Stock:       10, Price: decimal.RequireFromString("39.95"),
		},
	}
}
