// Package main seeds a database with demo customers, suppliers and stocked
// products.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"tidewater/internal/bootstrap"
	"tidewater/internal/config"
	"tidewater/internal/domain/auth"
	"tidewater/internal/domain/catalog"
	"tidewater/pkg/logger"
)

type productSeed struct {
	name     string
	category string
	unit     string
	price    string
	stock    string
	reorder  string
}

var products = []productSeed{
	{"Atlantic Salmon Fillet", "fish", "kg", "24.50", "120.00", "20.00"},
	{"Yellowfin Tuna Loin", "fish", "kg", "38.00", "45.00", "10.00"},
	{"Pacific Oysters", "shellfish", "dozen", "18.00", "60.00", "15.00"},
	{"Tiger Prawns", "shellfish", "kg", "29.90", "80.00", "20.00"},
	{"Blue Mussels", "shellfish", "kg", "7.50", "200.00", "40.00"},
	{"Squid Tubes", "cephalopod", "kg", "12.40", "8.00", "10.00"},
}

func main() {
	token := flag.Bool("token", false, "print a manager access token (requires JWT_SECRET)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logger("tidewater-seed"))
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)

	rt, err := bootstrap.Open(ctx, cfg, "tidewater-seed")
	if err != nil {
		log.Fatalw("startup failed", "error", err)
	}
	defer rt.Close()

	svc := rt.Services.Catalog

	for _, c := range []catalog.Customer{
		{Name: "Harbour Bistro", Address: "12 Quay Street", Phone: "+1 555 0101", Email: "orders@harbourbistro.example"},
		{Name: "Saltwater Market", Address: "88 Dock Road", Phone: "+1 555 0142"},
	} {
		if err := svc.CreateCustomer(ctx, &c); err != nil {
			log.Fatalw("seed customer", "name", c.Name, "error", err)
		}
		log.Infow("customer created", "id", c.ID, "name", c.Name)
	}

	sup := catalog.Supplier{Name: "North Sea Fisheries", Contact: "Dispatch desk", Phone: "+1 555 0199"}
	if err := svc.CreateSupplier(ctx, &sup); err != nil {
		log.Fatalw("seed supplier", "error", err)
	}
	log.Infow("supplier created", "id", sup.ID, "name", sup.Name)

	for _, p := range products {
		reorder := decimal.RequireFromString(p.reorder)
		created, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			Product: catalog.Product{
				Name:      p.name,
				Category:  p.category,
				Unit:      p.unit,
				BasePrice: decimal.RequireFromString(p.price),
			},
			InitialStock: decimal.RequireFromString(p.stock),
			ReorderPoint: &reorder,
		})
		if err != nil {
			log.Fatalw("seed product", "name", p.name, "error", err)
		}
		log.Infow("product created", "id", created.ID, "name", created.Name, "stock", p.stock)
	}

	if *token {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required to issue a token")
		}
		jwt := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
		access, expires, err := jwt.GenerateAccessToken("seed-manager", "Seed Manager", []string{auth.RoleManager, auth.RoleStaff})
		if err != nil {
			log.Fatalw("issue token", "error", err)
		}
		fmt.Printf("manager token (expires %s):\n%s\n", expires.Format("2006-01-02 15:04"), access)
	}

	log.Info("seed complete")
}
