package repository

import (
	"github.com/shopspring/decimal"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

// SeedCategories is the shop's starting category list.
func SeedCategories() []entity.Category {
	return []entity.Category{
		{ID: "cat-hair", Name: "Hair Care", Slug: "hair-care", SortOrder: 1},
		{ID: "cat-nails", Name: "Nails", Slug: "nails", SortOrder: 2},
		{ID: "cat-lashes", Name: "Lashes & Brows", Slug: "lashes-brows", SortOrder: 3},
		{ID: "cat-skin", Name: "Skin Care", Slug: "skin-care", SortOrder: 4},
		{ID: "cat-tools", Name: "Tools & Accessories", Slug: "tools-accessories", SortOrder: 5},
	}
}

// SeedProducts is the shop's starting catalog.
func SeedProducts() []entity.Product {
	const shipping = "Delivered within Nairobi in 1-2 days, countrywide in 2-4 days."
	return []entity.Product{
		{ID: "prod-001", Name: "Gel Nail Polish Set", Category: "Nails", Price: decimal.NewFromInt(850), Badge: entity.BadgeBestSeller,
			ImageURL: "/images/products/gel-polish-set.jpg", Description: "Six long-wear gel shades with base and top coat.", ShippingNote: shipping, Active: true},
		{ID: "prod-002", Name: "Argan Oil Hair Serum", Category: "Hair Care", Price: decimal.NewFromInt(1200), Badge: entity.BadgeNewIn,
			ImageURL: "/images/products/argan-serum.jpg", Description: "Lightweight serum for shine and frizz control.",
			LongDescription: "Cold-pressed argan oil blended with vitamin E. Apply to damp or dry hair, mid-lengths to ends.", ShippingNote: shipping, Active: true},
		{ID: "prod-003", Name: "Edge Control Gel", Category: "Hair Care", Price: decimal.NewFromInt(450),
			ImageURL: "/images/products/edge-control.jpg", Description: "Strong hold without flaking.", ShippingNote: shipping, Active: true},
		{ID: "prod-004", Name: "Mink Lash Kit", Category: "Lashes & Brows", Price: decimal.NewFromInt(650), Badge: entity.BadgeOnOffer,
			ImageURL: "/images/products/mink-lash-kit.jpg", Description: "Three pairs of reusable lashes with glue and applicator.", ShippingNote: shipping, Active: true},
		{ID: "prod-005", Name: "Shea Butter Body Cream", Category: "Skin Care", Price: decimal.NewFromInt(980),
			ImageURL: "/images/products/shea-cream.jpg", Description: "Rich whipped shea for dry skin.", ShippingNote: shipping, Active: true},
		{ID: "prod-006", Name: "Satin Bonnet", Category: "Tools & Accessories", Price: decimal.NewFromInt(550), Badge: entity.BadgeLimited,
			ImageURL: "/images/products/satin-bonnet.jpg", Description: "Double-layer satin to protect braids and silk presses overnight.", ShippingNote: shipping, Active: true},
		{ID: "prod-007", Name: "Braid Sheen Spray", Category: "Hair Care", Price: decimal.NewFromInt(700),
			ImageURL: "/images/products/braid-sheen.jpg", Description: "Soothes the scalp and adds shine to braids.", ShippingNote: shipping, Active: false},
	}
}
