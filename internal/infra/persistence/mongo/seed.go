package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SeedProduct struct {
	ID    string
	Name  string
	Image string
}

type SeedOrder struct {
	ID              string
	FullName        string
	Email           string
	Phone           string
	Address         string
	City            string
	ZipCode         string
	TotalPrice      float64
	DiscountedPrice float64
	OrderDate       string
	Status          string
	ProductIDs      []string
}

// Seed upserts products and orders by id, so it can be re-run.
func Seed(ctx context.Context, db *mongo.Database, products []SeedProduct, orders []SeedOrder) error {
	upsert := options.Replace().SetUpsert(true)

	pc := db.Collection(ProductsCollection)
	for _, p := range products {
		doc := bson.D{
			{Key: "_id", Value: p.ID},
			{Key: "name", Value: p.Name},
			{Key: "image", Value: p.Image},
		}
		if _, err := pc.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, doc, upsert); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	oc := db.Collection(OrdersCollection)
	for _, o := range orders {
		items := make(bson.A, 0, len(o.ProductIDs))
		for _, pid := range o.ProductIDs {
			items = append(items, bson.D{
				{Key: "product", Value: bson.D{{Key: "_ref", Value: pid}}},
				{Key: "quantity", Value: 1},
			})
		}
		doc := bson.D{
			{Key: "_id", Value: o.ID},
			{Key: "fullName", Value: o.FullName},
			{Key: "email", Value: o.Email},
			{Key: "phone", Value: o.Phone},
			{Key: "address", Value: o.Address},
			{Key: "city", Value: o.City},
			{Key: "zipCode", Value: o.ZipCode},
			{Key: "totalPrice", Value: o.TotalPrice},
			{Key: "discountedPrice", Value: o.DiscountedPrice},
			{Key: "orderDate", Value: o.OrderDate},
			{Key: "orderStatus", Value: o.Status},
			{Key: "cartItems", Value: items},
		}
		if _, err := oc.ReplaceOne(ctx, bson.D{{Key: "_id", Value: o.ID}}, doc, upsert); err != nil {
			return fmt.Errorf("seed order %s: %w", o.ID, err)
		}
	}
	return nil
}
