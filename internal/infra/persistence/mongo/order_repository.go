package mongo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	domorder "example.com/orderdesk/internal/domain/order"
)

type OrderRepository struct {
	orders   *mongo.Collection
	products string
}

var _ domorder.Repository = (*OrderRepository)(nil)

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		orders:   db.Collection(OrdersCollection),
		products: ProductsCollection,
	}
}

type reference struct {
	Ref string `bson:"_ref"`
}

type cartItemDoc struct {
	Product  reference `bson:"product"`
	Quantity int       `bson:"quantity,omitempty"`
}

type productDoc struct {
	ID    interface{} `bson:"_id"`
	Name  string      `bson:"name"`
	Image string      `bson:"image"`
}

type orderDoc struct {
	ID              interface{}   `bson:"_id"`
	FullName        string        `bson:"fullName"`
	Email           string        `bson:"email"`
	Phone           string        `bson:"phone"`
	Address         string        `bson:"address"`
	City            string        `bson:"city"`
	ZipCode         string        `bson:"zipCode"`
	TotalPrice      float64       `bson:"totalPrice"`
	DiscountedPrice float64       `bson:"discountedPrice"`
	OrderDate       string        `bson:"orderDate"`
	OrderStatus     string        `bson:"orderStatus"`
	CartItems       []cartItemDoc `bson:"cartItems"`
	Products        []productDoc  `bson:"products"`
}

func (r *OrderRepository) pipeline(match bson.D) mongo.Pipeline {
	p := mongo.Pipeline{}
	if match != nil {
		p = append(p, bson.D{{Key: "$match", Value: match}})
	}
	return append(p,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "orderDate", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: r.products},
			{Key: "localField", Value: "cartItems.product._ref"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "products"},
		}}},
	)
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	cur, err := r.orders.Aggregate(ctx, r.pipeline(nil))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]*domorder.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, docs[i].toDomain())
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	cur, err := r.orders.Aggregate(ctx, r.pipeline(idFilter(id)))
	if err != nil {
		return nil, fmt.Errorf("aggregate order %s: %w", id, err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, domorder.ErrOrderNotFound
	}
	var doc orderDoc
	if err := cur.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	res, err := r.orders.UpdateOne(ctx, idFilter(id), bson.D{
		{Key: "$set", Value: bson.D{{Key: "orderStatus", Value: string(status)}}},
	})
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.orders.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domorder.ErrOrderNotFound
	}
	return nil
}

// idFilter matches string ids and, when id is a valid hex ObjectID, the
// ObjectID form too.
func idFilter(id string) bson.D {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{id, oid}}}}}
	}
	return bson.D{{Key: "_id", Value: id}}
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func (d *orderDoc) toDomain() *domorder.Order {
	byID := make(map[string]productDoc, len(d.Products))
	for _, p := range d.Products {
		byID[idString(p.ID)] = p
	}

	items := make([]domorder.CartItem, 0, len(d.CartItems))
	for _, ci := range d.CartItems {
		p := byID[ci.Product.Ref]
		items = append(items, domorder.CartItem{
			ProductName: p.Name,
			Image:       p.Image,
		})
	}

	return &domorder.Order{
		ID:              idString(d.ID),
		FullName:        d.FullName,
		Email:           d.Email,
		Phone:           d.Phone,
		Address:         d.Address,
		City:            d.City,
		ZipCode:         d.ZipCode,
		TotalPrice:      decimal.NewFromFloat(d.TotalPrice),
		DiscountedPrice: decimal.NewFromFloat(d.DiscountedPrice),
		OrderDate:       d.OrderDate,
		Status:          domorder.Status(d.OrderStatus),
		CartItems:       items,
	}
}
