package repository

import (
	"context"
	"time"

	"github.com/TechbroSam/jogiloran/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByUserEmail(ctx context.Context, email string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByProviderSessionID(ctx context.Context, provider, sessionID string) (*models.Order, error)
	MarkShipped(ctx context.Context, id primitive.ObjectID) (*models.Order, bool, error)
}

// MongoOrderRepository implements OrderRepository on the orders collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

// EnsureIndexes creates the unique index backing confirmation idempotency.
// The index is sparse so legacy orders without a session id are unaffected.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "provider", Value: 1},
			{Key: "provider_session_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	return err
}

// Create inserts a new order and fills in its generated id and timestamps.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, order)
	return err
}

// FindByUserEmail returns the user's orders, newest first.
func (r *MongoOrderRepository) FindByUserEmail(ctx context.Context, email string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll returns every order, newest first.
func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByProviderSessionID looks up an order by the payment provider's
// session/transaction id.
func (r *MongoOrderRepository) FindByProviderSessionID(ctx context.Context, provider, sessionID string) (*models.Order, error) {
	var order models.Order
	filter := bson.M{"provider": provider, "provider_session_id": sessionID}
	if err := r.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkShipped flips is_shipped to true. The returned bool reports whether
// this call performed the transition; a second call on the same order finds
// it already shipped and reports false without modifying anything.
func (r *MongoOrderRepository) MarkShipped(ctx context.Context, id primitive.ObjectID) (*models.Order, bool, error) {
	update := bson.M{"$set": bson.M{"is_shipped": true, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "is_shipped": false}, update, opts).Decode(&order)
	if err == nil {
		return &order, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	// Either the order doesn't exist or it is already shipped.
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
