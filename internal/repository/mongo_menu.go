package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tastegent/tastegent/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMenuRepository struct {
	collection *mongo.Collection
}

func NewMongoMenuRepository(db *mongo.Database) *MongoMenuRepository {
	coll := db.Collection("menu_items")

	// Create Index
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mod := mongo.IndexModel{
		Keys:    bson.M{"name": 1},
		Options: options.Index().SetUnique(true),
	}
	coll.Indexes().CreateOne(ctx, mod)

	return &MongoMenuRepository{
		collection: coll,
	}
}

// menuItemDoc mirrors domain.MenuItem for storage. Prices round-trip through
// Decimal128 so they stay exact in Mongo.
type menuItemDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Tags        []string             `bson:"tags"`
	ImageURL    string               `bson:"image_url,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func toMenuItemDoc(item *domain.MenuItem) (*menuItemDoc, error) {
	price, err := primitive.ParseDecimal128(item.Price.String())
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", item.Price.String(), err)
	}
	doc := &menuItemDoc{
		Name:        item.Name,
		Description: item.Description,
		Price:       price,
		Tags:        item.Tags,
		ImageURL:    item.ImageURL,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.ID != "" {
		oid, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d *menuItemDoc) toDomain() (*domain.MenuItem, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("stored price %q not decimal: %w", d.Price.String(), err)
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.MenuItem{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Tags:        tags,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (r *MongoMenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	doc, err := toMenuItemDoc(item)
	if err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateMenuItem
		}
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *MongoMenuRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var doc menuItemDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMenuItemNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *MongoMenuRepository) List(ctx context.Context) ([]*domain.MenuItem, error) {
	// Stable ordering: oldest entries first, matching insertion order.
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*domain.MenuItem{}
	for cursor.Next(ctx) {
		var doc menuItemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoMenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	item.UpdatedAt = time.Now()

	price, err := primitive.ParseDecimal128(item.Price.String())
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", item.Price.String(), err)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        item.Name,
			"description": item.Description,
			"price":       price,
			"tags":        item.Tags,
			"image_url":   item.ImageURL,
			"updated_at":  item.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateMenuItem
		}
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

// UpdateImageURL sets only the image field. This deliberately bypasses the
// general update path so a stale full-entry payload can never clobber an
// image, and vice versa.
func (r *MongoMenuRepository) UpdateImageURL(ctx context.Context, id string, imageURL string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"image_url":  imageURL,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

func (r *MongoMenuRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}
