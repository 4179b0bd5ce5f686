package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"serverrewards/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBDocumentRepository implements DocumentRepository using MongoDB.
type MongoDBDocumentRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBDocumentRepository creates a new MongoDB document repository.
func NewMongoDBDocumentRepository(uri, database, collection string) (*MongoDBDocumentRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBDocumentRepository{client: client, db: db, collection: coll}, nil
}

// mongoDocument is the stored shape. Bodies are kept as raw bytes since
// legacy documents are not guaranteed to be valid JSON.
type mongoDocument struct {
	Name      string    `bson:"name"`
	Body      []byte    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Load retrieves a document by name.
func (r *MongoDBDocumentRepository) Load(ctx context.Context, name model.DocumentName) (*model.Document, error) {
	var doc mongoDocument
	err := r.collection.FindOne(ctx, bson.M{"name": string(name)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	return &model.Document{Name: name, Body: doc.Body, UpdatedAt: doc.UpdatedAt}, nil
}

// Save inserts or replaces one document.
func (r *MongoDBDocumentRepository) Save(ctx context.Context, name model.DocumentName, body []byte) error {
	filter := bson.M{"name": string(name)}
	update := bson.M{"$set": bson.M{"body": body, "updated_at": time.Now().UTC()}}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	return nil
}

// BatchSave upserts multiple documents in one bulk write.
func (r *MongoDBDocumentRepository) BatchSave(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		updatedAt := doc.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		filter := bson.M{"name": string(doc.Name)}
		update := bson.M{"$set": bson.M{"body": doc.Body, "updated_at": updatedAt.UTC()}}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to batch save: %w", err)
	}
	return nil
}

// Exists reports whether name is stored.
func (r *MongoDBDocumentRepository) Exists(ctx context.Context, name model.DocumentName) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"name": string(name)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", name, err)
	}
	return n > 0, nil
}

// Move renames from to to. The unique index on name rejects a concurrent
// writer that creates to first.
func (r *MongoDBDocumentRepository) Move(ctx context.Context, from, to model.DocumentName) (bool, error) {
	exists, err := r.Exists(ctx, to)
	if err != nil || exists {
		return false, err
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"name": string(from)},
		bson.M{"$set": bson.M{"name": string(to), "updated_at": time.Now().UTC()}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to move document %s: %w", from, err)
	}
	return res.MatchedCount > 0, nil
}

// Names lists stored documents.
func (r *MongoDBDocumentRepository) Names(ctx context.Context) ([]model.DocumentName, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cur.Close(ctx)

	var names []model.DocumentName
	for cur.Next(ctx) {
		var doc mongoDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, model.DocumentName(doc.Name))
	}
	return names, cur.Err()
}

// GetStats returns statistics about the document collection.
func (r *MongoDBDocumentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "mongodb"}

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["total_documents"] = count

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var doc mongoDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err == nil {
		stats["last_save"] = doc.UpdatedAt
	}

	result := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		switch size := collStats["size"].(type) {
		case int64:
			stats["db_size_bytes"] = size
		case int32:
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBDocumentRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Ensure MongoDBDocumentRepository implements DocumentRepository
var _ DocumentRepository = (*MongoDBDocumentRepository)(nil)
