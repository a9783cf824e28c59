// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect mở kết nối MongoDB và ping để chắc chắn server sẵn sàng.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client.Database(dbName), nil
}

// EnsureIndexes tạo các index mà nghiệp vụ kho dựa vào: mã duy nhất cho
// linh kiện, submission, group và user; báo giá duy nhất theo cặp
// submission + linh kiện; số thứ tự sổ cái để truy vấn mới nhất trước.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{"pieces", []mongo.IndexModel{
			{Keys: bson.D{{Key: "pieceRef", Value: 1}}, Options: unique},
		}},
		{"users", []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{"submissions", []mongo.IndexModel{
			{Keys: bson.D{{Key: "submissionRef", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "sentAt", Value: -1}}},
		}},
		{"price_quotes", []mongo.IndexModel{
			// Mỗi cặp submission + linh kiện chỉ có một báo giá.
			{Keys: bson.D{{Key: "submissionRef", Value: 1}, {Key: "pieceRef", Value: 1}}, Options: unique},
		}},
		{"groups", []mongo.IndexModel{
			{Keys: bson.D{{Key: "groupRef", Value: 1}}, Options: unique},
		}},
		{"movements", []mongo.IndexModel{
			{Keys: bson.D{{Key: "seq", Value: -1}}},
			{Keys: bson.D{{Key: "pieceRef", Value: 1}, {Key: "seq", Value: -1}}},
		}},
	}

	for _, ix := range indexes {
		if _, err := db.Collection(ix.collection).Indexes().CreateMany(ctx, ix.models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", ix.collection, err)
		}
	}

	return nil
}
