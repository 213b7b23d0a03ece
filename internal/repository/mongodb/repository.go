package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hiraoka/zaiko/internal/domain/models"
)

// Archive defines the interface for durable audit storage.
type Archive interface {
	SaveAuditEntry(ctx context.Context, entry models.AuditEntry) error
	SaveLowStockReport(ctx context.Context, report models.LowStockReport) error
}

// MongoArchive implements the Archive interface for MongoDB.
type MongoArchive struct {
	client      *mongo.Client
	dbName      string
	auditColl   string
	reportsColl string
}

// NewMongoArchive creates a new MongoDB archive.
func NewMongoArchive(ctx context.Context, uri string, dbName string) (*MongoArchive, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoArchive{
		client:      client,
		dbName:      dbName,
		auditColl:   "audit_entries",
		reportsColl: "low_stock_reports",
	}, nil
}

// SaveAuditEntry persists one adjustment audit entry.
func (r *MongoArchive) SaveAuditEntry(ctx context.Context, entry models.AuditEntry) error {
	collection := r.client.Database(r.dbName).Collection(r.auditColl)
	if _, err := collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// SaveLowStockReport persists one scheduled low-stock sweep result.
func (r *MongoArchive) SaveLowStockReport(ctx context.Context, report models.LowStockReport) error {
	collection := r.client.Database(r.dbName).Collection(r.reportsColl)
	if _, err := collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert low stock report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoArchive) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
