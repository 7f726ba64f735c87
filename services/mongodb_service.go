package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nodepulse/config"
	"nodepulse/models"
)

type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
}

const (
	CollectionDeviceSnapshots    = "device_snapshots"
	CollectionCollectorSnapshots = "collector_snapshots"
	CollectionAlertHistory       = "alert_history"
)

func NewMongoDBService(cfg *config.Config) (*MongoDBService, error) {
	if !cfg.MongoDB.Enabled {
		log.Println("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoDB.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB.Database)

	service := &MongoDBService{
		client:  client,
		db:      db,
		enabled: true,
	}

	if err := service.createIndexes(ctx); err != nil {
		log.Warnf("Failed to create indexes: %v", err)
	}

	log.Printf("MongoDB connected successfully to database: %s", cfg.MongoDB.Database)
	return service, nil
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	if !m.enabled {
		return nil
	}

	// Device snapshots are queried per device, most recent first
	_, err := m.db.Collection(CollectionDeviceSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("device_timestamp"),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionCollectorSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionAlertHistory).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	return err
}

func (m *MongoDBService) Enabled() bool {
	return m != nil && m.enabled
}

func (m *MongoDBService) Close() {
	if !m.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		log.Warnf("MongoDB disconnect failed: %v", err)
	}
}

func (m *MongoDBService) InsertDeviceSnapshot(ctx context.Context, snapshot models.DeviceSnapshot) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionDeviceSnapshots).InsertOne(ctx, snapshot)
	return err
}

func (m *MongoDBService) InsertCollectorSnapshot(ctx context.Context, snapshot models.CollectorSnapshot) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionCollectorSnapshots).InsertOne(ctx, snapshot)
	return err
}

func (m *MongoDBService) InsertAlertEvent(ctx context.Context, event models.AlertEvent) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionAlertHistory).InsertOne(ctx, event)
	return err
}

// GetDeviceHistory returns up to limit snapshots for one device since the
// given time, newest first.
func (m *MongoDBService) GetDeviceHistory(ctx context.Context, deviceID string, since time.Time, limit int64) ([]models.DeviceSnapshot, error) {
	if !m.Enabled() {
		return nil, nil
	}

	filter := bson.M{
		"device_id": deviceID,
		"timestamp": bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.db.Collection(CollectionDeviceSnapshots).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query device history: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []models.DeviceSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode device history: %w", err)
	}
	return snapshots, nil
}

// GetRecentAlerts returns the newest alert events, newest first.
func (m *MongoDBService) GetRecentAlerts(ctx context.Context, limit int64) ([]models.AlertEvent, error) {
	if !m.Enabled() {
		return nil, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.db.Collection(CollectionAlertHistory).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.AlertEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode alert history: %w", err)
	}
	return events, nil
}
