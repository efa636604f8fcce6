package execlog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	defaultCollection = "ai_execution_logs"
	defaultTimeout    = 5 * time.Second
)

// MongoOptions configures the Mongo-backed logger.
type MongoOptions struct {
	Client     *mongo.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoLogger implements Logger on a MongoDB collection.
type MongoLogger struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

var _ Logger = (*MongoLogger)(nil)

// NewMongoLogger builds a Mongo-backed execution logger.
func NewMongoLogger(opts MongoOptions) (*MongoLogger, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	collection := opts.Collection
	if collection == "" {
		collection = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &MongoLogger{
		client:  opts.Client,
		coll:    opts.Client.Database(opts.Database).Collection(collection),
		timeout: timeout,
	}, nil
}

// Dial connects to MongoDB and returns a Mongo-backed logger. When the server
// is unreachable it returns a Nop logger instead of an error so the research
// service starts without its side-channel.
func Dial(ctx context.Context, url, database string) Logger {
	client, err := mongo.Connect(options.Client().
		ApplyURI(url).
		SetServerSelectionTimeout(defaultTimeout).
		SetConnectTimeout(defaultTimeout))
	if err != nil {
		log.Printf("WARN: mongodb connection failed: %v, execution logs will be skipped", err)
		return Nop{}
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Printf("WARN: mongodb ping failed: %v, execution logs will be skipped", err)
		_ = client.Disconnect(ctx)
		return Nop{}
	}

	logger, err := NewMongoLogger(MongoOptions{Client: client, Database: database})
	if err != nil {
		log.Printf("WARN: mongodb logger init failed: %v, execution logs will be skipped", err)
		_ = client.Disconnect(ctx)
		return Nop{}
	}
	log.Println("MongoDB execution log connected")
	return logger
}

// LogExecution appends an entry and returns the inserted document id.
func (m *MongoLogger) LogExecution(ctx context.Context, entry *Entry) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	res, err := m.coll.InsertOne(opCtx, entry)
	if err != nil {
		return "", fmt.Errorf("failed to insert execution log: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// GetExecution returns the logged entry for a request, or nil when absent.
func (m *MongoLogger) GetExecution(ctx context.Context, requestID string) (*Entry, error) {
	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var entry Entry
	err := m.coll.FindOne(opCtx, bson.M{"request_id": requestID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query execution log: %w", err)
	}
	return &entry, nil
}

// Close disconnects the underlying client.
func (m *MongoLogger) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
