package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/services/backoffice/internal/backoffice"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const selectionsCollection = "child_selections"

var errNotStarted = errors.New("selection repo not started")

// SelectionRepo stores each parent's selected child, one document per user.
type SelectionRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     aqm.Logger
	config     *aqm.Config
}

func NewSelectionRepo(config *aqm.Config, logger aqm.Logger) *SelectionRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &SelectionRepo{
		logger: logger,
		config: config,
	}
}

func (r *SelectionRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "edumeal_backoffice"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.collection = client.Database(dbName).Collection(selectionsCollection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create user_id index: %w", err)
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s, collection: %s", mongoURL, dbName, selectionsCollection)
	return nil
}

func (r *SelectionRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *SelectionRepo) Load(ctx context.Context, userID string) (*backoffice.ChildSelection, error) {
	if r.collection == nil {
		return nil, errNotStarted
	}

	var sel backoffice.ChildSelection
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&sel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, backoffice.ErrSelectionNotFound
		}
		return nil, fmt.Errorf("cannot find selection: %w", err)
	}
	return &sel, nil
}

// Save replaces the user's selection.
func (r *SelectionRepo) Save(ctx context.Context, sel *backoffice.ChildSelection) error {
	if r.collection == nil {
		return errNotStarted
	}
	if sel == nil || sel.UserID == "" {
		return errors.New("selection must name a user")
	}
	if sel.SelectedAt.IsZero() {
		sel.SelectedAt = time.Now().UTC()
	}

	filter := bson.M{"user_id": sel.UserID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, sel, opts); err != nil {
		return fmt.Errorf("cannot save selection: %w", err)
	}
	return nil
}

func (r *SelectionRepo) Clear(ctx context.Context, userID string) error {
	if r.collection == nil {
		return errNotStarted
	}
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("cannot clear selection: %w", err)
	}
	return nil
}

var _ backoffice.SelectionRepo = (*SelectionRepo)(nil)
