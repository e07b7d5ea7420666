package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearSelections removes stored child selections. With a user id only that
// parent's selection goes.
func ClearSelections(ctx context.Context, config *aqm.Config, logger aqm.Logger, userID string) (int64, error) {
	client, err := connect(ctx, config, logger)
	if err != nil {
		return 0, err
	}
	defer client.Disconnect(ctx)

	coll := client.Database(databaseName(config)).Collection(selectionCollection)
	result, err := coll.DeleteMany(ctx, selectionFilter(userID))
	if err != nil {
		return 0, fmt.Errorf("delete selections: %w", err)
	}

	logger.Info("Deleted child selections", "count", result.DeletedCount, "user_id", userID)
	return result.DeletedCount, nil
}

func selectionFilter(userID string) bson.M {
	if userID == "" {
		return bson.M{}
	}
	return bson.M{"user_id": userID}
}
