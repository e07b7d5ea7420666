package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
)

// ResetDB drops the back-office database - USE WITH CAUTION
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	dbName := databaseName(config)
	logger.Infof("DANGER: this will drop the %s database", dbName)
	logger.Infof("This action cannot be undone")

	client, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Dropping database", "database", dbName)
	result := client.Database(dbName).RunCommand(ctx, bson.D{{Key: "dropDatabase", Value: 1}})
	if err := result.Err(); err != nil {
		return fmt.Errorf("drop database %s: %w", dbName, err)
	}

	logger.Info("Database dropped", "database", dbName)
	return nil
}
