package indexer

import (
	"context"
	"time"

	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create builds every registered index. With ContinueOnError the failures are
// collected in the result and reported together.
func (m *Manager) Create(ctx context.Context) (*Result, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result := &Result{
		Failures: []FailureDetail{},
	}

	for _, def := range m.indexes {
		name := def.Name()
		log := util.LogFields(logrus.Fields{"collection": def.Collection, "index": name})

		if m.options.SkipIfExists && name != "" {
			exists, err := m.indexExists(ctx, def.Collection, name)
			if err == nil && exists {
				log.Info("index already exists, skipping")
				result.SkippedCount++
				continue
			}
		}

		collection := m.db.Collection(def.Collection)
		created, err := collection.Indexes().CreateOne(ctx, def.Index)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				log.Warn("cannot create unique index due to duplicate data")
			} else {
				log.WithError(err).Error("failed to create index")
			}

			result.FailedCount++
			result.Failures = append(result.Failures, FailureDetail{
				Collection: def.Collection,
				IndexName:  name,
				Error:      err.Error(),
			})

			if !m.options.ContinueOnError {
				result.Duration = time.Since(start)
				return result, errors.Wrapf(err, "create index %s on %s", name, def.Collection)
			}
			continue
		}

		log.WithField("created", created).Info("created index")
		result.SuccessCount++
	}

	result.Duration = time.Since(start)

	if result.FailedCount > 0 {
		return result, errors.Errorf("%d indexes failed to create", result.FailedCount)
	}

	return result, nil
}

// Drop removes all indexes of the given collections, or of every registered
// collection when none are named.
func (m *Manager) Drop(ctx context.Context, collections ...string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	targetCollections := collections
	if len(targetCollections) == 0 {
		targetCollections = m.collections()
	}

	for _, collName := range targetCollections {
		collection := m.db.Collection(collName)
		if _, err := collection.Indexes().DropAll(ctx); err != nil {
			if !m.options.ContinueOnError {
				return errors.Wrapf(err, "failed to drop indexes for %s", collName)
			}
			util.LogError("Failed to drop indexes for "+collName, err)
		} else {
			util.LogInfo("Dropped all indexes for collection " + collName)
		}
	}

	return nil
}

func (m *Manager) List(ctx context.Context, collection string) ([]bson.M, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	coll := m.db.Collection(collection)
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes of %s", collection)
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err = cursor.All(ctx, &indexes); err != nil {
		return nil, errors.Wrapf(err, "decode indexes of %s", collection)
	}

	return indexes, nil
}

func (m *Manager) indexExists(ctx context.Context, collection, indexName string) (bool, error) {
	indexes, err := m.List(ctx, collection)
	if err != nil {
		return false, err
	}

	for _, idx := range indexes {
		if name, ok := idx["name"].(string); ok && name == indexName {
			return true, nil
		}
	}

	return false, nil
}

// collections lists the registered collections in registration order.
func (m *Manager) collections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, def := range m.indexes {
		if !seen[def.Collection] {
			seen[def.Collection] = true
			out = append(out, def.Collection)
		}
	}
	return out
}
