package indexer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stats reads $indexStats for one collection.
func (m *Manager) Stats(ctx context.Context, collection string) ([]IndexStats, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	coll := m.db.Collection(collection)
	pipeline := mongo.Pipeline{
		{{Key: "$indexStats", Value: bson.D{}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get index stats")
	}
	defer cursor.Close(ctx)

	var rawStats []bson.M
	if err = cursor.All(ctx, &rawStats); err != nil {
		return nil, errors.Wrap(err, "failed to decode stats")
	}

	stats := make([]IndexStats, 0, len(rawStats))
	for _, raw := range rawStats {
		stats = append(stats, parseIndexStats(raw))
	}

	return stats, nil
}

func parseIndexStats(raw bson.M) IndexStats {
	stat := IndexStats{}

	if name, ok := raw["name"].(string); ok {
		stat.Name = name
	}

	if accesses, ok := raw["accesses"].(bson.M); ok {
		switch ops := accesses["ops"].(type) {
		case int64:
			stat.Accesses = ops
		case int32:
			stat.Accesses = int64(ops)
		}

		switch since := accesses["since"].(type) {
		case primitive.DateTime:
			stat.Since = since.Time().UTC()
		case time.Time:
			stat.Since = since.UTC()
		}
	}

	if host, ok := raw["host"].(string); ok {
		stat.Host = host
	}

	if building, ok := raw["building"].(bool); ok {
		stat.Building = building
	}

	return stat
}

// StatsAll reads the stats of every registered collection.
func (m *Manager) StatsAll(ctx context.Context) (map[string][]IndexStats, error) {
	results := make(map[string][]IndexStats)
	for _, collName := range m.collections() {
		stats, err := m.Stats(ctx, collName)
		if err != nil {
			if m.options.ContinueOnError {
				results[collName] = []IndexStats{}
				continue
			}
			return nil, errors.Wrapf(err, "failed to get stats for %s", collName)
		}
		results[collName] = stats
	}

	return results, nil
}
