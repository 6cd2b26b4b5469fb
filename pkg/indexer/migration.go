package indexer

import (
	"context"
	"sort"
	"time"

	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationCollection = "_index_migrations"

const migrationTimeout = 5 * time.Minute

type MigrationManager struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrationManager(db *mongo.Database) *MigrationManager {
	return &MigrationManager{
		db:         db,
		migrations: []Migration{},
	}
}

func (mm *MigrationManager) AddMigration(migrations ...Migration) *MigrationManager {
	mm.migrations = append(mm.migrations, migrations...)
	return mm
}

// sorted returns a copy of the migrations ordered by version.
func (mm *MigrationManager) sorted(desc bool) []Migration {
	out := make([]Migration, len(mm.migrations))
	copy(out, mm.migrations)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Version > out[j].Version
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Run applies every migration not yet recorded as successful, in version order.
// It stops at the first failure.
func (mm *MigrationManager) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	coll := mm.db.Collection(migrationCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create migration index")
	}

	for _, migration := range mm.sorted(false) {
		log := util.LogFields(logrus.Fields{"version": migration.Version})

		applied, err := mm.isApplied(ctx, migration.Version)
		if err != nil {
			return errors.Wrapf(err, "failed to check migration status for %s", migration.Version)
		}

		if applied {
			log.Info("migration already applied, skipping")
			continue
		}

		log.WithField("description", migration.Description).Info("running migration")

		start := time.Now()
		err = migration.Up(ctx, mm.db)
		duration := time.Since(start)

		status := MigrationStatus{
			Version:   migration.Version,
			AppliedAt: time.Now().UTC(),
			Success:   err == nil,
		}

		// Failed attempts replace any earlier record so the version stays unique.
		upsert := options.Replace().SetUpsert(true)
		if _, saveErr := coll.ReplaceOne(ctx, bson.M{"version": migration.Version}, status, upsert); saveErr != nil {
			if err == nil {
				return errors.Wrap(saveErr, "failed to save migration status")
			}
			util.LogError("Failed to save migration status", saveErr)
		}

		if err != nil {
			log.WithError(err).WithField("duration", duration.String()).Error("migration failed")
			return errors.Wrapf(err, "migration %s failed", migration.Version)
		}

		log.WithField("duration", duration.String()).Info("migration completed")
	}

	return nil
}

// Rollback undoes applied migrations newer than targetVersion, newest first.
func (mm *MigrationManager) Rollback(ctx context.Context, targetVersion string) error {
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	coll := mm.db.Collection(migrationCollection)

	for _, migration := range mm.sorted(true) {
		if migration.Version <= targetVersion {
			break
		}

		applied, err := mm.isApplied(ctx, migration.Version)
		if err != nil {
			return errors.Wrapf(err, "failed to check migration status for %s", migration.Version)
		}

		if !applied {
			continue
		}

		if migration.Down == nil {
			return errors.Errorf("migration %s does not support rollback", migration.Version)
		}

		util.LogInfo("Rolling back migration " + migration.Version)

		if err := migration.Down(ctx, mm.db); err != nil {
			return errors.Wrapf(err, "rollback of migration %s failed", migration.Version)
		}

		if _, err := coll.DeleteOne(ctx, bson.M{"version": migration.Version}); err != nil {
			return errors.Wrap(err, "failed to remove migration status")
		}

		util.LogInfo("Successfully rolled back migration " + migration.Version)
	}

	return nil
}

func (mm *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	coll := mm.db.Collection(migrationCollection)
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query migration status")
	}
	defer cursor.Close(ctx)

	var statuses []MigrationStatus
	if err = cursor.All(ctx, &statuses); err != nil {
		return nil, errors.Wrap(err, "failed to decode migration statuses")
	}

	return statuses, nil
}

func (mm *MigrationManager) isApplied(ctx context.Context, version string) (bool, error) {
	coll := mm.db.Collection(migrationCollection)
	count, err := coll.CountDocuments(ctx, bson.M{"version": version, "success": true})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
