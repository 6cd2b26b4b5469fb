package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"citystore-api-io/api/config"
	"citystore-api-io/api/pkg/indexer"
	"citystore-api-io/api/pkg/util"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	app := &cli.App{
		Name:  "idxr",
		Usage: "manage CityStore MongoDB indexes and data migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Value: "mongodb://localhost:27017", EnvVars: []string{"CITYSTORE_MONGO_URI", "DATABASE_URL"}, Usage: "MongoDB URI"},
			&cli.StringFlag{Name: "db", Value: "citystore", EnvVars: []string{"CITYSTORE_MONGO_DATABASE", "DB_NAME"}, Usage: "database name"},
			&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "operation timeout"},
			&cli.BoolFlag{Name: "continue-on-error", Value: true},
			&cli.BoolFlag{Name: "skip-if-exists", Value: true},
			&cli.BoolFlag{Name: "json", Usage: "output in JSON format"},
		},
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			return util.ConfigureLogging("info", "text")
		},
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "create the catalog and order indexes",
				Action: withManager(createAction),
			},
			{
				Name:      "drop",
				Usage:     "drop all indexes of the given collections, or of every managed collection",
				ArgsUsage: "[collection...]",
				Action:    withManager(dropAction),
			},
			{
				Name:   "list",
				Usage:  "list the indexes of one collection",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "collection", Required: true}},
				Action: withManager(listAction),
			},
			{
				Name:   "stats",
				Usage:  "show index usage",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "collection"}},
				Action: withManager(statsAction),
			},
			{
				Name:  "migrate",
				Usage: "apply pending data migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "rollback-to", Usage: "undo migrations newer than this version"},
					&cli.BoolFlag{Name: "status", Usage: "only print the applied migrations"},
				},
				Action: withManager(migrateAction),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("idxr failed")
	}
}

type action func(c *cli.Context, db *mongo.Database, manager *indexer.Manager) error

// withManager connects to MongoDB and loads the catalog index definitions.
func withManager(run action) cli.ActionFunc {
	return func(c *cli.Context) error {
		client, err := config.ConnectMongo(c.Context, c.String("uri"))
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				util.LogError("Failed to disconnect", err)
			}
		}()

		db := client.Database(c.String("db"))
		manager := indexer.NewManager(db, &indexer.Options{
			Timeout:         c.Duration("timeout"),
			ContinueOnError: c.Bool("continue-on-error"),
			SkipIfExists:    c.Bool("skip-if-exists"),
		}).LoadFromDefinitions(indexer.CatalogIndexes())

		return run(c, db, manager)
	}
}

func createAction(c *cli.Context, db *mongo.Database, manager *indexer.Manager) error {
	out := c.App.Writer
	if !c.Bool("json") {
		fmt.Fprintf(out, "Creating indexes in database: %s\n", db.Name())
	}

	result, err := manager.Create(c.Context)
	if c.Bool("json") {
		return outputJSON(out, map[string]any{
			"success": err == nil,
			"result":  result,
			"error":   errorString(err),
		})
	}

	fmt.Fprintf(out, "\nResults:\n")
	fmt.Fprintf(out, "  Created: %d\n", result.SuccessCount)
	fmt.Fprintf(out, "  Skipped: %d\n", result.SkippedCount)
	fmt.Fprintf(out, "  Failed: %d\n", result.FailedCount)
	fmt.Fprintf(out, "  Duration: %v\n", result.Duration)

	if len(result.Failures) > 0 {
		fmt.Fprintf(out, "\nFailures:\n")
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  - %s.%s: %s\n", f.Collection, f.IndexName, f.Error)
		}
	}
	return err
}

func dropAction(c *cli.Context, db *mongo.Database, manager *indexer.Manager) error {
	collections := c.Args().Slice()
	err := manager.Drop(c.Context, collections...)
	if c.Bool("json") {
		return outputJSON(c.App.Writer, map[string]any{
			"success": err == nil,
			"error":   errorString(err),
		})
	}
	if err != nil {
		return errors.Wrap(err, "failed to drop indexes")
	}

	fmt.Fprintf(c.App.Writer, "Indexes dropped in database %s\n", db.Name())
	return nil
}

func listAction(c *cli.Context, _ *mongo.Database, manager *indexer.Manager) error {
	collection := c.String("collection")
	indexes, err := manager.List(c.Context, collection)
	if err != nil {
		return errors.Wrap(err, "failed to list indexes")
	}

	if c.Bool("json") {
		return outputJSON(c.App.Writer, indexes)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Indexes for collection %s:\n", collection)
	for _, idx := range indexes {
		name, ok := idx["name"].(string)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  - %s\n", name)
		if key, ok := idx["key"]; ok {
			fmt.Fprintf(out, "    Keys: %v\n", key)
		}
		if unique, ok := idx["unique"].(bool); ok && unique {
			fmt.Fprintf(out, "    Unique: true\n")
		}
	}
	return nil
}

func statsAction(c *cli.Context, _ *mongo.Database, manager *indexer.Manager) error {
	stats := map[string][]indexer.IndexStats{}
	if collection := c.String("collection"); collection != "" {
		collStats, err := manager.Stats(c.Context, collection)
		if err != nil {
			return err
		}
		stats[collection] = collStats
	} else {
		all, err := manager.StatsAll(c.Context)
		if err != nil {
			return err
		}
		stats = all
	}

	if c.Bool("json") {
		return outputJSON(c.App.Writer, stats)
	}

	out := c.App.Writer
	for coll, collStats := range stats {
		fmt.Fprintf(out, "\n=== %s ===\n", coll)
		for _, stat := range collStats {
			fmt.Fprintf(out, "  %s:\n", stat.Name)
			fmt.Fprintf(out, "    Accesses: %d\n", stat.Accesses)
			fmt.Fprintf(out, "    Since: %v\n", stat.Since)
			if stat.Building {
				fmt.Fprintf(out, "    Status: BUILDING\n")
			}
		}
	}
	return nil
}

func migrateAction(c *cli.Context, db *mongo.Database, _ *indexer.Manager) error {
	mm := indexer.NewMigrationManager(db).AddMigration(indexer.CatalogMigrations()...)

	switch {
	case c.Bool("status"):
	case c.IsSet("rollback-to"):
		if err := mm.Rollback(c.Context, c.String("rollback-to")); err != nil {
			return err
		}
	default:
		if err := mm.Run(c.Context); err != nil {
			return err
		}
	}

	statuses, err := mm.Status(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return outputJSON(c.App.Writer, statuses)
	}
	for _, s := range statuses {
		fmt.Fprintf(c.App.Writer, "  %s  applied %s  success=%t\n", s.Version, s.AppliedAt.Format(time.RFC3339), s.Success)
	}
	return nil
}

func outputJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(data), "failed to encode JSON")
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
