package indexer

import (
	"context"

	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogIndexes backs the product listing filters and sorts and the order lookups.
func CatalogIndexes() []IndexDefinition {
	m := NewManager(nil)

	m.AddCompoundIndex(store.ProductCollection, []string{"slug"},
		options.Index().SetName("products_slug_unique").SetUnique(true))
	m.AddCompoundIndex(store.ProductCollection, []string{"isActive", "category", "price"},
		options.Index().SetName("products_active_category_price"))
	m.AddCompoundIndex(store.ProductCollection, []string{"isActive", "-createdAt", "_id"},
		options.Index().SetName("products_active_newest"))
	m.AddCompoundIndex(store.ProductCollection, []string{"isFeatured", "isActive"},
		options.Index().SetName("products_featured"))
	m.AddCompoundIndex(store.ProductCollection, []string{"brand"},
		options.Index().SetName("products_brand").SetCollation(&options.Collation{Locale: "en", Strength: 2}))
	m.AddCompoundIndex(store.ProductCollection, []string{"sizes.size", "sizes.stock"},
		options.Index().SetName("products_sizes"))
	m.AddCompoundIndex(store.ProductCollection, []string{"colors.color"},
		options.Index().SetName("products_colors"))
	m.AddTextIndex(store.ProductCollection, "name", "description", "tags")

	m.AddCompoundIndex(store.OrderCollection, []string{"userId", "-createdAt"},
		options.Index().SetName("orders_user_newest"))
	m.AddCompoundIndex(store.OrderCollection, []string{"-createdAt"},
		options.Index().SetName("orders_newest"))
	m.AddCompoundIndex(store.OrderCollection, []string{"status"},
		options.Index().SetName("orders_status"))

	return m.Definitions()
}

// CatalogMigrations repair product documents written before the derived
// fields were maintained on every write.
func CatalogMigrations() []Migration {
	return []Migration{
		{
			Version:     "20240101_001",
			Description: "backfill missing product slugs",
			Up:          backfillSlugs,
		},
		{
			Version:     "20240101_002",
			Description: "recompute totalStock and rating from sizes and reviews",
			Up:          recomputeDerived,
		},
		{
			Version:     "20240101_003",
			Description: "default isActive to true",
			Up: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection(store.ProductCollection).UpdateMany(ctx,
					bson.M{"isActive": bson.M{"$exists": false}},
					bson.M{"$set": bson.M{"isActive": true}})
				return errors.Wrap(err, "default isActive")
			},
			Down: func(context.Context, *mongo.Database) error {
				return nil
			},
		},
	}
}

func backfillSlugs(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(store.ProductCollection)
	filter := bson.M{"$or": bson.A{
		bson.M{"slug": bson.M{"$exists": false}},
		bson.M{"slug": ""},
	}}

	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return errors.Wrap(err, "find products without slug")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			Id   string `bson:"_id"`
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return errors.Wrap(err, "decode product")
		}
		productSlug := slug.Make(doc.Name)
		taken, err := coll.CountDocuments(ctx, bson.M{"slug": productSlug, "_id": bson.M{"$ne": doc.Id}})
		if err != nil {
			return errors.Wrapf(err, "check slug of %s", doc.Id)
		}
		if taken > 0 {
			productSlug = models.SuffixedSlug(productSlug, doc.Id)
		}
		if _, err := coll.UpdateByID(ctx, doc.Id, bson.M{"$set": bson.M{"slug": productSlug}}); err != nil {
			return errors.Wrapf(err, "set slug of %s", doc.Id)
		}
	}
	return cursor.Err()
}

func recomputeDerived(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(store.ProductCollection)
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	var writes []mongo.WriteModel
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return errors.Wrap(err, "decode product")
		}
		p.RecomputeDerived()
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.Id}).
			SetUpdate(bson.M{"$set": bson.M{"totalStock": p.TotalStock, "rating": p.Rating}}))
	}
	if err := cursor.Err(); err != nil {
		return errors.Wrap(err, "iterate products")
	}

	if len(writes) == 0 {
		return nil
	}
	_, err = coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return errors.Wrap(err, "update derived fields")
}
