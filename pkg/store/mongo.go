package store

import (
	"context"
	"regexp"

	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductCollection = "products"
	OrderCollection   = "orders"
)

type MongoProductStore struct {
	coll *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{coll: db.Collection(ProductCollection)}
}

func insensitive(pattern string) primitive.Regex {
	return primitive.Regex{Pattern: pattern, Options: "i"}
}

// BuildFilter translates the catalog filters into a query document.
func BuildFilter(q catalog.Query) bson.M {
	filter := bson.M{}

	if q.Search != "" {
		term := insensitive(regexp.QuoteMeta(q.Search))
		filter["$or"] = bson.A{
			bson.M{"name": term},
			bson.M{"description": term},
			bson.M{"tags": term},
		}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Brand != "" {
		filter["brand"] = insensitive("^" + regexp.QuoteMeta(q.Brand) + "$")
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.Size != "" {
		filter["sizes"] = bson.M{"$elemMatch": bson.M{"size": q.Size, "stock": bson.M{"$gt": 0}}}
	}
	if q.Color != "" {
		filter["colors"] = bson.M{"$elemMatch": bson.M{"color": insensitive(regexp.QuoteMeta(q.Color))}}
	}

	return filter
}

// BuildSort returns the sort document and, for name, an English collation.
// createdAt then _id stand in for insertion order on ties.
func BuildSort(key catalog.SortKey) (bson.D, *options.Collation) {
	insertion := bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

	var primary bson.E
	var collation *options.Collation
	switch key {
	case catalog.SortPriceLow:
		primary = bson.E{Key: "price", Value: 1}
	case catalog.SortPriceHigh:
		primary = bson.E{Key: "price", Value: -1}
	case catalog.SortRating:
		primary = bson.E{Key: "rating.average", Value: -1}
	case catalog.SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, nil
	case catalog.SortName:
		primary = bson.E{Key: "name", Value: 1}
		collation = &options.Collation{Locale: "en"}
	default:
		return insertion, nil
	}

	return append(bson.D{primary}, insertion...), collation
}

func (s *MongoProductStore) Query(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	q = q.Normalize()
	filter := BuildFilter(q)
	sortDoc, collation := BuildSort(q.Sort)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return catalog.Page{}, errors.Wrap(err, "count products")
	}

	opts := options.Find().
		SetSort(sortDoc).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	if collation != nil {
		opts.SetCollation(collation)
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return catalog.Page{}, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	items := make([]models.Product, 0, q.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return catalog.Page{}, errors.Wrap(err, "decode products")
	}

	return catalog.Page{
		Items: items,
		Count: len(items),
		Total: int(total),
		Page:  q.Page,
		Pages: catalog.PageCount(int(total), q.Limit),
	}, nil
}

func (s *MongoProductStore) Featured(ctx context.Context) ([]models.Product, error) {
	sortDoc, _ := BuildSort("")
	cursor, err := s.coll.Find(ctx, bson.M{"isFeatured": true, "isActive": true}, options.Find().SetSort(sortDoc))
	if err != nil {
		return nil, errors.Wrap(err, "find featured products")
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode featured products")
	}
	return products, nil
}

func (s *MongoProductStore) Get(ctx context.Context, idOrSlug string) (*models.Product, error) {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": idOrSlug}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		err = s.coll.FindOne(ctx, bson.M{"slug": idOrSlug}).Decode(&p)
	}
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find product %s", idOrSlug)
	}
	return &p, nil
}

func (s *MongoProductStore) Create(ctx context.Context, p models.Product) error {
	_, err := s.coll.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateId
	}
	return errors.Wrap(err, "insert product")
}

func (s *MongoProductStore) Replace(ctx context.Context, p models.Product) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.Id}, p)
	if err != nil {
		return errors.Wrapf(err, "replace product %s", p.Id)
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete product %s", id)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

type MongoOrderStore struct {
	coll *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{coll: db.Collection(OrderCollection)}
}

func (s *MongoOrderStore) Create(ctx context.Context, o models.Order) error {
	_, err := s.coll.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateId
	}
	return errors.Wrap(err, "insert order")
}

func (s *MongoOrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find order %s", id)
	}
	return &o, nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *MongoOrderStore) List(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoOrderStore) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}
