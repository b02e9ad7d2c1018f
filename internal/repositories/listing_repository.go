package repositories

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nestquery-listings/internal/models"
	"nestquery-listings/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) ListingRepository {
	return &listingRepository{
		collection: db.Collection("listings"),
	}
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	start := time.Now()
	var listing models.Listing
	err := r.collection.FindOne(ctx, bson.M{"listingId": id}).Decode(&listing)
	metrics.MongoOperationDuration.WithLabelValues("find_one", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Not found
		}
		metrics.MongoErrorsTotal.WithLabelValues("find_one", "listings").Inc()
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) FindPage(ctx context.Context, q models.SearchQuery) ([]models.Listing, int64, error) {
	filter := buildMongoFilter(q)

	start := time.Now()
	total, err := r.collection.CountDocuments(ctx, filter)
	metrics.MongoOperationDuration.WithLabelValues("count_documents", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("count_documents", "listings").Inc()
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(sortSpec(q.SortBy)).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	start = time.Now()
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	metrics.MongoOperationDuration.WithLabelValues("find", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("find", "listings").Inc()
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	start = time.Now()
	err = cursor.All(ctx, &listings)
	metrics.MongoOperationDuration.WithLabelValues("cursor_all", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("cursor_all", "listings").Inc()
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	listing.ID = primitive.NewObjectID()
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, listing)
	metrics.MongoOperationDuration.WithLabelValues("insert", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("insert", "listings").Inc()
		return err
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	update := bson.M{
		"$set": bson.M{
			"title":        listing.Title,
			"description":  listing.Description,
			"price":        listing.Price,
			"propertyType": listing.PropertyType,
			"petsAllowed":  listing.PetsAllowed,
			"location":     listing.Location,
			"features":     listing.Features,
			"photos":       listing.Photos,
			"owner":        listing.Owner,
			"updatedAt":    time.Now().UTC(),
		},
	}
	start := time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"listingId": listing.ListingID}, update)
	metrics.MongoOperationDuration.WithLabelValues("update", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("update", "listings").Inc()
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing not found: %s", listing.ListingID)
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	result, err := r.collection.DeleteOne(ctx, bson.M{"listingId": id})
	metrics.MongoOperationDuration.WithLabelValues("delete", "listings").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("delete", "listings").Inc()
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}
	return nil
}

// buildMongoFilter maps the parsed search query onto a Mongo filter using
// the filter schema's storage fields. min > max is passed through as given
// and simply matches nothing.
func buildMongoFilter(q models.SearchQuery) bson.M {
	filter := bson.M{}

	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"location.city": pattern},
			{"location.district": pattern},
			{"description": pattern},
		}
	}

	for _, key := range q.Filters.Keys() {
		def, ok := models.LookupFilter(key)
		if !ok {
			continue
		}
		v, ok := q.Filters.Get(key)
		if !ok {
			continue
		}
		switch def.Kind {
		case models.FilterText:
			if text := strings.TrimSpace(v.Text); text != "" {
				filter[def.Field] = primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
			}
		case models.FilterEnum:
			if text := strings.TrimSpace(v.Text); text != "" {
				filter[def.Field] = text
			}
		case models.FilterRange:
			bounds := bson.M{}
			if min, err := strconv.ParseFloat(strings.TrimSpace(v.Min), 64); err == nil {
				bounds["$gte"] = min
			}
			if max, err := strconv.ParseFloat(strings.TrimSpace(v.Max), 64); err == nil {
				bounds["$lte"] = max
			}
			if len(bounds) > 0 {
				filter[def.Field] = bounds
			}
		case models.FilterBool:
			if v.Bool != nil {
				filter[def.Field] = *v.Bool
			}
		}
	}

	return filter
}

func sortSpec(sortBy string) bson.D {
	switch sortBy {
	case "price":
		return bson.D{{Key: "price", Value: 1}}
	case "-price":
		return bson.D{{Key: "price", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	default: // "newest" and anything unrecognized
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}
