package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifelink-api-server/internal/models"
)

// CampStore is the Mongo-backed donation camp collection.
type CampStore struct {
	coll *mongo.Collection
}

func NewCampStore(s *Store) *CampStore {
	return &CampStore{coll: s.db.Collection(collCamps)}
}

func (c *CampStore) Insert(ctx context.Context, camp *models.Camp) error {
	result, err := c.coll.InsertOne(ctx, camp)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		camp.ID = id
	}
	return nil
}

func (c *CampStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Camp, error) {
	var camp models.Camp
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&camp); err != nil {
		return nil, mapErr(err)
	}
	return &camp, nil
}

func (c *CampStore) ListByOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.Camp, error) {
	return c.list(ctx, bson.M{"organisation": orgID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (c *CampStore) ListByStatus(ctx context.Context, status string) ([]models.Camp, error) {
	return c.list(ctx, bson.M{"status": status}, bson.D{{Key: "createdAt", Value: -1}})
}

func (c *CampStore) ListAll(ctx context.Context) ([]models.Camp, error) {
	return c.list(ctx, bson.M{}, bson.D{{Key: "createdAt", Value: -1}})
}

// ListPublished returns approved upcoming camps for donors, soonest first.
// City matches as a case-insensitive substring; a blood group narrows to
// camps collecting it.
func (c *CampStore) ListPublished(ctx context.Context, city string, group models.BloodGroup) ([]models.Camp, error) {
	query := bson.M{
		"isPublished": true,
		"status":      models.CampApproved,
		"date":        bson.M{"$gte": time.Now()},
	}
	if city != "" {
		query["city"] = bson.M{"$regex": city, "$options": "i"}
	}
	if group != "" {
		query["bloodGroups"] = group
	}
	return c.list(ctx, query, bson.D{{Key: "date", Value: 1}})
}

func (c *CampStore) list(ctx context.Context, query bson.M, sort bson.D) ([]models.Camp, error) {
	cursor, err := c.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	camps := make([]models.Camp, 0)
	if err := cursor.All(ctx, &camps); err != nil {
		return nil, err
	}
	return camps, nil
}

func (c *CampStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error) {
	update := bson.M{"status": to}
	for key, value := range set {
		update[key] = value
	}
	result, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (c *CampStore) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	update := bson.M{}
	for key, value := range set {
		update[key] = value
	}
	result, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (c *CampStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (c *CampStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cursor, err := c.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
