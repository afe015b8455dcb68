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

// EmergencyStore is the Mongo-backed emergency request collection. The donor
// snapshot lives embedded in the request document and is updated with
// positional operators.
type EmergencyStore struct {
	coll *mongo.Collection
}

func NewEmergencyStore(s *Store) *EmergencyStore {
	return &EmergencyStore{coll: s.db.Collection(collEmergencies)}
}

func (e *EmergencyStore) Insert(ctx context.Context, req *models.EmergencyRequest) error {
	if req.EligibleDonors == nil {
		req.EligibleDonors = []models.EligibleDonor{}
	}
	result, err := e.coll.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = id
	}
	return nil
}

func (e *EmergencyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	var req models.EmergencyRequest
	if err := e.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (e *EmergencyStore) ListAll(ctx context.Context) ([]models.EmergencyRequest, error) {
	return e.list(ctx, bson.M{})
}

func (e *EmergencyStore) ListByOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.EmergencyRequest, error) {
	return e.list(ctx, bson.M{"organisation": orgID})
}

func (e *EmergencyStore) ListActive(ctx context.Context) ([]models.EmergencyRequest, error) {
	return e.list(ctx, bson.M{"status": models.EmergencyActive})
}

func (e *EmergencyStore) list(ctx context.Context, query bson.M) ([]models.EmergencyRequest, error) {
	cursor, err := e.coll.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := make([]models.EmergencyRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (e *EmergencyStore) SetEligibleDonors(ctx context.Context, id primitive.ObjectID, donors []models.EligibleDonor) error {
	result, err := e.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"eligibleDonors": donors,
		"updatedAt":      time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (e *EmergencyStore) MarkNotified(ctx context.Context, id, donorID primitive.ObjectID, at time.Time) error {
	result, err := e.coll.UpdateOne(ctx,
		bson.M{"_id": id, "eligibleDonors.donor": donorID},
		bson.M{"$set": bson.M{
			"eligibleDonors.$.notified":   true,
			"eligibleDonors.$.notifiedAt": at,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (e *EmergencyStore) SetBroadcastSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := e.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"broadcastSent":   true,
		"broadcastSentAt": at,
		"updatedAt":       at,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

// RecordResponse writes the donor's answer into the snapshot entry. The
// boolean is false when the donor is not part of the broadcast.
func (e *EmergencyStore) RecordResponse(ctx context.Context, id, donorID primitive.ObjectID, response string, at time.Time) (bool, error) {
	result, err := e.coll.UpdateOne(ctx,
		bson.M{"_id": id, "eligibleDonors.donor": donorID},
		bson.M{"$set": bson.M{
			"eligibleDonors.$.response":   response,
			"eligibleDonors.$.responseAt": at,
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (e *EmergencyStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string, set map[string]interface{}) error {
	update := bson.M{"status": status}
	for key, value := range set {
		update[key] = value
	}
	result, err := e.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (e *EmergencyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := e.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (e *EmergencyStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cursor, err := e.coll.Aggregate(ctx, mongo.Pipeline{
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
