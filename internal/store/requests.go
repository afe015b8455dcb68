package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
)

var listNewestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// HospitalRequestStore is the Mongo-backed hospital request collection.
type HospitalRequestStore struct {
	coll *mongo.Collection
}

func NewHospitalRequestStore(s *Store) *HospitalRequestStore {
	return &HospitalRequestStore{coll: s.db.Collection(collRequests)}
}

func (r *HospitalRequestStore) Insert(ctx context.Context, req *models.HospitalRequest) error {
	result, err := r.coll.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = id
	}
	return nil
}

func (r *HospitalRequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.HospitalRequest, error) {
	var req models.HospitalRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *HospitalRequestStore) ListByHospital(ctx context.Context, hospitalID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	query := bson.M{"hospital": hospitalID}
	if status != "" {
		query["status"] = status
	}
	return r.list(ctx, query)
}

func (r *HospitalRequestStore) ListByOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	query := bson.M{"organisation": orgID}
	if status != "" {
		query["status"] = status
	}
	return r.list(ctx, query)
}

func (r *HospitalRequestStore) list(ctx context.Context, query bson.M) ([]models.HospitalRequest, error) {
	cursor, err := r.coll.Find(ctx, query, listNewestFirst)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := make([]models.HospitalRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateStatus flips the status only while the stored document still carries
// from. The guard in the filter is what makes concurrent transitions safe.
func (r *HospitalRequestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error) {
	update := bson.M{"status": to}
	for key, value := range set {
		update[key] = value
	}
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

// DonorRequestStore is the Mongo-backed donor request collection.
type DonorRequestStore struct {
	coll *mongo.Collection
}

func NewDonorRequestStore(s *Store) *DonorRequestStore {
	return &DonorRequestStore{coll: s.db.Collection(collDonorRequests)}
}

func (r *DonorRequestStore) Insert(ctx context.Context, req *models.DonorRequest) error {
	result, err := r.coll.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = id
	}
	return nil
}

func (r *DonorRequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonorRequest, error) {
	var req models.DonorRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *DonorRequestStore) ListByDonor(ctx context.Context, donorID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	query := bson.M{"donor": donorID}
	if status != "" {
		query["status"] = status
	}
	return r.list(ctx, query)
}

func (r *DonorRequestStore) ListByOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	query := bson.M{"organisation": orgID}
	if status != "" {
		query["status"] = status
	}
	return r.list(ctx, query)
}

func (r *DonorRequestStore) list(ctx context.Context, query bson.M) ([]models.DonorRequest, error) {
	cursor, err := r.coll.Find(ctx, query, listNewestFirst)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := make([]models.DonorRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// HasOpen reports whether the donor already has a pending or approved request
// with the organisation.
func (r *DonorRequestStore) HasOpen(ctx context.Context, donorID, orgID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"donor":        donorID,
		"organisation": orgID,
		"status":       bson.M{"$in": []requestflow.Status{requestflow.StatusPending, requestflow.StatusApproved}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DonorRequestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error) {
	update := bson.M{"status": to}
	for key, value := range set {
		update[key] = value
	}
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}
