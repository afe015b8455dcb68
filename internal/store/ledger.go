package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
)

// LedgerStore is the Mongo-backed append-only ledger. Entries are only ever
// inserted; stock is always derived by aggregation.
type LedgerStore struct {
	coll *mongo.Collection
}

func NewLedgerStore(s *Store) *LedgerStore {
	return &LedgerStore{coll: s.db.Collection(collInventory)}
}

func (l *LedgerStore) Insert(ctx context.Context, entry *models.LedgerEntry) error {
	result, err := l.coll.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

// SumQuantity aggregates total millilitres for the (organisation, group,
// direction) triple. A zero orgID widens the match to every organisation.
func (l *LedgerStore) SumQuantity(ctx context.Context, orgID primitive.ObjectID, group models.BloodGroup, direction models.Direction) (int64, error) {
	match := bson.M{
		"bloodGroup":    group,
		"inventoryType": direction,
	}
	if !orgID.IsZero() {
		match["organisation"] = orgID
	}
	cursor, err := l.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// LastUpdated returns the newest entry time per blood group.
func (l *LedgerStore) LastUpdated(ctx context.Context, orgID primitive.ObjectID) (map[models.BloodGroup]time.Time, error) {
	cursor, err := l.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"organisation": orgID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$bloodGroup",
			"latest": bson.M{"$max": "$createdAt"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Group  models.BloodGroup `bson:"_id"`
		Latest time.Time         `bson:"latest"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	latest := make(map[models.BloodGroup]time.Time, len(results))
	for _, r := range results {
		latest[r.Group] = r.Latest
	}
	return latest, nil
}

func (l *LedgerStore) List(ctx context.Context, filter service.LedgerFilter) ([]models.LedgerEntry, error) {
	query := bson.M{}
	if filter.Organisation != nil {
		query["organisation"] = *filter.Organisation
	}
	if filter.Donor != nil {
		query["donor"] = *filter.Donor
	}
	if filter.Hospital != nil {
		query["hospital"] = *filter.Hospital
	}
	if filter.BloodGroup != "" {
		query["bloodGroup"] = filter.BloodGroup
	}
	if filter.Direction != "" {
		query["inventoryType"] = filter.Direction
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cursor, err := l.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]models.LedgerEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DonorTotals aggregates IN entries per donor for one organisation.
func (l *LedgerStore) DonorTotals(ctx context.Context, orgID primitive.ObjectID) ([]service.DonorTotal, error) {
	cursor, err := l.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organisation":  orgID,
			"inventoryType": models.DirectionIn,
			"donor":         bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$donor",
			"totalML":      bson.M{"$sum": "$quantity"},
			"count":        bson.M{"$sum": 1},
			"lastDonation": bson.M{"$max": "$createdAt"},
			"bloodGroups":  bson.M{"$addToSet": "$bloodGroup"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastDonation", Value: -1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Donor        primitive.ObjectID  `bson:"_id"`
		TotalML      int64               `bson:"totalML"`
		Count        int64               `bson:"count"`
		LastDonation time.Time           `bson:"lastDonation"`
		BloodGroups  []models.BloodGroup `bson:"bloodGroups"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	totals := make([]service.DonorTotal, 0, len(results))
	for _, r := range results {
		totals = append(totals, service.DonorTotal{
			Donor:        r.Donor,
			TotalML:      r.TotalML,
			Count:        r.Count,
			LastDonation: r.LastDonation,
			BloodGroups:  r.BloodGroups,
		})
	}
	return totals, nil
}

// HospitalTotals aggregates OUT entries per hospital for one organisation.
func (l *LedgerStore) HospitalTotals(ctx context.Context, orgID primitive.ObjectID) ([]service.HospitalTotal, error) {
	cursor, err := l.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organisation":  orgID,
			"inventoryType": models.DirectionOut,
			"hospital":      bson.M{"$ne": nil},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$hospital",
			"totalML":        bson.M{"$sum": "$quantity"},
			"lastIssue":      bson.M{"$last": "$createdAt"},
			"lastBloodGroup": bson.M{"$last": "$bloodGroup"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastIssue", Value: -1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Hospital       primitive.ObjectID `bson:"_id"`
		TotalML        int64              `bson:"totalML"`
		LastIssue      time.Time          `bson:"lastIssue"`
		LastBloodGroup models.BloodGroup  `bson:"lastBloodGroup"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	totals := make([]service.HospitalTotal, 0, len(results))
	for _, r := range results {
		totals = append(totals, service.HospitalTotal{
			Hospital:       r.Hospital,
			TotalML:        r.TotalML,
			LastIssue:      r.LastIssue,
			LastBloodGroup: r.LastBloodGroup,
		})
	}
	return totals, nil
}
