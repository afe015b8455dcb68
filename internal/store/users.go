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

// UserStore is the Mongo-backed user collection, shared by every role.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(s *Store) *UserStore {
	return &UserStore{coll: s.db.Collection(collUsers)}
}

// EnsureIndexes creates the unique email index. Called once at startup.
func (u *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := u.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (u *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (u *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0, len(ids))
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (u *UserStore) FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	var user models.User
	if err := u.coll.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (u *UserStore) Insert(ctx context.Context, user *models.User) error {
	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (u *UserStore) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	cursor, err := u.coll.Find(ctx, bson.M{"role": role},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// VerifiedDonors returns every active donor with a verified email, the
// audience for emergency and camp broadcasts.
func (u *UserStore) VerifiedDonors(ctx context.Context) ([]models.User, error) {
	cursor, err := u.coll.Find(ctx, bson.M{
		"role":          models.RoleDonor,
		"emailVerified": true,
		"status":        models.UserActive,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	donors := make([]models.User, 0)
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

func (u *UserStore) UpdateThresholds(ctx context.Context, orgID primitive.ObjectID, overrides map[string]int64) error {
	result, err := u.coll.UpdateOne(ctx, bson.M{"_id": orgID}, bson.M{"$set": bson.M{
		"minStockByGroup": overrides,
		"updatedAt":       time.Now(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (u *UserStore) ConnectHospital(ctx context.Context, orgID, hospitalID primitive.ObjectID) error {
	result, err := u.coll.UpdateOne(ctx, bson.M{"_id": orgID}, bson.M{
		"$addToSet": bson.M{"connectedHospitals": hospitalID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (u *UserStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string, by *primitive.ObjectID, at *time.Time) error {
	set := bson.M{"status": status, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if by != nil {
		set["blockedBy"] = *by
		set["blockedAt"] = *at
	} else {
		update["$unset"] = bson.M{"blockedBy": "", "blockedAt": ""}
	}
	result, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

func (u *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := u.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}
