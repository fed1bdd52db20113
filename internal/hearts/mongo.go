package hearts

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"uet-duck-server/models"
)

// MongoLedger stores balances on the users collection and relies on MongoDB's
// single-document atomicity for the conditional updates. The request path and
// the recharge job both go through these operations, so there is no
// in-process read-modify-write race between the two.
type MongoLedger struct {
	users *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{users: db.Collection("users")}
}

func (l *MongoLedger) TryConsume(ctx context.Context, userID string) (int, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}

	res := l.users.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "hearts": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"hearts": -1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var user models.User
	if err := res.Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			// Filter missed: either the user is unknown or the balance is
			// already zero. A plain read disambiguates.
			if err := l.users.FindOne(ctx, bson.M{"_id": objID}).Err(); err != nil {
				return 0, ErrUserNotFound
			}
			return 0, ErrNoHearts
		}
		return 0, err
	}

	return user.Hearts, nil
}

func (l *MongoLedger) Recharge(ctx context.Context, userID string, amount, cap int) (int, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}

	// Aggregation-pipeline update so the min(hearts+amount, cap) clamp is
	// computed inside the store. The hearts < cap filter means users already
	// at cap get no write at all.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"hearts":     bson.M{"$min": bson.A{bson.M{"$add": bson.A{"$hearts", amount}}, cap}},
			"updated_at": "$$NOW",
		}}},
	}

	res := l.users.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "hearts": bson.M{"$lt": cap}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var user models.User
	if err := res.Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			// Already at cap, or unknown user.
			var current models.User
			if err := l.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&current); err != nil {
				return 0, ErrUserNotFound
			}
			return current.Hearts, nil
		}
		return 0, err
	}

	return user.Hearts, nil
}

func (l *MongoLedger) Balance(ctx context.Context, userID string) (int, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}

	var user models.User
	if err := l.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	return user.Hearts, nil
}

func (l *MongoLedger) BelowCap(ctx context.Context, cap int) ([]Quota, error) {
	cursor, err := l.users.Find(ctx,
		bson.M{"hearts": bson.M{"$lt": cap}},
		options.Find().SetProjection(bson.M{"hearts": 1, "max_hearts": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quotas []Quota
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		quotas = append(quotas, Quota{
			UserID:    user.ID.Hex(),
			Hearts:    user.Hearts,
			MaxHearts: user.MaxHearts,
		})
	}

	return quotas, cursor.Err()
}
