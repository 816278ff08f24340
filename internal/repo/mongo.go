package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/examify/auth-service/internal/errors"

	"github.com/examify/auth-service/internal/domain"
)

const usersColl = "users"

type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(ctx context.Context, uri, dbname string) (*MongoStore, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoStore{Client: cli, DB: cli.Database(dbname)}, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureUserIndexes creates the unique email index. Emails are lowercased at
// the boundary, so a plain unique index gives case-insensitive uniqueness.
func (s *MongoStore) EnsureUserIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(usersColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.DB.Collection(usersColl).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindUserByEmailAndRole(ctx context.Context, email, role string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email, "role": role})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	cur, err := s.DB.Collection(usersColl).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoStore) CountAdmins(ctx context.Context) (int64, error) {
	return s.DB.Collection(usersColl).CountDocuments(ctx, bson.M{"role": domain.RoleAdmin})
}

func (s *MongoStore) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrUserNotFound
	}
	res, err := s.DB.Collection(usersColl).UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *MongoStore) UpdateRole(ctx context.Context, id, role string) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
}

func (s *MongoStore) SetVerified(ctx context.Context, id string, verified bool) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{"verified": verified, "updated_at": time.Now().UTC()},
	})
}

func (s *MongoStore) SetResetState(ctx context.Context, id, token string, expires time.Time, attempts int, last time.Time) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"reset_token":        token,
			"reset_expires":      expires.UTC(),
			"reset_attempts":     attempts,
			"last_reset_attempt": last.UTC(),
			"updated_at":         time.Now().UTC(),
		},
	})
}

func (s *MongoStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*domain.User, error) {
	res := s.DB.Collection(usersColl).FindOneAndUpdate(
		ctx,
		bson.M{"reset_token": token, "reset_expires": bson.M{"$gt": now.UTC()}},
		bson.M{
			"$set":   bson.M{"password_hash": newHash, "updated_at": now.UTC()},
			"$unset": bson.M{"reset_token": "", "reset_expires": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u domain.User
	if err := res.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
