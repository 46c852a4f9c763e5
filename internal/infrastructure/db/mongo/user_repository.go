package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

const (
	collectionUsers = "users"

	// Duplicate key errors name the violated index.
	registrationNumberIndex = "uniq_live_registration_number"
)

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	EmailAddress          string             `bson:"email_address"`
	PasswordHash          string             `bson:"password_hash"`
	FullName              string             `bson:"full_name"`
	DateOfBirth           time.Time          `bson:"date_of_birth"`
	City                  string             `bson:"city"`
	Province              string             `bson:"province"`
	Country               string             `bson:"country"`
	PhoneNumber           string             `bson:"phone_number"`
	RegistrationNumber    string             `bson:"registration_number,omitempty"`
	Authorities           []string           `bson:"authorities"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
	Deleted               bool               `bson:"deleted"`
	PasswordAutoGenerated bool               `bson:"password_auto_generated"`
	LastPasswordResetAt   time.Time          `bson:"last_password_reset_at"`
}

// FindByEmail returns the live account for email when there is one, and the
// most recently updated deleted account otherwise.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "deleted", Value: 1}, {Key: "updated_at", Value: -1}})
	return r.findOne(ctx, bson.M{"email_address": email}, opts)
}

func (r *UserRepository) FindByEmailNonDeleted(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email_address": email, "deleted": false})
}

func (r *UserRepository) ExistsByEmailNonDeleted(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email_address": email, "deleted": false})
}

func (r *UserRepository) ExistsByRegistrationNumberNonDeleted(ctx context.Context, registrationNumber string) (bool, error) {
	return r.exists(ctx, bson.M{"registration_number": registrationNumber, "deleted": false})
}

// Save inserts users without an ID and replaces the stored document otherwise.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	if doc.ID.IsZero() {
		res, err := r.col.InsertOne(ctx, doc)
		if err != nil {
			return nil, saveError(err)
		}
		doc.ID = res.InsertedID.(primitive.ObjectID)
	} else {
		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
		if err != nil {
			return nil, saveError(err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrUserNotFound
		}
	}

	return fromMongoUser(&doc), nil
}

// EnsureIndexes creates the lookup indexes and the partial unique indexes
// that keep email and registration number unique among live accounts.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email_address", Value: 1}, {Key: "deleted", Value: 1}}},
		{
			Keys: bson.D{{Key: "email_address", Value: 1}},
			Options: options.Index().
				SetName("uniq_live_email").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"deleted": false}),
		},
		{
			Keys: bson.D{{Key: "registration_number", Value: 1}},
			Options: options.Index().
				SetName(registrationNumberIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"deleted":             false,
					"registration_number": bson.M{"$type": "string"},
				}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func saveError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), registrationNumberIndex) {
			return domain.ErrRegistrationInUse
		}
		return domain.ErrUserExists
	}
	return fmt.Errorf("save user: %w", err)
}

func toMongoUser(u *domain.User) (mongoUser, error) {
	doc := mongoUser{
		EmailAddress:          u.EmailAddress,
		PasswordHash:          u.PasswordHash,
		FullName:              u.FullName,
		DateOfBirth:           u.DateOfBirth.UTC(),
		City:                  u.City,
		Province:              u.Province,
		Country:               u.Country,
		PhoneNumber:           u.PhoneNumber,
		RegistrationNumber:    u.RegistrationNumber,
		Authorities:           u.Authorities.Strings(),
		CreatedAt:             u.CreatedAt.UTC(),
		UpdatedAt:             u.UpdatedAt.UTC(),
		Deleted:               u.Deleted,
		PasswordAutoGenerated: u.PasswordAutoGenerated,
		LastPasswordResetAt:   u.LastPasswordResetAt.UTC(),
	}
	if u.ID != "" {
		id, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return mongoUser{}, fmt.Errorf("save user: invalid id %q: %w", u.ID, err)
		}
		doc.ID = id
	}
	return doc, nil
}

func fromMongoUser(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:                    mu.ID.Hex(),
		EmailAddress:          mu.EmailAddress,
		PasswordHash:          mu.PasswordHash,
		FullName:              mu.FullName,
		DateOfBirth:           mu.DateOfBirth.UTC(),
		City:                  mu.City,
		Province:              mu.Province,
		Country:               mu.Country,
		PhoneNumber:           mu.PhoneNumber,
		RegistrationNumber:    mu.RegistrationNumber,
		Authorities:           domain.AuthoritiesFromStrings(mu.Authorities),
		CreatedAt:             mu.CreatedAt.UTC(),
		UpdatedAt:             mu.UpdatedAt.UTC(),
		Deleted:               mu.Deleted,
		PasswordAutoGenerated: mu.PasswordAutoGenerated,
		LastPasswordResetAt:   mu.LastPasswordResetAt.UTC(),
	}
}
