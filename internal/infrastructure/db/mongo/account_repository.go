package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

const accountsCollection = "users"

// AccountRepository persists accounts in MongoDB.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type accountDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"password"`
	FirstName      string             `bson:"first_name"`
	LastName       string             `bson:"last_name"`
	Birthdate      time.Time          `bson:"birthdate"`
	RegisterDate   time.Time          `bson:"register_date"`
	LastLoginDate  time.Time          `bson:"last_login_date"`
	Status         string             `bson:"status"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Birthdate:      d.Birthdate,
		RegisterDate:   d.RegisterDate,
		LastLoginDate:  d.LastLoginDate,
		Status:         domain.AccountStatus(d.Status),
		ProfilePicture: d.ProfilePicture,
	}
}

// Create inserts a new account document. A duplicate key on the unique
// username/email indexes maps to domain.ErrAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDoc{
		Username:      account.Username,
		Email:         account.Email,
		PasswordHash:  account.PasswordHash,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		Birthdate:     account.Birthdate,
		RegisterDate:  account.RegisterDate,
		LastLoginDate: account.LastLoginDate,
		Status:        string(account.Status),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// FindByUsername retrieves an account by its unique username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves an account by document id. Malformed ids behave as
// not-found rather than as errors.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdatePassword replaces the stored password hash for username.
func (r *AccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": bson.M{"last_login_date": at}})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdateProfilePicture sets the stored picture reference and returns the
// updated account.
func (r *AccountRepository) UpdateProfilePicture(ctx context.Context, id, picturePath string) (*domain.Account, error) {
	return r.findAndUpdate(ctx, id, bson.M{"profile_picture": picturePath})
}

// Update applies partial profile changes and returns the updated account.
// A duplicate key on the email index maps to domain.ErrAlreadyExists.
func (r *AccountRepository) Update(ctx context.Context, id string, update ports.AccountUpdate) (*domain.Account, error) {
	set := bson.M{}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Birthdate != nil {
		set["birthdate"] = *update.Birthdate
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findAndUpdate(ctx, id, set)
}

func (r *AccountRepository) findAndUpdate(ctx context.Context, id string, set bson.M) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the account document.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique indexes backing the username and email
// invariants.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
