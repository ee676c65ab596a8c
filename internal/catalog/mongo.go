package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names match the documents written by earlier versions of the service.
const (
	vehicleCollection     = "car"
	cosmeticSetCollection = "cosmetic_set"
)

// vehicleDoc holds the structure for the car collection in mongo.
type vehicleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	ClassName   string             `bson:"class_name"`
	CarImageURL string             `bson:"car_image_url,omitempty"`
}

// cosmeticSetDoc holds the structure for the cosmetic_set collection in mongo.
type cosmeticSetDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	SetName       string             `bson:"set_name"`
	Car           primitive.ObjectID `bson:"car"`
	SetEffects    string             `bson:"set_effects,omitempty"`
	Parts         []string           `bson:"parts"`
	ImageURLFront string             `bson:"image_url_front,omitempty"`
	ImageURLSide  string             `bson:"image_url_side,omitempty"`
	ImageURLRear  string             `bson:"image_url_rear,omitempty"`
}

func (d vehicleDoc) toVehicle() Vehicle {
	return Vehicle{
		ID:       ID(d.ID.Hex()),
		Name:     d.Name,
		Class:    d.ClassName,
		ImageURL: d.CarImageURL,
	}
}

func (d cosmeticSetDoc) toCosmeticSet() CosmeticSet {
	parts := d.Parts
	if parts == nil {
		parts = []string{}
	}
	return CosmeticSet{
		ID:            ID(d.ID.Hex()),
		SetName:       d.SetName,
		VehicleID:     ID(d.Car.Hex()),
		SetEffects:    d.SetEffects,
		Parts:         parts,
		ImageURLFront: d.ImageURLFront,
		ImageURLSide:  d.ImageURLSide,
		ImageURLRear:  d.ImageURLRear,
	}
}

// MongoRepository stores catalog documents in MongoDB.
type MongoRepository struct {
	vehicles *mongo.Collection
	sets     *mongo.Collection
}

// NewMongoRepository creates a MongoRepository on top of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		vehicles: db.Collection(vehicleCollection),
		sets:     db.Collection(cosmeticSetCollection),
	}
}

// EnsureIndexes creates the unique vehicle name index and the vehicle
// reference index used by the public API. It is idempotent.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.vehicles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create vehicle name index: %w", err)
	}
	_, err = r.sets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "car", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create cosmetic set car index: %w", err)
	}
	return nil
}

// ListVehicles returns every document of the car collection in natural order.
func (r *MongoRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	cur, err := r.vehicles.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	var docs []vehicleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	out := make([]Vehicle, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toVehicle())
	}
	return out, nil
}

// GetVehicle fetches a vehicle by its ObjectID.
func (r *MongoRepository) GetVehicle(ctx context.Context, id ID) (*Vehicle, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findVehicle(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindVehicleByName fetches a vehicle by its unique name.
func (r *MongoRepository) FindVehicleByName(ctx context.Context, name string) (*Vehicle, error) {
	return r.findVehicle(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *MongoRepository) findVehicle(ctx context.Context, filter bson.D) (*Vehicle, error) {
	var d vehicleDoc
	err := r.vehicles.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	v := d.toVehicle()
	return &v, nil
}

// CreateVehicle inserts a vehicle and assigns a new ObjectID.
func (r *MongoRepository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	d := vehicleDoc{
		ID:          primitive.NewObjectID(),
		Name:        v.Name,
		ClassName:   v.Class,
		CarImageURL: v.ImageURL,
	}
	if _, err := r.vehicles.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	v.ID = ID(d.ID.Hex())
	return nil
}

// UpdateVehicle overwrites every field of an existing vehicle.
func (r *MongoRepository) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	oid, err := parseObjectID(v.ID)
	if err != nil {
		return err
	}
	d := vehicleDoc{ID: oid, Name: v.Name, ClassName: v.Class, CarImageURL: v.ImageURL}
	res, err := r.vehicles.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle removes a vehicle. Cosmetic sets referencing it are kept.
func (r *MongoRepository) DeleteVehicle(ctx context.Context, id ID) error {
	return deleteOne(ctx, r.vehicles, id)
}

// ListCosmeticSets returns every document of the cosmetic_set collection.
func (r *MongoRepository) ListCosmeticSets(ctx context.Context) ([]CosmeticSet, error) {
	return r.findSets(ctx, bson.D{})
}

// ListCosmeticSetsByVehicle returns the cosmetic sets whose car field equals vehicleID.
func (r *MongoRepository) ListCosmeticSetsByVehicle(ctx context.Context, vehicleID ID) ([]CosmeticSet, error) {
	oid, err := parseObjectID(vehicleID)
	if err != nil {
		return nil, err
	}
	return r.findSets(ctx, bson.D{{Key: "car", Value: oid}})
}

func (r *MongoRepository) findSets(ctx context.Context, filter bson.D) ([]CosmeticSet, error) {
	cur, err := r.sets.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cosmetic sets: %w", err)
	}
	var docs []cosmeticSetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cosmetic sets: %w", err)
	}
	out := make([]CosmeticSet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toCosmeticSet())
	}
	return out, nil
}

// GetCosmeticSet fetches a cosmetic set by its ObjectID.
func (r *MongoRepository) GetCosmeticSet(ctx context.Context, id ID) (*CosmeticSet, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var d cosmeticSetDoc
	err = r.sets.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cosmetic set: %w", err)
	}
	c := d.toCosmeticSet()
	return &c, nil
}

// CreateCosmeticSet inserts a cosmetic set and assigns a new ObjectID.
func (r *MongoRepository) CreateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	d, err := newCosmeticSetDoc(c)
	if err != nil {
		return err
	}
	d.ID = primitive.NewObjectID()
	if _, err := r.sets.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("create cosmetic set: %w", err)
	}
	c.ID = ID(d.ID.Hex())
	return nil
}

// UpdateCosmeticSet overwrites every field of an existing cosmetic set.
func (r *MongoRepository) UpdateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	oid, err := parseObjectID(c.ID)
	if err != nil {
		return err
	}
	d, err := newCosmeticSetDoc(c)
	if err != nil {
		return err
	}
	d.ID = oid
	res, err := r.sets.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, d)
	if err != nil {
		return fmt.Errorf("update cosmetic set: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCosmeticSet removes a cosmetic set.
func (r *MongoRepository) DeleteCosmeticSet(ctx context.Context, id ID) error {
	return deleteOne(ctx, r.sets, id)
}

func newCosmeticSetDoc(c *CosmeticSet) (cosmeticSetDoc, error) {
	car, err := parseObjectID(c.VehicleID)
	if err != nil {
		return cosmeticSetDoc{}, err
	}
	parts := c.Parts
	if parts == nil {
		parts = []string{}
	}
	return cosmeticSetDoc{
		SetName:       c.SetName,
		Car:           car,
		SetEffects:    c.SetEffects,
		Parts:         parts,
		ImageURLFront: c.ImageURLFront,
		ImageURLSide:  c.ImageURLSide,
		ImageURLRear:  c.ImageURLRear,
	}, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id ID) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func parseObjectID(id ID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, ErrMalformedID
	}
	return oid, nil
}

var _ Repository = (*MongoRepository)(nil)
