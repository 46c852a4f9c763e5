package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

const collectionPatientRecords = "patient_records"

// PatientRecordRepository reads patient records written by the records
// service. This service never writes to the collection.
type PatientRecordRepository struct {
	col *mongo.Collection
}

func NewPatientRecordRepository(db *mongo.Database) *PatientRecordRepository {
	return &PatientRecordRepository{col: db.Collection(collectionPatientRecords)}
}

type mongoPatientRecord struct {
	PatientEmail string    `bson:"patient_email"`
	Status       string    `bson:"status"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// LatestByPatient returns the most recently updated record of the patient.
func (r *PatientRecordRepository) LatestByPatient(ctx context.Context, email string) (*domain.PatientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	var rec mongoPatientRecord
	if err := r.col.FindOne(ctx, bson.M{"patient_email": email}, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find patient record: %w", err)
	}

	return &domain.PatientRecord{
		PatientEmail: rec.PatientEmail,
		Status:       domain.RecordStatus(rec.Status),
	}, nil
}

func (r *PatientRecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patient_email", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	return err
}
