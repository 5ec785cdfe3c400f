package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assembly_crawler/internal/config"
	"assembly_crawler/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	client          *mongo.Client
	database        *mongo.Database
	bills           *mongo.Collection
	petitions       *mongo.Collection
	petitionHistory *mongo.Collection
}

func NewMongoDB(cfg config.DBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)

	d := &MongoDB{
		client:          client,
		database:        database,
		bills:           database.Collection(cfg.Collections.Bills),
		petitions:       database.Collection(cfg.Collections.Petitions),
		petitionHistory: database.Collection(cfg.Collections.PetitionHistory),
	}

	if err := d.createIndexes(); err != nil {
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}

	return d, nil
}

func (d *MongoDB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.bills.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bill_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = d.petitions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "petition_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = d.petitionHistory.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "petition_id", Value: 1}, {Key: "recorded_at", Value: 1}},
	})
	return err
}

// UpsertBill writes all mutable fields keyed by bill_number and refreshes the
// in-progress status. Returns true when a new record was inserted.
func (d *MongoDB) UpsertBill(b *models.Bill) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()

	var updateDoc bson.M
	data, err := bson.Marshal(b)
	if err != nil {
		return false, err
	}
	if err := bson.Unmarshal(data, &updateDoc); err != nil {
		return false, err
	}
	delete(updateDoc, "created_at")
	updateDoc["status"] = models.BillInProgress
	updateDoc["updated_at"] = now

	update := bson.M{
		"$set":         updateDoc,
		"$setOnInsert": bson.M{"created_at": now},
	}

	res, err := d.bills.UpdateOne(ctx,
		bson.M{"bill_number": b.BillNumber},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (d *MongoDB) FindBillByNumber(billNumber string) (*models.Bill, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var bill models.Bill
	err := d.bills.FindOne(ctx, bson.M{"bill_number": billNumber}).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return &bill, err
}

// MarkEndedBills flips in-progress bills whose notice period expired. The
// crawler itself never touches status transitions; this sweep runs on its own
// schedule.
func (d *MongoDB) MarkEndedBills(now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := d.bills.UpdateMany(ctx, endedBillsFilter(now), endedBillsUpdate(now))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func endedBillsFilter(now time.Time) bson.M {
	return bson.M{"status": models.BillInProgress, "notice_end": bson.M{"$lt": now}}
}

func endedBillsUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{"status": models.BillEnded, "updated_at": now}}
}

// petitionUpsert restricts the update path to the fields the listing actually
// refreshes. The first-sight window, content, hashtags and goal are written
// once at insert and never moved by later crawls.
func petitionUpsert(p *models.Petition, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"title":         p.Title,
			"category":      p.Category,
			"agree_count":   p.AgreeCount,
			"progress_rate": p.ProgressRate,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"content":    p.Content,
			"hashtags":   p.Hashtags,
			"agree_goal": p.AgreeGoal,
			"start_date": p.StartDate,
			"end_date":   p.EndDate,
			"source_url": p.SourceURL,
			"created_at": now,
		},
	}
}

// UpsertPetition atomically creates or updates a petition keyed by
// petition_id and reports the previously stored agree count so the caller can
// decide whether a history point is due.
func (d *MongoDB) UpsertPetition(p *models.Petition) (prevAgree int, existed bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	p.ProgressRate = float64(p.AgreeCount) / float64(p.AgreeGoal) * 100

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var prev models.Petition
	err = d.petitions.FindOneAndUpdate(ctx, bson.M{"petition_id": p.PetitionID}, petitionUpsert(p, now), opts).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return prev.AgreeCount, true, nil
}

func (d *MongoDB) FindPetitionByID(petitionID string) (*models.Petition, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var petition models.Petition
	err := d.petitions.FindOne(ctx, bson.M{"petition_id": petitionID}).Decode(&petition)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return &petition, err
}

func (d *MongoDB) AppendPetitionHistory(petitionID string, agreeCount int, recordedAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.petitionHistory.InsertOne(ctx, models.PetitionHistory{
		PetitionID: petitionID,
		AgreeCount: agreeCount,
		RecordedAt: recordedAt,
	})
	return err
}

func (d *MongoDB) CountBills(status string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return d.bills.CountDocuments(ctx, filter)
}

func (d *MongoDB) CountPetitions() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return d.petitions.CountDocuments(ctx, bson.M{})
}

func (d *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
