package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo keeps every collection as one document in the "documents"
// collection. Apply runs inside a multi-document transaction, which needs a
// replica set (a single-node one is enough).
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Records   string    `bson:"records"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *Mongo) Documents() *mongo.Collection {
	return m.Database.Collection("documents")
}

func (m *Mongo) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func (m *Mongo) Load(ctx context.Context, c Collection) (*Document, error) {
	var d mongoDocument
	err := m.Documents().FindOne(ctx, bson.M{"_id": string(c)}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Document{Collection: c, Records: emptyRecords()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Document{
		Collection: c,
		Records:    []byte(d.Records),
		ETag:       strconv.FormatInt(d.Version, 10),
	}, nil
}

func (m *Mongo) Apply(ctx context.Context, writes ...Write) error {
	sess, err := m.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, w := range writes {
			if err := m.put(sc, w); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (m *Mongo) put(ctx context.Context, w Write) error {
	now := time.Now().UTC()
	if w.IfMatch == "" {
		_, err := m.Documents().InsertOne(ctx, mongoDocument{
			ID:        string(w.Collection),
			Version:   1,
			Records:   string(w.Records),
			UpdatedAt: now,
		})
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s already exists", ErrVersionConflict, w.Collection)
		}
		return err
	}

	version, err := strconv.ParseInt(w.IfMatch, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: bad version %q", ErrVersionConflict, w.Collection, w.IfMatch)
	}
	res, err := m.Documents().UpdateOne(ctx,
		bson.M{"_id": string(w.Collection), "version": version},
		bson.M{
			"$set": bson.M{"records": string(w.Records), "updatedAt": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s moved past version %d", ErrVersionConflict, w.Collection, version)
	}
	return nil
}
