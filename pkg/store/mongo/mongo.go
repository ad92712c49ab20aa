// Package mongo is a store.Store on MongoDB. All boards share one collection
// with a unique index on (board_id, item_id).
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/store"
)

// Collection is the collection items are stored in.
const Collection = "items"

// Store is a MongoDB-backed store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type itemDoc struct {
	BoardID  string         `bson:"board_id"`
	ItemID   int64          `bson:"item_id"`
	Position board.Position `bson:"position"`
	Color    string         `bson:"color,omitempty"`
	Pinned   bool           `bson:"pinned,omitempty"`
	Payload  string         `bson:"payload,omitempty"`
}

func toDoc(boardID string, it board.Item) itemDoc {
	return itemDoc{
		BoardID:  boardID,
		ItemID:   it.ID,
		Position: it.Position,
		Color:    it.Color,
		Pinned:   it.Pinned,
		Payload:  string(it.Payload),
	}
}

func (d itemDoc) item() board.Item {
	it := board.Item{ID: d.ItemID, Position: d.Position, Color: d.Color, Pinned: d.Pinned}
	if d.Payload != "" {
		it.Payload = []byte(d.Payload)
	}
	return it
}

// Open connects to uri, pings the server and ensures the index.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &Store{client: client, coll: client.Database(database).Collection(Collection)}
	if err := s.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "board_id", Value: 1}, {Key: "item_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func filter(boardID string, itemID int64) bson.D {
	return bson.D{{Key: "board_id", Value: boardID}, {Key: "item_id", Value: itemID}}
}

func (s *Store) ListItems(ctx context.Context, boardID string) ([]board.Item, error) {
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: "board_id", Value: boardID}},
		options.Find().SetSort(bson.D{{Key: "item_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	items := make([]board.Item, len(docs))
	for i, d := range docs {
		items[i] = d.item()
	}
	return items, nil
}

func (s *Store) UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error {
	res, err := s.coll.UpdateOne(ctx, filter(boardID, itemID),
		bson.D{{Key: "$set", Value: bson.D{{Key: "position", Value: pos}}}})
	if err != nil {
		return fmt.Errorf("mongo update position: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) PutItems(ctx context.Context, boardID string, items []board.Item) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter(boardID, it.ID)).
			SetReplacement(toDoc(boardID, it)).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo put items: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, boardID string, itemID int64) error {
	res, err := s.coll.DeleteOne(ctx, filter(boardID, itemID))
	if err != nil {
		return fmt.Errorf("mongo delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Disconnect(context.Background()) }

var _ store.Store = (*Store)(nil)
