package realtime

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/models"
)

// Notifier pumps the issues collection's change stream into the hub.
// Per-issue ordering comes from the stream itself; there is no cross-issue
// ordering. After a stream failure the notifier reconnects with backoff and
// broadcasts a resync marker, since missed events are not replayed.
type Notifier struct {
	Collection *mongo.Collection
	Hub        *Hub
}

type changeDocument struct {
	OperationType string        `bson:"operationType"`
	FullDocument  *models.Issue `bson:"fullDocument"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// Run watches the change stream until ctx is cancelled
func (n *Notifier) Run(ctx context.Context) {
	backoff := time.Second
	first := true

	for {
		if ctx.Err() != nil {
			return
		}

		err := n.watch(ctx, first)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("Change stream lost: %v (reconnecting in %s)", err, backoff)
		}
		first = false

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (n *Notifier) watch(ctx context.Context, first bool) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := n.Collection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	// subscribers that lived through a reconnect may have missed events
	if !first {
		n.Hub.BroadcastResync()
	}

	for stream.Next(ctx) {
		var doc changeDocument
		if err := stream.Decode(&doc); err != nil {
			log.Printf("Failed to decode change event: %v", err)
			continue
		}
		if event, ok := n.toEvent(doc); ok {
			n.Hub.Publish(event)
		}
	}
	return stream.Err()
}

func (n *Notifier) toEvent(doc changeDocument) (ChangeEvent, bool) {
	switch doc.OperationType {
	case "insert":
		return ChangeEvent{Operation: OpInsert, Issue: doc.FullDocument}, doc.FullDocument != nil
	case "update", "replace":
		return ChangeEvent{Operation: OpUpdate, Issue: doc.FullDocument}, doc.FullDocument != nil
	case "delete":
		// no full document on deletes; carry the id only
		return ChangeEvent{Operation: OpDelete, Issue: &models.Issue{ID: doc.DocumentKey.ID}}, true
	default:
		return ChangeEvent{}, false
	}
}
