package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

func receive(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ChangeEvent{}
	}
}

func insertEvent() ChangeEvent {
	return ChangeEvent{
		Operation: OpInsert,
		Issue:     &models.Issue{ID: primitive.NewObjectID(), Status: models.Pending},
	}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	defer a.Unsubscribe()
	b := hub.Subscribe()
	defer b.Unsubscribe()

	event := insertEvent()
	hub.Publish(event)

	got := receive(t, a)
	assert.Equal(t, OpInsert, got.Operation)
	assert.Equal(t, event.Issue.ID, got.Issue.ID)

	got = receive(t, b)
	assert.Equal(t, event.Issue.ID, got.Issue.ID)
}

func TestHubPreservesOrderPerSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	first := insertEvent()
	second := ChangeEvent{Operation: OpUpdate, Issue: first.Issue}
	hub.Publish(first)
	hub.Publish(second)

	assert.Equal(t, OpInsert, receive(t, sub).Operation)
	assert.Equal(t, OpUpdate, receive(t, sub).Operation)
}

func TestUnsubscribeClosesChannelAndReleasesSlot(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// idempotent
	sub.Unsubscribe()
}

func TestUnsubscribedViewerReceivesNothingFurther(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	sub.Unsubscribe()

	hub.Publish(insertEvent())

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestSlowSubscriberCoalescesIntoResync(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	// overflow the buffer without draining
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(insertEvent())
	}

	// the buffered events arrive in order
	for i := 0; i < subscriberBuffer; i++ {
		assert.Equal(t, OpInsert, receive(t, sub).Operation)
	}

	// then the gap shows up as a single resync marker
	hub.Publish(insertEvent())
	got := receive(t, sub)
	assert.Equal(t, OpResync, got.Operation)
	assert.Nil(t, got.Issue)

	// and normal delivery resumes
	hub.Publish(insertEvent())
	assert.Equal(t, OpInsert, receive(t, sub).Operation)
}

func TestBroadcastResync(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	defer a.Unsubscribe()
	b := hub.Subscribe()
	defer b.Unsubscribe()

	hub.BroadcastResync()

	assert.Equal(t, OpResync, receive(t, a).Operation)
	assert.Equal(t, OpResync, receive(t, b).Operation)
}
