package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tileDone struct {
	JobID  string
	TileID string
}

func TestService_PublishConsume(t *testing.T) {
	svc, err := New(VendorMemory)
	require.NoError(t, err)

	publisher, err := PublisherOf[tileDone](svc)
	require.NoError(t, err)

	evt := NewEvent(&Context{JobID: "j1", TileID: "j1/tile-0000", EventType: TypeTileCompleted},
		tileDone{JobID: "j1", TileID: "j1/tile-0000"})
	require.NoError(t, publisher.Publish(context.Background(), evt))

	got, err := publisher.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "j1", got.Context.JobID)
	assert.Equal(t, TypeTileCompleted, got.Context.EventType)
	assert.Equal(t, "j1/tile-0000", got.Data.TileID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestService_TypedListener(t *testing.T) {
	svc, err := New(VendorMemory)
	require.NoError(t, err)

	var mux sync.Mutex
	var seen []string
	require.NoError(t, SetListenerOf(svc, func(e *Event[tileDone]) {
		mux.Lock()
		seen = append(seen, e.Data.TileID)
		mux.Unlock()
	}))

	publisher, err := PublisherOf[tileDone](svc)
	require.NoError(t, err)
	for _, id := range []string{"j1/tile-0000", "j1/tile-0001"} {
		evt := NewEvent(&Context{JobID: "j1", TileID: id, EventType: TypeTileCompleted}, tileDone{TileID: id})
		require.NoError(t, publisher.Publish(context.Background(), evt))
	}

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(seen) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestService_AnyListenerMirrorsTypedEvents(t *testing.T) {
	svc, err := New(VendorMemory)
	require.NoError(t, err)

	var mux sync.Mutex
	var types []string
	svc.SetListener(func(e *Event[any]) {
		mux.Lock()
		types = append(types, e.Context.EventType)
		mux.Unlock()
	})

	publisher, err := PublisherOf[tileDone](svc)
	require.NoError(t, err)
	evt := NewEvent(&Context{JobID: "j1", EventType: TypeJobStarted}, tileDone{JobID: "j1"})
	require.NoError(t, publisher.Publish(context.Background(), evt))

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(types) == 1 && types[0] == TypeJobStarted
	}, time.Second, 10*time.Millisecond)
}

func TestNew_Vendors(t *testing.T) {
	_, err := New(Vendor("kafka"))
	assert.Error(t, err)

	// fs vendor requires an explicit queue config factory
	_, err = New(VendorFs)
	assert.Error(t, err)
}
