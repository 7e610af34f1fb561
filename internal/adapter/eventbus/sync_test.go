package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventBus_PublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received []domain.Event
	bus.Subscribe(domain.EventVolumeChanged, func(event domain.Event) {
		received = append(received, event)
	})

	bus.Publish(domain.NewVolumeChangedEvent(0.5))

	require.Len(t, received, 1)
	evt, ok := received[0].(domain.VolumeChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 0.5, evt.Volume)
}

func TestSyncEventBus_TypeFiltering(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var volumeEvents, rateEvents int
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { volumeEvents++ })
	bus.Subscribe(domain.EventRateChanged, func(domain.Event) { rateEvents++ })

	bus.Publish(domain.NewVolumeChangedEvent(0.8))
	bus.Publish(domain.NewVolumeChangedEvent(0.9))
	bus.Publish(domain.NewRateChangedEvent(1.5))

	assert.Equal(t, 2, volumeEvents)
	assert.Equal(t, 1, rateEvents)
}

func TestSyncEventBus_SubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var count int
	bus.SubscribeAll(func(domain.Event) { count++ })

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	bus.Publish(domain.NewRateChangedEvent(1.25))
	bus.Publish(domain.NewShuffleToggledEvent(true))

	assert.Equal(t, 3, count)
}

func TestSyncEventBus_Unsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var count int
	id := bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { count++ })

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	bus.Unsubscribe(id)
	bus.Publish(domain.NewVolumeChangedEvent(0.6))

	assert.Equal(t, 1, count)
}

func TestSyncEventBus_HandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var delivered bool
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(domain.NewVolumeChangedEvent(0.5))
	})
	assert.True(t, delivered)
}

func TestSyncEventBus_HasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	assert.False(t, bus.HasSubscribers(domain.EventVolumeChanged))

	id := bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventVolumeChanged))
	assert.False(t, bus.HasSubscribers(domain.EventRateChanged))

	bus.Unsubscribe(id)
	assert.False(t, bus.HasSubscribers(domain.EventVolumeChanged))
}

func TestSyncEventBus_CloseStopsDelivery(t *testing.T) {
	bus := NewSyncEventBus()

	var count int
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { count++ })

	require.NoError(t, bus.Close())
	assert.Error(t, bus.Close())

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	assert.Equal(t, 0, count)
}

func TestSyncEventBus_ConcurrentPublish(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var mu sync.Mutex
	var count int
	bus.Subscribe(domain.EventTrackProgress, func(domain.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(domain.NewTrackProgressEvent(time.Duration(j)*time.Second, 3*time.Minute))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, count)
}
