package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublish_QueuesTypedPayload(t *testing.T) {
	h := NewHub(zap.NewNop())

	h.Publish(EventPriceDrop, map[string]interface{}{"product_id": "p1", "new_price": 500})

	require.Len(t, h.Broadcast, 1)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(<-h.Broadcast, &got))
	assert.Equal(t, "price_drop", got["type"])
	assert.Equal(t, "p1", got["product_id"])
	assert.EqualValues(t, 500, got["new_price"])
}

func TestPublish_DropsWhenFull(t *testing.T) {
	h := NewHub(zap.NewNop())
	for i := 0; i < cap(h.Broadcast)+10; i++ {
		h.Publish(EventOrderCreated, nil)
	}
	assert.Len(t, h.Broadcast, cap(h.Broadcast))
}

func TestPublish_NilHub(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(EventOrderCreated, nil) })
}

func TestRun_StopsOnStop(t *testing.T) {
	h := NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()
	<-done
}

func TestJoinAndLeave_ReturnAfterStop(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Stop()

	left := make(chan struct{})
	go func() {
		assert.False(t, h.Join(nil))
		h.Leave(nil)
		close(left)
	}()

	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Join/Leave blocked on a stopped hub")
	}
}
