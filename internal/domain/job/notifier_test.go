package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeNotifier_BroadcastReachesSubscribersOfKind(t *testing.T) {
	n := NewChangeNotifier()
	unsubA, chA := n.Subscribe(KindScraping)
	defer unsubA()
	unsubB, chB := n.Subscribe(KindTextEmbedding)
	defer unsubB()

	n.Broadcast(KindScraping)

	select {
	case <-chA:
	case <-time.After(time.Second):
		t.Fatal("expected scraping subscriber to be notified")
	}
	select {
	case <-chB:
		t.Fatal("text embedding subscriber must not be notified")
	default:
	}
}

func TestChangeNotifier_CoalescesPendingSignals(t *testing.T) {
	n := NewChangeNotifier()
	unsub, ch := n.Subscribe(KindScraping)
	defer unsub()

	n.Broadcast(KindScraping)
	n.Broadcast(KindScraping)
	n.Broadcast(KindScraping)

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestChangeNotifier_UnsubscribeClosesChannel(t *testing.T) {
	n := NewChangeNotifier()
	unsub, ch := n.Subscribe(KindImageEmbedding)
	n.Broadcast(KindImageEmbedding)

	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok, "channel should be drained and closed")
	assert.Equal(t, 0, n.Subscribers(KindImageEmbedding))
}

func TestChangeNotifier_StopAll(t *testing.T) {
	n := NewChangeNotifier()
	_, ch := n.Subscribe(KindScraping)

	n.StopAll()

	_, ok := <-ch
	require.False(t, ok)

	_, late := n.Subscribe(KindScraping)
	_, ok = <-late
	assert.False(t, ok, "subscriptions after StopAll are closed immediately")
}
