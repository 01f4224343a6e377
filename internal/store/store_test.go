package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/grailed-admin/internal/domain/job"
)

func TestStore_InitialState(t *testing.T) {
	s := New(job.KindScraping, nil)
	snap := s.Snapshot()

	assert.False(t, snap.Status.Active)
	assert.Empty(t, snap.Logs)
	assert.Equal(t, job.DefaultSummary(job.KindScraping), snap.Status.Summary)
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	s := New(job.KindScraping, nil)
	s.Append(job.Info("one"))
	before := s.Snapshot()

	s.Append(job.Info("two"))
	s.SetActive(true)

	assert.Len(t, before.Logs, 1)
	assert.False(t, before.Status.Active)
	after := s.Snapshot()
	assert.Len(t, after.Logs, 2)
	assert.Greater(t, after.Version, before.Version)
}

func TestStore_ClearLogsKeepsStatus(t *testing.T) {
	set := NewSet()
	scraping := set.Get(job.KindScraping)
	text := set.Get(job.KindTextEmbedding)

	scraping.SetActive(true, job.Info("started"))
	scraping.ApplyCheckpoint(job.Checkpoint{Kind: job.KindScraping, Scraping: &job.ScrapingCheckpoint{DesignerSlug: "acme", TotalItemsScraped: 3}})
	text.Append(job.Info("text log"))
	statusBefore := scraping.Snapshot().Status

	require.True(t, scraping.ClearLogs())

	assert.Empty(t, scraping.Snapshot().Logs)
	assert.Equal(t, statusBefore, scraping.Snapshot().Status)
	assert.Len(t, text.Snapshot().Logs, 1)
}

func TestStore_ClosedIgnoresMutations(t *testing.T) {
	s := New(job.KindImageEmbedding, nil)
	s.Close()

	assert.False(t, s.Append(job.Error("late")))
	assert.False(t, s.SetActive(true))
	assert.Empty(t, s.Snapshot().Logs)
	assert.False(t, s.Snapshot().Status.Active)
	assert.True(t, s.Closed())
}

func TestStore_DeactivateReportsPreviousState(t *testing.T) {
	s := New(job.KindScraping, nil)
	assert.False(t, s.Deactivate())

	s.SetActive(true)
	assert.True(t, s.Deactivate())
	assert.False(t, s.Active())
}

func TestStore_DeactivateIsAtomic(t *testing.T) {
	s := New(job.KindScraping, nil)
	s.SetActive(true)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Deactivate() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestStore_SubscribeSignalsChanges(t *testing.T) {
	set := NewSet()
	defer set.Close()
	s := set.Get(job.KindScraping)

	unsub, ch := s.Subscribe()
	defer unsub()

	s.Append(job.Info("hello"))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected change signal")
	}
}

func TestSet_CloseReleasesSubscribers(t *testing.T) {
	set := NewSet()
	_, ch := set.Get(job.KindTextEmbedding).Subscribe()

	set.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.True(t, set.Get(job.KindTextEmbedding).Closed())
}
