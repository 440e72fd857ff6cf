package liveregistry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert_CreatesOnKnownDuration(t *testing.T) {
	r := New()
	now := time.Now()
	period := 60
	res := r.Upsert(Key{ChatID: 1, MessageID: 1}, "emp-1", "proj", &period, false, now)

	assert.True(t, res.IsLive)
	require.NotNil(t, res.Entry.LiveUntilMs)
	assert.Equal(t, now.UnixMilli()+60000, *res.Entry.LiveUntilMs)
}

func TestUpsert_AdvancesExistingPreservingLiveUntil(t *testing.T) {
	r := New()
	t0 := time.Now()
	period := 60
	r.Upsert(Key{ChatID: 1, MessageID: 1}, "emp-1", "proj", &period, false, t0)

	t1 := t0.Add(10 * time.Second)
	res := r.Upsert(Key{ChatID: 1, MessageID: 1}, "emp-1", "proj", nil, false, t1)

	assert.True(t, res.IsLive)
	assert.Equal(t, t1.UnixMilli(), res.Entry.LastUpdateMs)
	require.NotNil(t, res.Entry.LiveUntilMs)
	assert.Equal(t, t0.UnixMilli()+60000, *res.Entry.LiveUntilMs)
}

func TestUpsert_EditWithoutPriorEntryCreatesUnknownDuration(t *testing.T) {
	r := New()
	now := time.Now()
	res := r.Upsert(Key{ChatID: 2, MessageID: 5}, "emp-2", "proj", nil, true, now)

	assert.True(t, res.IsLive)
	assert.Nil(t, res.Entry.LiveUntilMs)
}

func TestUpsert_StaticShareWithoutPriorEntryDoesNotTouchRegistry(t *testing.T) {
	r := New()
	res := r.Upsert(Key{ChatID: 3, MessageID: 9}, "emp-3", "proj", nil, false, time.Now())

	assert.False(t, res.IsLive)
	assert.Equal(t, 0, r.Len())
}

func TestForEach_SnapshotAllowsDeleteDuringIteration(t *testing.T) {
	r := New()
	period := 60
	r.Upsert(Key{ChatID: 1, MessageID: 1}, "emp-1", "proj", &period, false, time.Now())
	r.Upsert(Key{ChatID: 2, MessageID: 2}, "emp-2", "proj", &period, false, time.Now())

	visited := 0
	r.ForEach(func(key Key, entry Entry) {
		visited++
		r.Delete(key)
	})

	assert.Equal(t, 2, visited)
	assert.Equal(t, 0, r.Len())
}
