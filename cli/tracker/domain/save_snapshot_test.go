package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/stretchr/testify/assert"
)

func TestSaveSnapshotDebounce(t *testing.T) {
	base := fixedNow.Add(-time.Hour)

	tests := []struct {
		name     string
		existing []time.Time
		at       time.Time
		inserted bool
	}{
		{name: "empty history", at: base, inserted: true},
		{name: "row one minute earlier", existing: []time.Time{base.Add(-time.Minute)}, at: base, inserted: false},
		{name: "row exactly two minutes earlier", existing: []time.Time{base.Add(-2 * time.Minute)}, at: base, inserted: false},
		{name: "row with the same time", existing: []time.Time{base}, at: base, inserted: false},
		{name: "row just over two minutes earlier", existing: []time.Time{base.Add(-2*time.Minute - time.Second)}, at: base, inserted: true},
		{name: "only later rows", existing: []time.Time{base.Add(time.Minute)}, at: base, inserted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			for _, at := range tt.existing {
				store.history = append(store.history, historyRow{deviceID: 1, lat: 5, lon: 5, recordedAt: at, source: "history"})
			}
			saver := SaveSnapshot{Repository: store}

			inserted, err := saver.Run(context.Background(), 1, point(1, 2, tt.at, types.KindCurrent), SourceSnapshot)

			assert.NoError(t, err)
			assert.Equal(t, tt.inserted, inserted)
			assert.Len(t, store.rows(1), len(tt.existing)+map[bool]int{true: 1, false: 0}[tt.inserted])
		})
	}
}

func TestSaveSnapshotDevicesAreIndependent(t *testing.T) {
	store := newFakeStore()
	saver := SaveSnapshot{Repository: store, Spacing: 2 * time.Minute}
	ctx := context.Background()
	at := fixedNow

	inserted, err := saver.Run(ctx, 1, point(1, 1, at, types.KindCurrent), SourceSnapshot)
	assert.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = saver.Run(ctx, 2, point(1, 1, at, types.KindCurrent), SourceSnapshotAll)
	assert.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = saver.Run(ctx, 1, point(1, 1, at.Add(90*time.Second), types.KindCurrent), SourceSnapshotAll)
	assert.NoError(t, err)
	assert.False(t, inserted)

	rows := store.rows(2)
	if assert.Len(t, rows, 1) {
		assert.Equal(t, SourceSnapshotAll, rows[0].source)
	}
}

func TestSaveSnapshotConcurrentCallsInsertOnce(t *testing.T) {
	store := newFakeStore()
	saver := SaveSnapshot{Repository: store}
	at := fixedNow

	var wg sync.WaitGroup
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := saver.Run(context.Background(), 7, point(1, 1, at, types.KindCurrent), SourceSnapshot)
			assert.NoError(t, err)
			results <- inserted
		}()
	}
	wg.Wait()
	close(results)

	insertedCount := 0
	for inserted := range results {
		if inserted {
			insertedCount++
		}
	}

	assert.Equal(t, 1, insertedCount)
	assert.Len(t, store.rows(7), 1)
}

func TestSaveSnapshotErrors(t *testing.T) {
	store := newFakeStore()
	store.insertErr[3] = errors.New("deadlock detected")
	saver := SaveSnapshot{Repository: store}
	ctx := context.Background()

	inserted, err := saver.Run(ctx, 3, point(1, 1, fixedNow, types.KindCurrent), SourceSnapshot)
	assert.Error(t, err)
	assert.False(t, inserted)

	_, err = saver.Run(ctx, 4, point(1, 1, fixedNow, types.KindCurrent), "manual")
	assert.Error(t, err)

	_, err = saver.Run(ctx, 4, point(0, 0, fixedNow, types.KindCurrent), SourceSnapshot)
	assert.Error(t, err)
	assert.Empty(t, store.rows(4))
}
