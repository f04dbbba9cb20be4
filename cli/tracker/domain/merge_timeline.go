package domain

import (
	"sort"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
)

type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(end time.Time, days int) Window {
	end = end.UTC()
	return Window{Start: end.Add(-time.Duration(days) * 24 * time.Hour), End: end}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MergeTimeline объединяет точки журнала и истории с текущей точкой.
// Текущая точка добавляется, только если она попадает в окно и строго новее
// всех остальных. Результат упорядочен по времени, дубликаты по
// (широта, долгота, время) удалены с сохранением первого вхождения.
// Второе значение сообщает, вошла ли текущая точка в результат.
func MergeTimeline(logPoints, historyPoints []types.LocationPoint, live *types.LocationPoint, window Window) ([]types.LocationPoint, bool) {
	merged := make([]types.LocationPoint, 0, len(logPoints)+len(historyPoints)+1)
	merged = append(merged, logPoints...)
	merged = append(merged, historyPoints...)

	liveIncluded := false
	if live != nil && window.Contains(live.Time) {
		lastKnown, found := latest(merged)
		if !found || live.Time.After(lastKnown) {
			merged = append(merged, *live)
			liveIncluded = true
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})

	return dedup(merged), liveIncluded
}

func latest(points []types.LocationPoint) (time.Time, bool) {
	if len(points) == 0 {
		return time.Time{}, false
	}

	last := points[0].Time
	for _, p := range points[1:] {
		if p.Time.After(last) {
			last = p.Time
		}
	}
	return last, true
}

func dedup(points []types.LocationPoint) []types.LocationPoint {
	seen := make(map[types.DedupKey]struct{}, len(points))
	result := make([]types.LocationPoint, 0, len(points))

	for _, p := range points {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}

	return result
}
