package date

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of values, each associated with a
// specific day. Days are unique and the series is always sorted.
type History[T float32 | float64 | string] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the latest day and value in the history, or zero values
// when the history is empty.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// Earliest returns the first day and value in the history, or zero values
// when the history is empty.
func (h *History[T]) Earliest() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, *new(T)
	}
	return h.days[0], h.values[0]
}

// chronological sorts a history by day.
type chronological[T float32 | float64 | string] struct{ *History[T] }

func (s chronological[T]) Len() int           { return len(s.days) }
func (s chronological[T]) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// Append adds a point to the history. An existing value on that day is
// overwritten, the most recent data wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	sort.Sort(chronological[T]{h})
	return h
}

// Values returns an iterator over all day/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at exactly 'day', if present.
func (h *History[T]) Get(day Date) (T, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it. It returns false when no point exists on or before the day;
// there is no extrapolation from later points.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
	if found {
		return h.values[i], true
	}
	// i is the insertion index; the last entry before 'day' is at i-1.
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// iterate yields all unique dates from multiple sorted series, in order.
func iterate(series ...[]Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(series))
		for {
			var min Date
			var any bool
			for i, index := range indexes {
				if index >= len(series[i]) {
					continue
				}
				on := series[i][index]
				if !any || on.Before(min) {
					min = on
					any = true
				}
			}
			if !any {
				return // all series consumed
			}
			for i, index := range indexes {
				if index < len(series[i]) && series[i][index] == min {
					indexes[i]++
				}
			}
			if !yield(min) {
				return
			}
		}
	}
}

// Iterate returns an iterator over all unique, sorted dates across
// multiple histories.
func Iterate[T float32 | float64 | string](histories ...*History[T]) iter.Seq[Date] {
	dates := make([][]Date, 0, len(histories))
	for _, h := range histories {
		dates = append(dates, h.days)
	}
	return iterate(dates...)
}
