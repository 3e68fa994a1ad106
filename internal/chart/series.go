package chart

import (
	"slices"
	"time"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// LabelLayout formats chart bucket and marker labels.
const LabelLayout = "15:04"

// Buckets aggregates stress samples inside the visible window into one
// bucket per local calendar minute. When several samples share a minute the
// last one in input order wins. Buckets are returned in time order.
func Buckets(samples []model.HealthSample, visible model.VisibleWindow, loc *time.Location) []model.ChartBucket {
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[int64]int)
	buckets := []model.ChartBucket{}

	for _, s := range samples {
		if s.Kind != model.KindStress || !visible.Contains(s.Timestamp) {
			continue
		}
		minute := minuteOf(s.Timestamp, loc)
		v := s.Value

		if i, ok := index[minute]; ok {
			buckets[i].Stress = &v
			continue
		}
		index[minute] = len(buckets)
		buckets = append(buckets, model.ChartBucket{Minute: minute, Stress: &v})
	}

	slices.SortFunc(buckets, func(a, b model.ChartBucket) int {
		switch {
		case a.Minute < b.Minute:
			return -1
		case a.Minute > b.Minute:
			return 1
		default:
			return 0
		}
	})
	for i := range buckets {
		buckets[i].Label = Label(buckets[i].Minute, loc)
	}
	return buckets
}

// Label renders ts as local HH:MM.
func Label(ts int64, loc *time.Location) string {
	return model.TimeOf(ts, loc).Format(LabelLayout)
}

// minuteOf truncates ts to the start of its minute on the local wall clock.
// Zones with second-level offsets make this differ from an absolute truncation.
func minuteOf(ts int64, loc *time.Location) int64 {
	lt := model.TimeOf(ts, loc)
	lt = lt.Add(-time.Duration(lt.Second())*time.Second - time.Duration(lt.Nanosecond()))
	return model.Millis(lt)
}
