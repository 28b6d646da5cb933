package mood

import (
	"math"
	"time"
)

type Summary struct {
	Days      int            `json:"days"`
	Count     int            `json:"count"`
	Average   float64        `json:"average"`
	Min       int            `json:"min"`
	Max       int            `json:"max"`
	TagCounts map[string]int `json:"tagCounts"`
	First     *time.Time     `json:"first"`
	Last      *time.Time     `json:"last"`
}

// Summarize expects entries in ascending date order, as History returns them.
func Summarize(days int, entries []Entry) Summary {
	s := Summary{Days: days, TagCounts: map[string]int{}}
	if len(entries) == 0 {
		return s
	}

	s.Count = len(entries)
	s.Min, s.Max = MaxMood, MinMood
	total := 0
	for _, e := range entries {
		total += e.Mood
		s.Min = min(s.Min, e.Mood)
		s.Max = max(s.Max, e.Mood)
		for _, t := range e.Tags {
			s.TagCounts[t]++
		}
	}
	s.Average = math.Round(float64(total)/float64(s.Count)*100) / 100

	first, last := entries[0].Date, entries[len(entries)-1].Date
	s.First, s.Last = &first, &last
	return s
}
