package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Alphabet is the canonical set of tracked keys: the 26 lower-case letters plus space.
const Alphabet = "abcdefghijklmnopqrstuvwxyz "

type Unigraph struct {
	ID        string         `json:"id" db:"id"`
	SummaryID string         `json:"-" db:"summary_id"`
	Key       string         `json:"key" db:"key"`
	Count     int            `json:"count" db:"count"`
	Accuracy  int            `json:"accuracy" db:"accuracy"`
	Mistyped  map[string]int `json:"mistyped,omitempty" db:"-"`
}

type Digraph struct {
	ID           string `json:"id" db:"id"`
	SummaryID    string `json:"-" db:"summary_id"`
	Key          string `json:"key" db:"key"`
	Count        int    `json:"count" db:"count"`
	Accuracy     int    `json:"accuracy" db:"accuracy"`
	MeanInterval int    `json:"mean_interval" db:"mean_interval"`
}

// UnigraphObservation is what a single session reports for one character.
type UnigraphObservation struct {
	Count    int            `json:"count"`
	Accuracy int            `json:"accuracy"`
	Mistyped map[string]int `json:"mistyped,omitempty"`
}

// DigraphObservation is what a single session reports for one character pair.
type DigraphObservation struct {
	Count        int `json:"count"`
	Accuracy     int `json:"accuracy"`
	MeanInterval int `json:"mean_interval"`
}

// IsUnigraphKey reports whether key is a single character of the canonical alphabet.
func IsUnigraphKey(key string) bool {
	return utf8.RuneCountInString(key) == 1 && strings.Contains(Alphabet, key)
}

// IsDigraphKey reports whether key is an ordered pair of canonical characters.
func IsDigraphKey(key string) bool {
	if len(key) != 2 {
		return false
	}
	return IsUnigraphKey(key[:1]) && IsUnigraphKey(key[1:])
}

// weightedMean merges two averages by their observation counts.
// Callers must pass the counts as they were before either side is updated.
func weightedMean(oldValue, oldCount, newValue, newCount int) int {
	total := oldCount + newCount
	if total == 0 {
		return oldValue
	}
	sum := float64(oldValue)*float64(oldCount) + float64(newValue)*float64(newCount)
	return int(math.RoundToEven(sum / float64(total)))
}

func (u *Unigraph) merge(obs UnigraphObservation) {
	if u.Count+obs.Count > 0 {
		u.Accuracy = weightedMean(u.Accuracy, u.Count, obs.Accuracy, obs.Count)
	}
	u.Count += obs.Count

	if len(obs.Mistyped) == 0 {
		return
	}
	if u.Mistyped == nil {
		u.Mistyped = make(map[string]int, len(obs.Mistyped))
	}
	for wrong, n := range obs.Mistyped {
		u.Mistyped[wrong] += n
	}
}

func (d *Digraph) merge(obs DigraphObservation) {
	if d.Count+obs.Count > 0 {
		d.Accuracy = weightedMean(d.Accuracy, d.Count, obs.Accuracy, obs.Count)
		d.MeanInterval = weightedMean(d.MeanInterval, d.Count, obs.MeanInterval, obs.Count)
	}
	d.Count += obs.Count
}

func (u *Unigraph) clone() *Unigraph {
	c := *u
	if u.Mistyped != nil {
		c.Mistyped = make(map[string]int, len(u.Mistyped))
		for k, v := range u.Mistyped {
			c.Mistyped[k] = v
		}
	}
	return &c
}

func (d *Digraph) clone() *Digraph {
	c := *d
	return &c
}
