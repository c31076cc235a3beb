package analysis

import (
	"sort"
	"strings"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// maxOccurrences caps the sample occurrences kept per sequence.
const maxOccurrences = 10

// Sequence is a run of moves that recurs across games.
type Sequence struct {
	N           int          `json:"n"`
	Moves       []string     `json:"moves"`
	Count       int          `json:"count"`
	Occurrences []Occurrence `json:"occurrences,omitempty"`
}

// Occurrence is where a sequence was found.
type Occurrence struct {
	GameID     string `json:"game_id"`
	StartIndex int    `json:"start_index"`
	TsMs       int64  `json:"ts_ms"`
}

// SequenceReport holds the most frequent sequences, keyed by length.
type SequenceReport struct {
	Top map[int][]Sequence `json:"top"`
}

// sequenceKey identifies a run of moves. Marks keep their player, so X
// and O openings on the same square count apart.
func sequenceKey(moves []types.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}
	return strings.Join(parts, " ")
}

// MineSequences finds the topK most frequent move runs of each length in
// [minN, maxN] across games. Runs seen only once are dropped.
func MineSequences(games []GameRecord, minN, maxN, topK int) *SequenceReport {
	report := &SequenceReport{Top: make(map[int][]Sequence)}
	for n := max(minN, 1); n <= maxN; n++ {
		counts := make(map[string]*Sequence)
		for _, g := range games {
			for start := 0; start+n <= len(g.Moves); start++ {
				run := g.Moves[start : start+n]
				key := sequenceKey(run)
				seq, ok := counts[key]
				if !ok {
					seq = &Sequence{N: n, Moves: strings.Fields(key)}
					counts[key] = seq
				}
				seq.Count++
				if len(seq.Occurrences) < maxOccurrences {
					seq.Occurrences = append(seq.Occurrences, Occurrence{
						GameID:     g.GameID,
						StartIndex: start,
						TsMs:       run[0].Timestamp,
					})
				}
			}
		}
		if top := topSequences(counts, 2, topK); len(top) > 0 {
			report.Top[n] = top
		}
	}
	return report
}

// Openings counts the first depth moves of every game long enough.
func Openings(games []GameRecord, depth, topK int) []Sequence {
	if depth <= 0 {
		return nil
	}
	counts := make(map[string]*Sequence)
	for _, g := range games {
		if len(g.Moves) < depth {
			continue
		}
		key := sequenceKey(g.Moves[:depth])
		seq, ok := counts[key]
		if !ok {
			seq = &Sequence{N: depth, Moves: strings.Fields(key)}
			counts[key] = seq
		}
		seq.Count++
		if len(seq.Occurrences) < maxOccurrences {
			seq.Occurrences = append(seq.Occurrences, Occurrence{GameID: g.GameID})
		}
	}
	return topSequences(counts, 1, topK)
}

// topSequences sorts by count, most frequent first, ties by notation.
func topSequences(counts map[string]*Sequence, minCount, topK int) []Sequence {
	result := make([]Sequence, 0, len(counts))
	for _, seq := range counts {
		if seq.Count >= minCount {
			result = append(result, *seq)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return strings.Join(result[i].Moves, " ") < strings.Join(result[j].Moves, " ")
	})
	if topK > 0 && len(result) > topK {
		result = result[:topK]
	}
	return result
}
