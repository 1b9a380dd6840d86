// Package solve runs the two distress signal reductions over a corpus of
// packets: the pair sum and the decoder key.
package solve

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/stephenmw/distress/packet"
)

// DefaultDividers returns the divider packets [[2]] and [[6]].
func DefaultDividers() []packet.Element {
	return []packet.Element{
		packet.MustParse("[[2]]"),
		packet.MustParse("[[6]]"),
	}
}

// PairSum groups the corpus into consecutive pairs and sums the 1-based
// indices of the pairs whose first packet orders strictly before the second.
// A trailing packet without a partner is ignored.
func PairSum(c Corpus) int {
	sum := 0
	for i := 0; i+1 < len(c); i += 2 {
		if packet.Less(c[i], c[i+1]) {
			sum += i/2 + 1
		}
	}

	return sum
}

// Rank sorts the corpus together with the dividers and returns the sorted
// packets along with the 1-based position of each divider, in the order the
// dividers were given. The sort is stable with dividers placed ahead of the
// corpus, so a packet equal to a divider ranks after it.
func Rank(c Corpus, dividers ...packet.Element) ([]packet.Element, []int) {
	type entry struct {
		e       packet.Element
		divider int // index into dividers, -1 for corpus packets
	}

	all := make([]entry, 0, len(c)+len(dividers))
	for i, d := range dividers {
		all = append(all, entry{e: d, divider: i})
	}
	for _, e := range c {
		all = append(all, entry{e: e, divider: -1})
	}

	slices.SortStableFunc(all, func(a, b entry) int {
		return packet.Compare(a.e, b.e)
	})

	sorted := make([]packet.Element, len(all))
	positions := make([]int, len(dividers))
	for i, en := range all {
		sorted[i] = en.e
		if en.divider >= 0 {
			positions[en.divider] = i + 1
		}
	}

	return sorted, positions
}

// DecoderKey is the product of the dividers' positions after sorting them
// into the corpus. DefaultDividers are used when none are given.
func DecoderKey(c Corpus, dividers ...packet.Element) int {
	if len(dividers) == 0 {
		dividers = DefaultDividers()
	}

	_, positions := Rank(c, dividers...)

	key := 1
	for _, p := range positions {
		key *= p
	}
	return key
}

// DecoderKeyByCount computes DecoderKey for exactly two dividers without
// sorting: a divider's position is one more than the number of packets
// strictly below it, counting the other divider. It always agrees with
// DecoderKey.
func DecoderKeyByCount(c Corpus, a, b packet.Element) int {
	if packet.Compare(a, b) > 0 {
		a, b = b, a
	}

	below := make(Corpus, 0, len(c))
	for _, e := range c {
		if packet.Less(e, b) {
			below = append(below, e)
		}
	}

	belowA := 0
	for _, e := range below {
		if packet.Less(e, a) {
			belowA++
		}
	}

	// a always ranks ahead of b
	return (belowA + 1) * (len(below) + 2)
}

// Strategy selects how the decoder key is computed.
type Strategy string

const (
	// StrategySort sorts the whole corpus with the dividers.
	StrategySort Strategy = "sort"
	// StrategyCount counts packets below each divider; it needs exactly two
	// dividers.
	StrategyCount Strategy = "count"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySort:
		return StrategySort, nil
	case StrategyCount:
		return StrategyCount, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

type Options struct {
	Dividers []packet.Element // DefaultDividers when empty
	Workers  int
	Strategy Strategy
	Logger   *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type Result struct {
	Corpus Corpus
	Part1  int
	Part2  int
}

// Solve reads a corpus from r and computes both answers.
func Solve(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	start := time.Now()

	c, err := ReadCorpus(ctx, r, opts.Workers)
	if err != nil {
		return Result{}, err
	}
	opts.logger().Debug("corpus parsed",
		zap.Int("packets", len(c)),
		zap.Int("workers", opts.Workers),
		zap.Duration("elapsed", time.Since(start)),
	)

	return Evaluate(c, opts)
}

// Evaluate computes both answers for an already parsed corpus.
func Evaluate(c Corpus, opts Options) (Result, error) {
	dividers := opts.Dividers
	if len(dividers) == 0 {
		dividers = DefaultDividers()
	}

	if len(c)%2 != 0 {
		opts.logger().Warn("ignoring unpaired packet",
			zap.Int("packets", len(c)),
			zap.Stringer("packet", c[len(c)-1]),
		)
	}
	part1 := PairSum(c)

	var part2 int
	switch opts.Strategy {
	case StrategyCount:
		if len(dividers) != 2 {
			return Result{}, fmt.Errorf("strategy %q needs 2 dividers, have %d", StrategyCount, len(dividers))
		}
		part2 = DecoderKeyByCount(c, dividers[0], dividers[1])
	default:
		part2 = DecoderKey(c, dividers...)
	}

	opts.logger().Info("solved",
		zap.Int("packets", len(c)),
		zap.String("strategy", string(opts.Strategy)),
		zap.Int("part1", part1),
		zap.Int("part2", part2),
	)

	return Result{Corpus: c, Part1: part1, Part2: part2}, nil
}
