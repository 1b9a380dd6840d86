package solve

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stephenmw/distress/packet"
)

func readSample(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile("testdata/sample.txt")
	require.NoError(t, err)
	return string(b)
}

func sampleCorpus(t *testing.T) Corpus {
	t.Helper()

	c, err := ReadCorpus(context.Background(), strings.NewReader(readSample(t)), 1)
	require.NoError(t, err)
	return c
}

func TestReadCorpus(t *testing.T) {
	in := readSample(t)

	for _, workers := range []int{-1, 0, 1, 3, 16} {
		c, err := ReadCorpus(context.Background(), strings.NewReader(in), workers)
		require.NoError(t, err)
		require.Len(t, c, 16)

		assert.Equal(t, "[1,1,3,1,1]", c[0].String())
		assert.Equal(t, "[[]]", c[13].String())
		assert.Equal(t, "[1,[2,[3,[4,[5,6,0]]]],8,9]", c[15].String())
	}
}

func TestReadCorpusBlankLines(t *testing.T) {
	in := "\r\n[1]\r\n  \r\n\n[2]  \n\n\n"

	c, err := ReadCorpus(context.Background(), strings.NewReader(in), 2)
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "[1]", c[0].String())
	assert.Equal(t, "[2]", c[1].String())
}

func TestReadCorpusEmpty(t *testing.T) {
	c, err := ReadCorpus(context.Background(), strings.NewReader(""), 4)
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestReadCorpusMalformed(t *testing.T) {
	in := "[1]\n[2]\n\n[3\n[4]\n"

	_, err := ReadCorpus(context.Background(), strings.NewReader(in), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, packet.ErrMalformed)
	assert.Contains(t, err.Error(), "line 4")
}

func TestReadCorpusCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCorpus(ctx, strings.NewReader(readSample(t)), 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPairSum(t *testing.T) {
	assert.Equal(t, 13, PairSum(sampleCorpus(t)))
	assert.Zero(t, PairSum(nil))
}

func TestPairSumUnpaired(t *testing.T) {
	c := sampleCorpus(t)

	// pair 8 is not in order, so dropping its second packet changes nothing
	assert.Equal(t, 13, PairSum(c[:len(c)-1]))
	assert.Equal(t, 13, PairSum(append(c, packet.MustParse("[1]"))))
	assert.Zero(t, PairSum(c[:1]))
}

func TestRank(t *testing.T) {
	sorted, positions := Rank(sampleCorpus(t), DefaultDividers()...)
	require.Len(t, sorted, 18)
	assert.Equal(t, []int{10, 14}, positions)
	assert.Equal(t, "[[2]]", sorted[9].String())
	assert.Equal(t, "[[6]]", sorted[13].String())

	_, positions = Rank(sampleCorpus(t), packet.MustParse("[[6]]"), packet.MustParse("[[2]]"))
	assert.Equal(t, []int{14, 10}, positions)
}

func TestRankDividerTies(t *testing.T) {
	c := Corpus{packet.MustParse("[[2]]"), packet.MustParse("[2]")}

	sorted, positions := Rank(c, packet.MustParse("[[2]]"))
	assert.Equal(t, []int{1}, positions)
	assert.Len(t, sorted, 3)

	// dividers tied with each other keep the order they were given in
	_, positions = Rank(nil, packet.MustParse("[2]"), packet.MustParse("[[2]]"))
	assert.Equal(t, []int{1, 2}, positions)
}

func TestDecoderKeyWithTiedPackets(t *testing.T) {
	c := append(sampleCorpus(t), packet.MustParse("[2]"), packet.MustParse("[6]"))
	d := DefaultDividers()

	_, positions := Rank(c, d...)
	assert.Equal(t, []int{10, 15}, positions)
	assert.Equal(t, 150, DecoderKey(c))
	assert.Equal(t, 150, DecoderKeyByCount(c, d[0], d[1]))

	tied := Corpus{packet.MustParse("[[2]]"), packet.MustParse("[[6]]"), packet.MustParse("[2]"), packet.MustParse("[[[6]]]")}
	assert.Equal(t, DecoderKey(tied), DecoderKeyByCount(tied, d[0], d[1]))
	assert.Equal(t, 1*4, DecoderKey(tied))
}

func TestDecoderKey(t *testing.T) {
	c := sampleCorpus(t)

	assert.Equal(t, 140, DecoderKey(c))
	assert.Equal(t, 140, DecoderKey(c, DefaultDividers()...))
	assert.Equal(t, 10, DecoderKey(c, packet.MustParse("[[2]]")))
	assert.Equal(t, 10*14*19, DecoderKey(c, append(DefaultDividers(), packet.MustParse("[[10]]"))...))

	assert.Equal(t, 2, DecoderKey(nil))
}

func TestDecoderKeyByCount(t *testing.T) {
	c := sampleCorpus(t)
	d := DefaultDividers()

	assert.Equal(t, 140, DecoderKeyByCount(c, d[0], d[1]))
	assert.Equal(t, 140, DecoderKeyByCount(c, d[1], d[0]))
	assert.Equal(t, DecoderKey(nil), DecoderKeyByCount(nil, d[0], d[1]))

	for i := range c {
		sub := c[:i]
		assert.Equal(t, DecoderKey(sub), DecoderKeyByCount(sub, d[0], d[1]), "first %d packets", i)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": StrategySort, "sort": StrategySort, "count": StrategyCount} {
		got, err := ParseStrategy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("bogus")
	assert.Error(t, err)
}

func TestSolve(t *testing.T) {
	for _, strategy := range []Strategy{StrategySort, StrategyCount} {
		t.Run(string(strategy), func(t *testing.T) {
			res, err := Solve(context.Background(), strings.NewReader(readSample(t)), Options{
				Workers:  4,
				Strategy: strategy,
			})
			require.NoError(t, err)
			assert.Len(t, res.Corpus, 16)
			assert.Equal(t, 13, res.Part1)
			assert.Equal(t, 140, res.Part2)
		})
	}
}

func TestSolveIsRepeatable(t *testing.T) {
	in := readSample(t)
	opts := Options{Workers: 8}

	first, err := Solve(context.Background(), strings.NewReader(in), opts)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Solve(context.Background(), strings.NewReader(in), opts)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSolveErrors(t *testing.T) {
	_, err := Solve(context.Background(), strings.NewReader("[1]\n[1,]\n"), Options{})
	assert.ErrorIs(t, err, packet.ErrMalformed)

	_, err = Solve(context.Background(), strings.NewReader(readSample(t)), Options{
		Strategy: StrategyCount,
		Dividers: append(DefaultDividers(), packet.MustParse("[[10]]")),
	})
	assert.ErrorContains(t, err, "needs 2 dividers")
}

func TestSolveUnpaired(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	in := readSample(t) + "\n[1]\n"
	res, err := Solve(context.Background(), strings.NewReader(in), Options{Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Len(t, res.Corpus, 17)
	assert.Equal(t, 13, res.Part1)
	assert.Equal(t, 11*15, res.Part2)

	warned := logs.FilterMessage("ignoring unpaired packet").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "[1]", warned[0].ContextMap()["packet"])
}

func TestSolveLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	_, err := Solve(context.Background(), strings.NewReader(readSample(t)), Options{Logger: zap.New(core)})
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("corpus parsed").Len())
	solved := logs.FilterMessage("solved").All()
	require.Len(t, solved, 1)

	fields := solved[0].ContextMap()
	assert.EqualValues(t, 16, fields["packets"])
	assert.EqualValues(t, 13, fields["part1"])
	assert.EqualValues(t, 140, fields["part2"])
}
