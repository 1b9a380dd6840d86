package solve

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stephenmw/distress/packet"
)

// maxLineSize bounds a single packet line.
const maxLineSize = 1 << 20

// Corpus is the packets of an input in the order they appeared.
type Corpus []packet.Element

type rawLine struct {
	num  int
	text string
}

// ReadCorpus reads every non-blank line of r as a packet. Lines are parsed on
// up to workers goroutines; the first malformed line stops the read and its
// error names the 1-based line number.
func ReadCorpus(ctx context.Context, r io.Reader, workers int) (Corpus, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	if workers < 1 {
		workers = 1
	}

	c := make(Corpus, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, l := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			e, err := packet.Parse(l.text)
			if err != nil {
				return fmt.Errorf("line %d: %w", l.num, err)
			}

			c[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c, nil
}

func readLines(r io.Reader) ([]rawLine, error) {
	var lines []rawLine

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineSize)

	for num := 1; s.Scan(); num++ {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}
		lines = append(lines, rawLine{num: num, text: text})
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return lines, nil
}
