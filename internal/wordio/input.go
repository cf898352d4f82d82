// Package wordio sequences a finite, lazily-consumed stream of 16-bit
// words drawn from one or more queued sources, for use as a Tastier VM's
// input source. It mirrors gothird's internal/fileinput Queue/nextIn
// structure, but drains whitespace-separated integers instead of runes.
package wordio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Queue implements sequential word reading through a queue of one or more
// input streams, each holding whitespace-separated decimal integers.
type Queue struct {
	sc      *bufio.Scanner
	Sources []io.Reader

	name  string
	count int
}

// NewQueue returns a Queue draining the given sources in order.
func NewQueue(sources ...io.Reader) *Queue {
	return &Queue{Sources: append([]io.Reader(nil), sources...)}
}

// Add appends a further source to the end of the queue.
func (q *Queue) Add(r io.Reader) {
	q.Sources = append(q.Sources, r)
}

// Next reads the next word from the queue, advancing through sources as
// they're exhausted. Returns io.EOF once every queued source is drained.
func (q *Queue) Next() (int16, error) {
	for {
		if q.sc == nil && !q.nextSource() {
			return 0, io.EOF
		}
		if q.sc.Scan() {
			text := q.sc.Text()
			n, err := strconv.ParseInt(text, 10, 16)
			if err != nil {
				return 0, fmt.Errorf("wordio: %v[%d]: invalid word %q: %w", q.name, q.count, text, err)
			}
			q.count++
			return int16(n), nil
		}
		if err := q.sc.Err(); err != nil {
			return 0, err
		}
		q.sc = nil
	}
}

func (q *Queue) nextSource() bool {
	if len(q.Sources) == 0 {
		return false
	}
	r := q.Sources[0]
	q.Sources = q.Sources[1:]
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	q.sc = sc
	q.name = nameOf(r)
	q.count = 0
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
