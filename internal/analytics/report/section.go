package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"golang.org/x/sync/errgroup"
)

// section is the tagged result of one concurrently computed part of a report.
// A failed section keeps the zero value and carries a notice instead.
type section[T any] struct {
	value  T
	notice string
}

// notices is an ordered set of degradation messages.
type notices []string

func (n *notices) add(msgs ...string) {
	for _, m := range msgs {
		if m == "" {
			continue
		}
		dup := false
		for _, have := range *n {
			if have == m {
				dup = true
				break
			}
		}
		if !dup {
			*n = append(*n, m)
		}
	}
}

func (s *section[T]) get(n *notices) T {
	n.add(s.notice)
	return s.value
}

func unavailable(name string) string {
	return name + " is temporarily unavailable"
}

// guard recovers a panic in fn into ErrSectionPanic so the assembler fails
// the whole request instead of crashing the process.
func guard(ctx context.Context, name string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Default().ErrorContext(ctx, "report section panicked",
					slog.String("section", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("%w: %s: %v", gerr.ErrSectionPanic, name, r)
			}
		}()
		fn()
		return nil
	}
}

// spawn runs fn on g. Siblings are never cancelled by a failing section.
func spawn[T any](ctx context.Context, g *errgroup.Group, name string, fn func(ctx context.Context) (T, error)) *section[T] {
	s := &section[T]{}
	g.Go(guard(ctx, name, func() {
		v, err := fn(ctx)
		if err != nil {
			slog.Default().ErrorContext(ctx, "report section degraded",
				slog.String("section", name),
				slog.String("err", err.Error()),
			)
			s.notice = unavailable(name)
			return
		}
		s.value = v
	}))
	return s
}

// comparison holds the current and previous window aggregations. A failed
// window is left empty.
type comparison struct {
	cur, prev *aggregate.Result
	notices   notices
}

func (s *Service) compare(ctx context.Context, g *errgroup.Group, rr entity.ReportRange, filter entity.OrderFilter) *comparison {
	c := &comparison{
		cur:  aggregate.Empty(rr.Current),
		prev: aggregate.Empty(rr.Previous),
	}
	g.Go(guard(ctx, "period comparison", func() {
		cur, prev, curErr, prevErr := s.agg.Pair(ctx, rr.Current, rr.Previous, filter)
		for _, err := range []error{curErr, prevErr} {
			if errors.Is(err, gerr.ErrSectionPanic) {
				panic(err)
			}
		}
		if curErr != nil {
			slog.Default().ErrorContext(ctx, "can't aggregate current period", slog.String("err", curErr.Error()))
			c.notices.add(unavailable("current period data"))
		} else {
			c.cur = cur
		}
		if prevErr != nil {
			slog.Default().ErrorContext(ctx, "can't aggregate previous period", slog.String("err", prevErr.Error()))
			c.notices.add(unavailable("previous period data"))
		} else {
			c.prev = prev
		}
	}))
	return c
}

// collect merges the comparison notices into n.
func (c *comparison) collect(n *notices) {
	n.add(c.notices...)
	n.add(c.cur.Notices...)
	n.add(c.prev.Notices...)
}
