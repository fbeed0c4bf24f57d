package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-waba-webhooks/internal/application/accountupdate"
	"github.com/go-waba-webhooks/internal/domain"
)

// FieldAccountUpdate is the webhook field carrying account updates.
const FieldAccountUpdate = "account_update"

// ErrStopHandling may be returned by a callback to skip the remaining
// callbacks for the current update. Dispatch does not report it as an error.
var ErrStopHandling = errors.New("stop handling")

// AccountUpdateCallback receives typed account updates.
type AccountUpdateCallback func(ctx context.Context, u *domain.AccountUpdate) error

// AccountUpdateFilter decides whether a callback sees an update.
type AccountUpdateFilter func(u *domain.AccountUpdate) bool

// RawCallback receives every payload before it is typed.
type RawCallback func(ctx context.Context, raw map[string]any) error

// RawFilter decides whether a raw callback sees a payload.
type RawFilter func(raw map[string]any) bool

type handler[T any] struct {
	cb       func(ctx context.Context, v T) error
	filters  []func(v T) bool
	priority int
}

func (h handler[T]) accepts(v T) bool {
	for _, f := range h.filters {
		if !f(v) {
			return false
		}
	}
	return true
}

// register inserts h keeping hs ordered by descending priority. Handlers of
// equal priority keep their registration order.
func register[T any](hs []handler[T], h handler[T]) []handler[T] {
	hs = append(hs, h)
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].priority > hs[j].priority })
	return hs
}

// run invokes every accepting handler in order. ErrStopHandling ends the
// chain and reports stopped.
func run[T any](ctx context.Context, hs []handler[T], v T) (stopped bool, err error) {
	for _, h := range hs {
		if !h.accepts(v) {
			continue
		}
		if err := h.cb(ctx, v); err != nil {
			if errors.Is(err, ErrStopHandling) {
				return true, nil
			}
			return false, err
		}
	}
	return false, nil
}

// Dispatcher routes webhook payloads to registered callbacks. Register all
// callbacks before the first Dispatch; Dispatch itself does not modify the
// dispatcher and may be called concurrently.
type Dispatcher struct {
	parser  *accountupdate.Parser
	client  domain.Client
	raw     []handler[map[string]any]
	account []handler[*domain.AccountUpdate]
}

func NewDispatcher(parser *accountupdate.Parser, client domain.Client) *Dispatcher {
	return &Dispatcher{parser: parser, client: client}
}

// OnRawUpdate registers cb for every payload passing all filters. Higher
// priorities run first.
func (d *Dispatcher) OnRawUpdate(cb RawCallback, priority int, filters ...RawFilter) {
	h := handler[map[string]any]{cb: cb, priority: priority}
	for _, f := range filters {
		h.filters = append(h.filters, f)
	}
	d.raw = register(d.raw, h)
}

// OnAccountUpdate registers cb for account updates passing all filters.
// Higher priorities run first.
func (d *Dispatcher) OnAccountUpdate(cb AccountUpdateCallback, priority int, filters ...AccountUpdateFilter) {
	h := handler[*domain.AccountUpdate]{cb: cb, priority: priority}
	for _, f := range filters {
		h.filters = append(h.filters, f)
	}
	d.account = register(d.account, h)
}

// Dispatch runs raw callbacks, then, for account updates, parses the payload
// once and runs every matching account-update callback in priority order.
func (d *Dispatcher) Dispatch(ctx context.Context, raw map[string]any) error {
	stopped, err := run(ctx, d.raw, raw)
	if err != nil {
		return fmt.Errorf("raw callback: %w", err)
	}
	if stopped {
		return nil
	}

	field, err := accountupdate.Field(raw)
	if err != nil {
		return err
	}
	if field != FieldAccountUpdate {
		slog.DebugContext(ctx, "ignoring webhook field", "field", field)
		return nil
	}
	u, err := d.parser.Parse(raw, d.client)
	if err != nil {
		return fmt.Errorf("parse account update: %w", err)
	}
	slog.InfoContext(ctx, "account update", "waba_id", u.ID(), "event", u.Event())

	if _, err := run(ctx, d.account, u); err != nil {
		return fmt.Errorf("account update callback: %w", err)
	}
	return nil
}
