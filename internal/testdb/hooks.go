package testdb

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/uptrace/bun"
)

// AfterFirstRead runs fn once, right after the first successful SELECT from
// table returns. Tests use it to change a row between a service's read and
// its guarded write. fn may call back into the same service.
func AfterFirstRead(db *bun.DB, table string, fn func()) {
	db.AddQueryHook(&readHook{from: `FROM "` + table + `"`, fn: fn})
}

type readHook struct {
	from  string
	fn    func()
	fired atomic.Bool
}

func (h *readHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *readHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil || event.Operation() != "SELECT" || !strings.Contains(event.Query, h.from) {
		return
	}
	if h.fired.CompareAndSwap(false, true) {
		h.fn()
	}
}
