package handler

import (
	"sync/atomic"

	"github.com/psds-microservice/dispatch/internal/database"
)

// Changes — счётчик изменений активной базы; клиенты опрашивают его вместо полного списка.
type Changes struct {
	version atomic.Int64
}

// Bump вызывается наблюдателем при смене отпечатка базы.
func (ch *Changes) Bump(database.Signature) {
	ch.version.Add(1)
}

func (ch *Changes) Version() int64 {
	if ch == nil {
		return 0
	}
	return ch.version.Load()
}
