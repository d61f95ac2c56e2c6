package workers

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hetulpatel/userseed/internal/logging"
	"github.com/hetulpatel/userseed/internal/models"
)

// LoginChecker is satisfied by *storage.Store.
type LoginChecker interface {
	UserExists(ctx context.Context, login string) (bool, error)
}

// Auditor confirms every published user actually landed in the store.
type Auditor struct {
	store   LoginChecker
	seen    atomic.Int64
	missing atomic.Int64
}

func NewAuditor(store LoginChecker) *Auditor {
	return &Auditor{store: store}
}

// Handle is a Handler.
func (a *Auditor) Handle(ctx context.Context, u *models.SeededUser) error {
	if u == nil || u.Login == "" {
		return fmt.Errorf("audit: empty event")
	}
	ok, err := a.store.UserExists(ctx, u.Login)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	a.seen.Add(1)
	if !ok {
		a.missing.Add(1)
		logging.Errorf("[audit] login=%s batch=%d published but missing from store", u.Login, u.Batch)
		return nil
	}
	logging.Debugf("[audit] login=%s ok", u.Login)
	return nil
}

// Stats returns events checked and events whose row was missing.
func (a *Auditor) Stats() (seen, missing int64) {
	return a.seen.Load(), a.missing.Load()
}
