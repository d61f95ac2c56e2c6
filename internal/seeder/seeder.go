// Package seeder fills the users table with synthetic accounts, committing in batches.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hetulpatel/userseed/internal/logging"
	"github.com/hetulpatel/userseed/internal/login"
	"github.com/hetulpatel/userseed/internal/models"
	"github.com/hetulpatel/userseed/internal/names"
	"github.com/hetulpatel/userseed/internal/storage"
)

// Batch is an open transaction that accepts inserts until Commit or Rollback.
type Batch interface {
	Insert(ctx context.Context, u models.User) error
	Commit() error
	Rollback() error
}

// Store opens batches.
type Store interface {
	Begin(ctx context.Context) (Batch, error)
}

// Publisher receives every committed batch. Failures are logged, never fatal.
type Publisher interface {
	PublishUsers(ctx context.Context, batch int, users []models.User) error
}

const releaseTimeout = 5 * time.Second

// Options control one run.
type Options struct {
	CommitInterval int
	PasswordHash   string
	BirthDay       string
	// LegacyCommitCadence commits after every 0-based row index NOT divisible by
	// CommitInterval, matching the historical truthiness check. Off by default.
	LegacyCommitCadence bool
	MaxLoginRetries     int
	RowDelay            time.Duration
	ProgressEvery       int
}

// Result summarizes a run, including a failed or cancelled one.
type Result struct {
	Inserted     int
	Committed    int
	Commits      int
	LoginRetries int
	Elapsed      time.Duration
}

type Seeder struct {
	store     Store
	names     names.Generator
	logins    login.Source
	publisher Publisher
	opts      Options
	sleep     func(time.Duration)
}

func New(store Store, nameGen names.Generator, logins login.Source, opts Options) *Seeder {
	if opts.CommitInterval <= 0 {
		opts.CommitInterval = 100
	}
	if opts.PasswordHash == "" {
		opts.PasswordHash = models.DefaultPasswordHash
	}
	if opts.BirthDay == "" {
		opts.BirthDay = models.DefaultBirthDay
	}
	return &Seeder{
		store:  store,
		names:  nameGen,
		logins: logins,
		opts:   opts,
		sleep:  time.Sleep,
	}
}

// WithPublisher attaches an event publisher. A nil publisher disables publishing.
func (s *Seeder) WithPublisher(p Publisher) *Seeder {
	s.publisher = p
	return s
}

// ShouldCommit reports whether the row at 0-based index i closes a batch.
func ShouldCommit(i, interval int, legacy bool) bool {
	if interval <= 0 {
		return true
	}
	if legacy {
		return i%interval != 0
	}
	return (i+1)%interval == 0
}

// Run inserts count users. On error the open batch is rolled back; rows from earlier
// commits stay in the store.
func (s *Seeder) Run(ctx context.Context, count int) (res Result, err error) {
	if count <= 0 {
		return res, fmt.Errorf("row count must be positive, got %d", count)
	}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	r := &run{Seeder: s, res: &res}
	if err := r.begin(ctx); err != nil {
		return res, err
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			r.abort(ctx)
			logging.Infof("[seed] cancelled after %d committed rows", res.Committed)
			return res, err
		}
		if s.opts.RowDelay > 0 {
			s.sleep(s.opts.RowDelay)
		}
		if err := r.insert(ctx, i); err != nil {
			r.abort(ctx)
			return res, fmt.Errorf("row %d: %w", i+1, err)
		}
		if ShouldCommit(i, s.opts.CommitInterval, s.opts.LegacyCommitCadence) {
			if err := r.commit(ctx); err != nil {
				return res, fmt.Errorf("row %d: %w", i+1, err)
			}
			if i+1 < count {
				if err := r.begin(ctx); err != nil {
					return res, err
				}
			}
		}
	}

	if r.batch != nil {
		if err := r.commit(ctx); err != nil {
			return res, fmt.Errorf("final %w", err)
		}
	}
	logging.Infof("[seed] done: %d rows in %d commits (%d login retries)", res.Committed, res.Commits, res.LoginRetries)
	return res, nil
}

// run holds the state of one Run call.
type run struct {
	*Seeder
	res     *Result
	batch   Batch
	pending []models.User
	seq     int
}

func (r *run) begin(ctx context.Context) error {
	b, err := r.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	r.batch = b
	r.pending = r.pending[:0]
	return nil
}

// abort rolls back the open batch and gives its logins back.
func (r *run) abort(ctx context.Context) {
	if r.batch == nil {
		return
	}
	if err := r.batch.Rollback(); err != nil {
		logging.Errorf("[seed] rollback: %v", err)
	}
	r.batch = nil
	r.release(ctx, r.pending...)
	r.pending = nil
}

// release frees registry claims on logins that never reached the store. It runs
// even when ctx is already cancelled.
func (r *run) release(ctx context.Context, users ...models.User) {
	rel, ok := r.logins.(login.Releaser)
	if !ok || len(users) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	for _, u := range users {
		if err := rel.Release(ctx, u.Login); err != nil {
			logging.Errorf("[seed] release login %s: %v", u.Login, err)
			return
		}
	}
}

func (r *run) insert(ctx context.Context, i int) error {
	name, err := r.names.Name(ctx)
	if err != nil {
		return fmt.Errorf("generate name: %w", err)
	}
	u := models.User{
		Password:  r.opts.PasswordHash,
		FirstName: name.First,
		LastName:  name.Last,
		BirthDay:  r.opts.BirthDay,
	}
	for attempt := 0; ; attempt++ {
		u.Login, err = r.logins.Next(ctx)
		if err != nil {
			return fmt.Errorf("generate login: %w", err)
		}
		err = r.batch.Insert(ctx, u)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrDuplicateLogin) {
			r.release(ctx, u)
			return err
		}
		// a duplicate row holds the login, so its claim is kept
		if attempt >= r.opts.MaxLoginRetries {
			return err
		}
		r.res.LoginRetries++
		logging.Debugf("[seed] row %d: login %s taken, retrying", i+1, u.Login)
	}
	r.res.Inserted++
	r.pending = append(r.pending, u)
	return nil
}

func (r *run) commit(ctx context.Context) error {
	b := r.batch
	r.batch = nil
	if err := b.Commit(); err != nil {
		b.Rollback()
		r.release(ctx, r.pending...)
		r.pending = nil
		return fmt.Errorf("commit: %w", err)
	}
	r.seq++
	r.res.Commits++
	before := r.res.Committed
	r.res.Committed += len(r.pending)

	if every := r.opts.ProgressEvery; every > 0 && r.res.Committed/every > before/every {
		logging.Infof("[seed] %d rows committed", r.res.Committed)
	}
	if r.publisher != nil && len(r.pending) > 0 {
		users := append([]models.User(nil), r.pending...)
		if err := r.publisher.PublishUsers(ctx, r.seq, users); err != nil {
			logging.Errorf("[seed] publish batch %d: %v", r.seq, err)
		}
	}
	r.pending = r.pending[:0]
	return nil
}

// FromStore adapts a storage.Store to the seeder's Store.
func FromStore(s *storage.Store) Store {
	return sqlStore{s}
}

type sqlStore struct {
	s *storage.Store
}

func (w sqlStore) Begin(ctx context.Context) (Batch, error) {
	b, err := w.s.BeginBatch(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}
