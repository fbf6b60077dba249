package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

var (
	_numeric = regexp.MustCompile(`^[0-9]+$`)
	_nonWord = regexp.MustCompile(`\W`)
)

// Config tunes a Service. Zero values are replaced with defaults.
type Config struct {
	// Concurrency bounds page fetches for a single shelf.
	Concurrency int
	// BooksMaxAge is how long a fetched shelf stays fresh.
	BooksMaxAge time.Duration
	// DetailAttempts is the total number of tries for a detail lookup.
	DetailAttempts int
	// DetailDelay is the pause between detail attempts.
	DetailDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.BooksMaxAge <= 0 {
		c.BooksMaxAge = 72 * time.Hour
	}
	if c.DetailAttempts <= 0 {
		c.DetailAttempts = 3
	}
	if c.DetailDelay <= 0 {
		c.DetailDelay = time.Second
	}
	return c
}

// Service is the façade over upstream fetches, memoization and storage. It's
// safe for concurrent use and should be created once.
type Service struct {
	store Backend
	up    upstream
	cfg   Config

	users   *Memo[string, int64]
	books   *Memo[int64, []BookEntry]
	details *Memo[string, *Details]

	images singleflight.Group

	persistMu  sync.Mutex // Serializes snapshot writes.
	persisting sync.WaitGroup
}

// NewService creates a new Service. Metrics are registered on reg, which may
// be nil.
func NewService(store Backend, up upstream, cfg Config, reg prometheus.Registerer) (*Service, error) {
	if store == nil {
		return nil, errors.Join(errors.New("storage is required"), ErrInvalidInput)
	}
	if up == nil {
		return nil, errors.Join(errors.New("upstream is required"), ErrInvalidInput)
	}
	cfg = cfg.withDefaults()
	reg = registry(reg)

	return &Service{
		store:   store,
		up:      up,
		cfg:     cfg,
		users:   NewMemo[string, int64]("users", 0, reg),
		books:   NewMemo[int64, []BookEntry]("books", cfg.BooksMaxAge, reg),
		details: NewMemo[string, *Details]("details", 0, reg),
	}, nil
}

// ResolveUserID turns a user name or numeric ID into an ID. Names are looked
// up once and remembered for the life of the process.
func (s *Service) ResolveUserID(ctx context.Context, nameOrID string) (int64, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return 0, errMissingUser
	}
	if _numeric.MatchString(nameOrID) {
		id, err := strconv.ParseInt(nameOrID, 10, 64)
		if err != nil {
			return 0, errors.Join(fmt.Errorf("invalid user id %q: %w", nameOrID, err), ErrInvalidInput)
		}
		return id, nil
	}

	return s.users.GetOrCompute(ctx, nameOrID, func(ctx context.Context) (int64, error) {
		user, err := s.up.SearchUser(ctx, nameOrID)
		if err != nil {
			return 0, fmt.Errorf("searching for %q: %w", nameOrID, err)
		}
		if user.Name != "" && user.Name != nameOrID {
			s.users.Put(user.Name, user.ID)
		}
		Log(ctx).Debug("resolved user", "name", nameOrID, "userID", user.ID)
		return user.ID, nil
	})
}

// GetBooks returns every book on a user's read shelf, enriched with
// bibliographic details. Shelves are cached for BooksMaxAge and the table is
// persisted in the background whenever it changes.
func (s *Service) GetBooks(ctx context.Context, userID int64) ([]BookEntry, error) {
	if userID <= 0 {
		return nil, errors.Join(fmt.Errorf("invalid user id %d", userID), ErrInvalidInput)
	}

	computed := false
	books, err := s.books.GetOrCompute(ctx, userID, func(ctx context.Context) ([]BookEntry, error) {
		computed = true
		return s.fetchBooks(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	// computed is only set by our own fn, and it finished before we observed
	// its result.
	if computed {
		s.persist(userID)
	}
	return books, nil
}

func (s *Service) fetchBooks(ctx context.Context, userID int64) ([]BookEntry, error) {
	start := time.Now()
	books, err := FetchAll(ctx, func(ctx context.Context, page int) (Page[BookEntry], error) {
		return s.up.GetBookPage(ctx, userID, page)
	}, s.cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("fetching books for %d: %w", userID, err)
	}
	if err := enrichBooks(ctx, s.up, books); err != nil {
		return nil, fmt.Errorf("enriching books for %d: %w", userID, err)
	}
	Log(ctx).Info("fetched books", "userID", userID, "count", len(books), "duration", time.Since(start).String())
	return books, nil
}

// GetDetails returns scraped product details for an ASIN. Lookups are retried
// a few times, except when the product doesn't exist.
func (s *Service) GetDetails(ctx context.Context, asin string) (*Details, error) {
	asin = strings.TrimSpace(_nonWord.ReplaceAllString(asin, ""))
	if asin == "" {
		return nil, errMissingASIN
	}

	return s.details.GetOrCompute(ctx, asin, func(ctx context.Context) (*Details, error) {
		b := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.DetailDelay), uint64(s.cfg.DetailAttempts-1)),
			ctx,
		)
		op := func() (*Details, error) {
			d, err := s.up.LookupDetail(ctx, asin)
			if errors.Is(err, ErrNotFound) {
				return nil, backoff.Permanent(err)
			}
			return d, err
		}
		notify := func(err error, wait time.Duration) {
			Log(ctx).Warn("retrying detail lookup", "asin", asin, "err", err, "wait", wait)
		}
		d, err := backoff.RetryNotifyWithData(op, b, notify)
		if err != nil {
			return nil, fmt.Errorf("looking up %q: %w", asin, err)
		}
		return d, nil
	})
}

// GetBinary reads a stored blob by its logical key.
func (s *Service) GetBinary(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.Join(errors.New("missing key"), ErrInvalidInput)
	}
	return s.store.ReadBytes(ctx, BinaryPath(key))
}

// SaveBinary stores a blob under its logical key. Empty payloads are rejected.
func (s *Service) SaveBinary(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.Join(errors.New("missing key"), ErrInvalidInput)
	}
	if len(data) == 0 {
		return errEmptyBinary
	}
	return s.store.WriteBytes(ctx, BinaryPath(key), data)
}

// BinaryLastModified reports when a blob was last written, for conditional
// responses.
func (s *Service) BinaryLastModified(ctx context.Context, key string) (time.Time, bool, error) {
	if key == "" {
		return time.Time{}, false, errors.Join(errors.New("missing key"), ErrInvalidInput)
	}
	return s.store.LastModified(ctx, BinaryPath(key))
}

// GetImage returns the image at url, downloading and storing it on first use.
// Concurrent downloads of the same url are coalesced.
func (s *Service) GetImage(ctx context.Context, url string) ([]byte, error) {
	data, err := s.GetBinary(ctx, url)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}
	if !errors.Is(err, ErrNotFound) {
		Log(ctx).Warn("problem reading stored image", "err", err, "url", url)
	}

	// The download outlives any single caller since others may share it.
	dctx := context.WithoutCancel(ctx)
	ch := s.images.DoChan(url, func() (any, error) {
		data, err := s.up.FetchImage(dctx, url)
		if err != nil {
			return nil, fmt.Errorf("downloading %q: %w", url, err)
		}
		if len(data) == 0 {
			return nil, errors.Join(fmt.Errorf("downloading %q: empty response", url), ErrUpstream)
		}
		if err := s.SaveBinary(dctx, url, data); err != nil {
			Log(dctx).Warn("problem saving image", "err", err, "url", url)
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// snapshotEntry is one shelf in the persisted table.
type snapshotEntry struct {
	CreatedAt time.Time   `json:"createdAt"`
	Items     []BookEntry `json:"items"`
}

// Load restores the persisted book table. A missing snapshot isn't an error.
func (s *Service) Load(ctx context.Context) error {
	raw, err := s.store.ReadText(ctx, SnapshotPath)
	if errors.Is(err, ErrNotFound) {
		Log(ctx).Debug("no snapshot to load")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	var snap map[string]snapshotEntry
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return errors.Join(fmt.Errorf("decoding snapshot: %w", err), ErrIO)
	}

	restored := 0
	for key, e := range snap {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			Log(ctx).Warn("skipping invalid snapshot key", "key", key)
			continue
		}
		s.books.Restore(userID, e.Items, e.CreatedAt)
		restored++
	}

	Log(ctx).Info("loaded snapshot", "shelves", restored)
	return nil
}

// persist writes the book table in the background. Errors are only logged.
func (s *Service) persist(userID int64) {
	s.persisting.Add(1)
	go func() {
		defer s.persisting.Done()

		ctx := WithTrace(context.Background(), fmt.Sprintf("persist-%d", userID))
		defer func() {
			if r := recover(); r != nil {
				Log(ctx).Error("panic", "details", r)
			}
		}()

		s.persistMu.Lock()
		defer s.persistMu.Unlock()

		if err := s.saveSnapshot(ctx); err != nil {
			Log(ctx).Error("problem saving snapshot", "err", err)
		}
	}()
}

func (s *Service) saveSnapshot(ctx context.Context) error {
	table := s.books.Snapshot()
	snap := make(map[string]snapshotEntry, len(table))
	for userID, e := range table {
		snap[strconv.FormatInt(userID, 10)] = snapshotEntry{CreatedAt: e.CreatedAt, Items: e.Value}
	}

	out, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.store.WriteText(ctx, SnapshotPath, string(out)); err != nil {
		return err
	}

	Log(ctx).Debug("saved snapshot", "shelves", len(snap), "size", len(out))
	return nil
}

// Shutdown waits for background snapshot writes to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.persisting.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
