package sync

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	gosync "sync"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// fakeGateway is an in-memory RemoteGateway. Every mutation advances its
// clock by one minute and stamps the record with it.
type fakeGateway struct {
	mu       gosync.Mutex
	user     string
	records  map[types.RecordKey]*types.RemoteRecord
	vocab    types.Vocabulary
	pageSize int
	clock    time.Time
	nextID   int

	listErr   error
	createErr map[string]error // keyed by title
	closeErr  error

	creates []types.RecordFields
	updates map[types.RecordKey]types.RecordFields
	closed  []types.RecordKey
}

func newFakeGateway(start time.Time) *fakeGateway {
	return &fakeGateway{
		user:     "octo",
		records:  make(map[types.RecordKey]*types.RemoteRecord),
		vocab:    types.Vocabulary{Statuses: []string{"Backlog", "Doing", "Done"}, Labels: []string{"Bug", "urgent"}},
		pageSize: 2,
		clock:    start,
		nextID:   100,
		updates:  make(map[types.RecordKey]types.RecordFields),
	}
}

func (f *fakeGateway) add(rec *types.RemoteRecord) *types.RemoteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.Origin == "" {
		rec.Origin = "acme/web"
	}
	if rec.State == "" {
		rec.State = "open"
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	f.records[rec.Key()] = rec
	return rec
}

func (f *fakeGateway) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (string, error) {
	return f.user, nil
}

func (f *fakeGateway) ListRecords(ctx context.Context, origin, cursor string) (*types.RecordPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var all []*types.RemoteRecord
	for _, r := range f.records {
		if r.Origin == origin {
			c := *r
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
		start = n
	}
	end := start + f.pageSize
	page := &types.RecordPage{}
	if end < len(all) {
		page.Next = strconv.Itoa(end)
	} else {
		end = len(all)
	}
	if start < end {
		page.Records = all[start:end]
	}
	return page, nil
}

func (f *fakeGateway) Vocabulary(ctx context.Context, origin string) (*types.Vocabulary, error) {
	v := f.vocab
	return &v, nil
}

func (f *fakeGateway) CreateRecord(ctx context.Context, origin string, fields types.RecordFields) (*types.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[fields.Title]; err != nil {
		return nil, err
	}
	f.creates = append(f.creates, fields)

	now := f.tick()
	f.nextID++
	rec := &types.RemoteRecord{
		Origin:    origin,
		Number:    f.nextID,
		NodeID:    fmt.Sprintf("I_%d", f.nextID),
		CreatedAt: now,
	}
	apply(rec, fields, now)
	f.records[rec.Key()] = rec
	c := *rec
	return &c, nil
}

func (f *fakeGateway) UpdateRecord(ctx context.Context, key types.RecordKey, fields types.RecordFields) (*types.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", key, types.ErrRemoteNotFound)
	}
	f.updates[key] = fields
	apply(rec, fields, f.tick())
	c := *rec
	return &c, nil
}

func (f *fakeGateway) CloseRecord(ctx context.Context, key types.RecordKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return f.closeErr
	}
	rec, ok := f.records[key]
	if !ok {
		return fmt.Errorf("close %s: %w", key, types.ErrRemoteNotFound)
	}
	rec.State = "closed"
	rec.UpdatedAt = f.tick()
	f.closed = append(f.closed, key)
	return nil
}

func apply(rec *types.RemoteRecord, fields types.RecordFields, now time.Time) {
	rec.Title = fields.Title
	rec.Body = fields.Body
	rec.Labels = fields.Labels
	if fields.Status != "" {
		rec.Status = fields.Status
	}
	rec.State = "open"
	if fields.Closed {
		rec.State = "closed"
	}
	rec.UpdatedAt = now
}
