package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/antonkuzmenko/guardcode/internal/pkg/goerror"
	"github.com/antonkuzmenko/guardcode/internal/pkg/idempotency"
	"github.com/antonkuzmenko/guardcode/internal/pkg/instrument"
	"github.com/antonkuzmenko/guardcode/internal/pkg/jwt"
	"github.com/antonkuzmenko/guardcode/internal/pkg/keylock"
	"github.com/antonkuzmenko/guardcode/internal/pkg/steamotp"
	"github.com/antonkuzmenko/guardcode/internal/pkg/validator"
)

// testSecret decodes via base64 to twelve zero bytes.
const testSecret = "AAAAAAAAAAAAAAAA"

type fakeRepo struct {
	mu sync.Mutex

	accounts []entity.Account
	usage    map[string]entity.UsageRecord
	logs     []entity.LogEntry
	settings *entity.Settings

	getAccountsErr error
	createErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{usage: make(map[string]entity.UsageRecord)}
}

func usageKey(ownerID, buyerID, trig string) string {
	return ownerID + "|" + buyerID + "|" + trig
}

func (r *fakeRepo) GetAccounts(context.Context) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAccountsErr != nil {
		return nil, r.getAccountsErr
	}
	return append([]entity.Account(nil), r.accounts...), nil
}

func (r *fakeRepo) GetAccountsByOwner(_ context.Context, ownerID string) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAccountsErr != nil {
		return nil, r.getAccountsErr
	}
	var out []entity.Account
	for _, acc := range r.accounts {
		if acc.OwnerID == ownerID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateAccount(_ context.Context, in entity.NewAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.accounts = append(r.accounts, entity.Account{
		ID:          in.ID,
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Trigger:     in.Trigger,
		Secret:      in.Secret,
		Limit:       in.Limit,
		PeriodHours: in.PeriodHours,
		Position:    int32(len(r.accounts) + 1),
	})
	return nil
}

func (r *fakeRepo) DeleteAccount(_ context.Context, ownerID string, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, acc := range r.accounts {
		if acc.OwnerID == ownerID && acc.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return &acc, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUsage(_ context.Context, ownerID, buyerID, trig string) (*entity.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.usage[usageKey(ownerID, buyerID, trig)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeRepo) UpsertUsage(_ context.Context, rec entity.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[usageKey(rec.OwnerID, rec.BuyerID, rec.Trigger)] = rec
	return nil
}

func (r *fakeRepo) RenameUsageTrigger(_ context.Context, ownerID, buyerID, oldTrig, newTrig string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	oldKey := usageKey(ownerID, buyerID, oldTrig)
	newKey := usageKey(ownerID, buyerID, newTrig)
	rec, ok := r.usage[oldKey]
	if !ok {
		return nil
	}
	if _, exists := r.usage[newKey]; exists {
		return nil
	}
	rec.Trigger = newTrig
	r.usage[newKey] = rec
	delete(r.usage, oldKey)
	return nil
}

func (r *fakeRepo) CreateLog(_ context.Context, e entity.LogEntry, maxLogs int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, e)
	if int32(len(r.logs)) > maxLogs {
		r.logs = r.logs[int32(len(r.logs))-maxLogs:]
	}
	return nil
}

func (r *fakeRepo) GetLogs(_ context.Context, ownerID string, page, perPage int32) ([]entity.LogEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []entity.LogEntry
	for _, e := range r.logs {
		if e.OwnerID == ownerID {
			owned = append(owned, e)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].TS > owned[j].TS })

	total := int64(len(owned))
	start := int(page * perPage)
	if start >= len(owned) {
		return nil, total, nil
	}
	end := start + int(perPage)
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (r *fakeRepo) GetSettings(context.Context) (*entity.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, goerror.ErrNotFound
	}
	s := *r.settings
	return &s, nil
}

func (r *fakeRepo) UpdateTemplate(_ context.Context, template string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = &entity.Settings{}
	}
	r.settings.Template = template
	return nil
}

type fakeMessaging struct {
	mu        sync.Mutex
	published []ChatReplyEvent
	err       error
}

func (m *fakeMessaging) PublishChatReply(_ context.Context, msg ChatReplyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

// fakeIdempotency runs each key once and reports duplicates the way the
// redis-backed tracker does.
type fakeIdempotency struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{seen: make(map[string]struct{})}
}

func (f *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if _, dup := f.seen[key]; dup {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.seen[key] = struct{}{}
	f.mu.Unlock()
	return fn(ctx)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeUID struct {
	mu   sync.Mutex
	next int64
}

func (u *fakeUID) Generate() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.next++
	return u.next
}

// fakeConfig returns zero values for every key.
type fakeConfig struct{}

func (fakeConfig) Close() error { return nil }
func (fakeConfig) GetSecond(string) time.Duration { return 0 }
func (fakeConfig) GetMinute(string) time.Duration { return 0 }
func (fakeConfig) GetHour(string) time.Duration { return 0 }
func (fakeConfig) GetDay(string) time.Duration { return 0 }
func (fakeConfig) GetInt(string) int { return 0 }
func (fakeConfig) GetInt32(string) int32 { return 0 }
func (fakeConfig) GetInt64(string) int64 { return 0 }
func (fakeConfig) GetUint(string) uint { return 0 }
func (fakeConfig) GetUint16(string) uint16 { return 0 }
func (fakeConfig) GetUint32(string) uint32 { return 0 }
func (fakeConfig) GetUint64(string) uint64 { return 0 }
func (fakeConfig) GetFloat32(string) float32 { return 0 }
func (fakeConfig) GetFloat64(string) float64 { return 0 }
func (fakeConfig) GetBool(string) bool { return false }
func (fakeConfig) GetString(string) string { return "" }
func (fakeConfig) GetBinary(string) []byte { return nil }
func (fakeConfig) GetArray(string) []string { return nil }
func (fakeConfig) GetMap(string) map[string]string { return nil }

var errGenerate = errors.New("generate failed")

// failingOTP rejects every secret.
type failingOTP struct{}

func (failingOTP) GenerateAt(string, time.Time) (string, error) { return "", errGenerate }
func (failingOTP) Validate(string) error                        { return errGenerate }

type fixture struct {
	uc        *Usecase
	repo      *fakeRepo
	messaging *fakeMessaging
	idemp     *fakeIdempotency
	clock     *fakeClock
}

func newFixture(otp steamotp.OTP) *fixture {
	repo := newFakeRepo()
	msg := &fakeMessaging{}
	idemp := newFakeIdempotency()
	clk := &fakeClock{now: time.Unix(1700000000, 0)}

	v, err := validator.NewV10Validator()
	if err != nil {
		panic(err)
	}

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msg,
		Idempotency:   idemp,
		Validator:     v,
		Config:        fakeConfig{},
		UID:           &fakeUID{},
		OTP:           otp,
		Clock:         clk,
		Locks:         keylock.New(),
		Instrument:    instrument.NewNoop(),
	})

	return &fixture{uc: uc, repo: repo, messaging: msg, idemp: idemp, clock: clk}
}

func ownerCtx(ownerID string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{OwnerID: ownerID})
}

func int64p(v int64) *int64 { return &v }
