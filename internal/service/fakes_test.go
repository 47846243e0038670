package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"mertflix/internal/entity"
	"mertflix/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore backs every fake repository with maps guarded by one mutex. Each method is
// atomic, which is what the conditional statements of the real store guarantee.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]entity.User
	pending  map[string]entity.PendingRegistration
	codes    map[entity.CodeKind][]entity.OneTimeCode
	logs     []entity.SecurityLog
	library  map[entity.Shelf]map[libraryKey]entity.LibraryItem
	comments map[uuid.UUID]entity.Comment
	votes    map[voteKey]int
}

type libraryKey struct {
	userID    uuid.UUID
	mediaType entity.MediaType
	tmdbID    int64
}

type voteKey struct {
	commentID uuid.UUID
	userID    uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]entity.User{},
		pending:  map[string]entity.PendingRegistration{},
		codes:    map[entity.CodeKind][]entity.OneTimeCode{},
		library:  map[entity.Shelf]map[libraryKey]entity.LibraryItem{},
		comments: map[uuid.UUID]entity.Comment{},
		votes:    map[voteKey]int{},
	}
}

type snapshot struct {
	users   map[uuid.UUID]entity.User
	pending map[string]entity.PendingRegistration
	codes   map[entity.CodeKind][]entity.OneTimeCode
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users:   make(map[uuid.UUID]entity.User, len(s.users)),
		pending: make(map[string]entity.PendingRegistration, len(s.pending)),
		codes:   make(map[entity.CodeKind][]entity.OneTimeCode, len(s.codes)),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.pending {
		snap.pending[k] = v
	}
	for k, v := range s.codes {
		snap.codes[k] = append([]entity.OneTimeCode(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.pending = snap.pending
	s.codes = snap.codes
}

func (s *memStore) userByEmail(email string) (entity.User, bool) {
	for _, user := range s.users {
		if user.Email == email {
			return user, true
		}
	}
	return entity.User{}, false
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memStore) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *memStore) codeCount(kind entity.CodeKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes[kind])
}

func (s *memStore) actions(action entity.SecurityAction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, entry := range s.logs {
		if entry.Action == action {
			count++
		}
	}
	return count
}

// memTransactor serializes transactions and restores the snapshot when fn fails.
type memTransactor struct {
	store *memStore
	mu    sync.Mutex
}

type memTxKey struct{}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ *memStore }

func (s memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userByEmail(email)
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username != nil && *user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

func (s memUsers) Promote(_ context.Context, email string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.userByEmail(email); ok {
		if !existing.IsEmailVerified {
			existing.PasswordHash = passwordHash
			existing.IsEmailVerified = true
			s.users[existing.ID] = existing
		}
		return nil
	}
	id := uuid.New()
	s.users[id] = entity.User{
		ID:              id,
		Email:           email,
		PasswordHash:    passwordHash,
		IsEmailVerified: true,
		IsActive:        true,
	}
	return nil
}

func (s memUsers) DeleteUnverifiedByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.userByEmail(email); ok && !user.IsEmailVerified {
		delete(s.users, user.ID)
	}
	return nil
}

func (s memUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.update(id, func(u *entity.User) error { u.IsEmailVerified = true; return nil })
}

func (s memUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(u *entity.User) error { u.PasswordHash = passwordHash; return nil })
}

func (s memUsers) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.update(id, func(u *entity.User) error {
		if other, ok := s.userByEmail(email); ok && other.ID != id {
			return gorm.ErrDuplicatedKey
		}
		u.Email = email
		return nil
	})
}

func (s memUsers) UpdateProfile(ctx context.Context, id uuid.UUID, update entity.ProfileUpdate) error {
	return s.update(id, func(u *entity.User) error {
		if u.Username == nil && update.Username != nil {
			for _, other := range s.users {
				if other.ID != id && other.Username != nil && *other.Username == *update.Username {
					return gorm.ErrDuplicatedKey
				}
			}
			username := *update.Username
			u.Username = &username
		}
		style, seed := update.AvatarStyle, update.AvatarSeed
		u.Bio = update.Bio
		u.AvatarStyle = &style
		u.AvatarSeed = &seed
		return nil
	})
}

func (s memUsers) SetTwoFactor(ctx context.Context, id uuid.UUID, enabled bool) error {
	return s.update(id, func(u *entity.User) error { u.TwoFactorEnabled = enabled; return nil })
}

func (s memUsers) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.update(id, func(u *entity.User) error { u.IsActive = false; return nil })
}

func (s memUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s memUsers) update(id uuid.UUID, apply func(*entity.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	if err := apply(&user); err != nil {
		return err
	}
	s.users[id] = user
	return nil
}

type memPending struct{ *memStore }

func (s memPending) Upsert(_ context.Context, pending *entity.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pending[pending.Email]; ok {
		existing.PasswordHash = pending.PasswordHash
		existing.CodeHash = pending.CodeHash
		existing.ExpiresAt = pending.ExpiresAt
		existing.UpdatedAt = pending.UpdatedAt
		s.pending[pending.Email] = existing
		return nil
	}
	s.pending[pending.Email] = *pending
	return nil
}

func (s memPending) Consume(_ context.Context, email string, codeHash string, now time.Time) (*entity.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.pending[email]
	if !ok || pending.CodeHash != codeHash || !pending.ExpiresAt.After(now) {
		return nil, nil
	}
	delete(s.pending, email)
	return &pending, nil
}

func (s memPending) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, email)
	return nil
}

func (s memPending) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for email, pending := range s.pending {
		if !pending.ExpiresAt.After(now) {
			delete(s.pending, email)
			removed++
		}
	}
	return removed, nil
}

type memCodes struct{ *memStore }

func (s memCodes) Issue(_ context.Context, kind entity.CodeKind, code *entity.OneTimeCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	s.codes[kind] = append(s.codes[kind], *code)
	return nil
}

func (s memCodes) Consume(_ context.Context, kind entity.CodeKind, match entity.CodeMatch, now time.Time) (*entity.OneTimeCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.codes[kind]
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].CreatedAt.After(rows[order[b]].CreatedAt)
	})
	for _, i := range order {
		row := rows[i]
		if row.UserID != match.UserID || row.CodeHash != match.CodeHash || !row.Usable(now) {
			continue
		}
		if match.ID != nil && row.ID != *match.ID {
			continue
		}
		if match.NewEmail != nil && (row.NewEmail == nil || *row.NewEmail != *match.NewEmail) {
			continue
		}
		usedAt := now
		rows[i].UsedAt = &usedAt
		used := rows[i]
		return &used, nil
	}
	return nil, nil
}

type memLogs struct{ *memStore }

func (s memLogs) Log(_ context.Context, entry *entity.SecurityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *entry)
	return nil
}

type memLibrary struct{ *memStore }

func (s memLibrary) List(_ context.Context, shelf entity.Shelf, userID uuid.UUID) ([]entity.LibraryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []entity.LibraryItem
	for key, item := range s.library[shelf] {
		if key.userID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(a, b int) bool { return items[a].CreatedAt.After(items[b].CreatedAt) })
	return items, nil
}

func (s memLibrary) Upsert(_ context.Context, shelf entity.Shelf, item *entity.LibraryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.library[shelf] == nil {
		s.library[shelf] = map[libraryKey]entity.LibraryItem{}
	}
	key := libraryKey{userID: item.UserID, mediaType: item.MediaType, tmdbID: item.TMDBID}
	if existing, ok := s.library[shelf][key]; ok {
		if item.Title != nil {
			existing.Title = item.Title
		}
		if item.PosterURL != nil {
			existing.PosterURL = item.PosterURL
		}
		s.library[shelf][key] = existing
		return nil
	}
	s.library[shelf][key] = *item
	return nil
}

func (s memLibrary) Remove(_ context.Context, shelf entity.Shelf, userID uuid.UUID, mediaType entity.MediaType, tmdbID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.library[shelf], libraryKey{userID: userID, mediaType: mediaType, tmdbID: tmdbID})
	return nil
}

type memComments struct{ *memStore }

func (s memComments) ListForMedia(_ context.Context, mediaType entity.MediaType, tmdbID int64, viewer *uuid.UUID) ([]entity.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []entity.CommentView
	for _, comment := range s.comments {
		if comment.MediaType != mediaType || comment.TMDBID != tmdbID {
			continue
		}
		view := entity.CommentView{
			ID:        comment.ID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
			UserID:    comment.UserID,
			CanDelete: viewer != nil && *viewer == comment.UserID,
		}
		for key, value := range s.votes {
			if key.commentID != comment.ID {
				continue
			}
			switch value {
			case 1:
				view.Upvotes++
			case -1:
				view.Downvotes++
			}
			if viewer != nil && key.userID == *viewer {
				view.MyVote = value
			}
		}
		views = append(views, view)
	}
	sort.Slice(views, func(a, b int) bool { return views[a].CreatedAt.After(views[b].CreatedAt) })
	return views, nil
}

func (s memComments) Create(_ context.Context, comment *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = *comment
	return nil
}

func (s memComments) FindByID(_ context.Context, id uuid.UUID) (*entity.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	return &comment, nil
}

func (s memComments) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.comments, id)
	for key := range s.votes {
		if key.commentID == id {
			delete(s.votes, key)
		}
	}
	return nil
}

func (s memComments) UpsertVote(_ context.Context, vote *entity.CommentVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey{commentID: vote.CommentID, userID: vote.UserID}] = vote.Value
	return nil
}

func (s memComments) RemoveVote(_ context.Context, commentID uuid.UUID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, voteKey{commentID: commentID, userID: userID})
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// plainHasher keeps tests fast; bcrypt is covered separately.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(hash string, password string) bool { return hash == "plain:"+password }

type sentMail struct {
	To      string
	Subject string
	Text    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *recordingSender) Send(_ context.Context, to string, subject string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Text: text})
	return nil
}

func (s *recordingSender) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

var mailCode = regexp.MustCompile(`\b\d{6}\b`)

// lastCode pulls the code out of the newest mail addressed to `to`.
func (s *recordingSender) lastCode(t *testing.T, to string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].To == to {
			code := mailCode.FindString(s.sent[i].Text)
			require.NotEmpty(t, code, "no code in mail to %s", to)
			return code
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

type harness struct {
	store   *memStore
	clock   *fakeClock
	mail    *recordingSender
	tokens  JWTAccessIssuer
	auth    *AuthService
	account *AccountService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	clock := newFakeClock()
	mail := &recordingSender{}
	tokens := JWTAccessIssuer{Manager: &utils.JWTManager{
		Secret: []byte("test-secret"),
		Issuer: "mertflix",
		Now:    clock.Now,
	}}
	hasher := utils.CodeHasher{Key: []byte("code-secret")}
	tx := &memTransactor{store: store}

	return &harness{
		store:  store,
		clock:  clock,
		mail:   mail,
		tokens: tokens,
		auth: NewAuthService(
			memUsers{store}, memPending{store}, memCodes{store}, memLogs{store}, tx,
			mail, plainHasher{}, hasher, utils.RandomCode6, tokens, clock, DefaultAuthConfig(), nil,
		),
		account: NewAccountService(
			memUsers{store}, memCodes{store}, memLogs{store}, tx,
			mail, plainHasher{}, hasher, utils.RandomCode6, clock, DefaultAuthConfig(), nil,
		),
	}
}

// signUp registers and verifies an account, returning the stored user.
func (h *harness) signUp(t *testing.T, email string, password string) *entity.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.auth.Register(ctx, registerRequest(email, password), nil))
	require.NoError(t, h.auth.VerifyEmail(ctx, verifyRequest(email, h.mail.lastCode(t, email)), nil))

	user, err := memUsers{h.store}.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (h *harness) user(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	user, err := memUsers{h.store}.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

var errSMTPDown = errors.New("smtp down")
