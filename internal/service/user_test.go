package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/models"
	"github.com/Yashraval366/Chat-App/internal/normalize"
	"github.com/Yashraval366/Chat-App/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeUserStore mirrors the mongo store in memory: unique email,
// token arrays inside the user record, substring search.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by normalized email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[normalize.Email(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := normalize.Email(user.Email)
	if _, ok := f.users[key]; ok {
		return nil, store.ErrEmailTaken
	}
	user.ID = bson.NewObjectID()
	user.Email = key
	f.users[key] = user
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) Update(_ context.Context, id string, name, bio *string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == id {
			if name != nil {
				u.Name = *name
			}
			if bio != nil {
				u.Bio = *bio
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Search(_ context.Context, query, excludeID string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range f.users {
		if u.ID.Hex() == excludeID {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) AppendToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == userID {
			u.Tokens = append(u.Tokens, token)
		}
	}
	return nil
}

func (f *fakeUserStore) RemoveToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == userID {
			kept := u.Tokens[:0]
			for _, t := range u.Tokens {
				if t != token {
					kept = append(kept, t)
				}
			}
			u.Tokens = kept
		}
	}
	return nil
}

func (f *fakeUserStore) HasToken(_ context.Context, userID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == userID {
			for _, t := range u.Tokens {
				if t == token {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// fakeVerifier returns canned identity-provider claims.
type fakeVerifier struct {
	claims *auth.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (*auth.GoogleClaims, error) {
	return f.claims, f.err
}

func newUserService(verifier IDTokenVerifier) (*UserService, *fakeUserStore, *auth.TokenService) {
	fs := newFakeUserStore()
	tokens := auth.NewTokenService(fs, "test-secret", time.Hour)
	return NewUserService(fs, tokens, verifier), fs, tokens
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, tokens := newUserService(nil)
	ctx := context.Background()

	regToken, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)
	require.NotEmpty(t, regToken)

	// registration token passes the auth gate
	_, ok := tokens.Validate(ctx, regToken)
	assert.True(t, ok)

	// login with the same credentials yields another valid token
	loginToken, err := svc.Login(ctx, "a@x.com", "secret1!")
	require.NoError(t, err)
	_, ok = tokens.Validate(ctx, loginToken)
	assert.True(t, ok)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "Ada@X.com", "secret1!")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@x.com", "secret1!")
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.com", "secret1!")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Eve", "Other", "A@x.com", "different")
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestLogout_RevokesOnlyCurrentToken(t *testing.T) {
	svc, fs, tokens := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)
	user, err := fs.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	t1, err := svc.Login(ctx, "a@x.com", "secret1!")
	require.NoError(t, err)
	t2, err := svc.Login(ctx, "a@x.com", "secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID.Hex(), t1))

	_, ok := tokens.Validate(ctx, t1)
	assert.False(t, ok, "logged-out token must be rejected")
	_, ok = tokens.Validate(ctx, t2)
	assert.True(t, ok, "other device's token must survive")
}

func TestGoogleAuth_Idempotent(t *testing.T) {
	verifier := &fakeVerifier{claims: &auth.GoogleClaims{
		Email:         "g@x.com",
		EmailVerified: true,
		Name:          "G User",
		Picture:       "https://example.com/pic.png",
	}}
	svc, fs, tokens := newUserService(verifier)
	ctx := context.Background()

	first, err := svc.GoogleAuth(ctx, "provider-credential")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "g@x.com", first.User.Email)
	_, ok := tokens.Validate(ctx, first.Token)
	assert.True(t, ok)

	second, err := svc.GoogleAuth(ctx, "provider-credential")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID, "repeat exchange must reuse the user record")
	assert.Len(t, fs.users, 1)
}

func TestGoogleAuth_UnverifiedEmail(t *testing.T) {
	verifier := &fakeVerifier{claims: &auth.GoogleClaims{Email: "g@x.com", EmailVerified: false}}
	svc, fs, _ := newUserService(verifier)

	_, err := svc.GoogleAuth(context.Background(), "provider-credential")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Empty(t, fs.users, "no user may be provisioned for an unverified email")
}

func TestSearch_ExcludesRequester(t *testing.T) {
	svc, fs, _ := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Grace", "Hopper", "g@x.com", "secret2!")
	require.NoError(t, err)

	me, err := fs.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	// empty query matches everyone, except the requester
	results, err := svc.Search(ctx, "", me.ID.Hex())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "g@x.com", results[0].Email)

	// a query matching the requester still excludes them
	results, err = svc.Search(ctx, "a@x.com", me.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpdateInfo(t *testing.T) {
	svc, fs, _ := newUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "Lovelace", "a@x.com", "secret1!")
	require.NoError(t, err)
	me, err := fs.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	bio := "hello"
	updated, err := svc.UpdateInfo(ctx, me.ID.Hex(), nil, &bio)
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "Ada Lovelace", updated.Name, "omitted fields stay untouched")

	_, err = svc.UpdateInfo(ctx, bson.NewObjectID().Hex(), nil, &bio)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
