package credstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/util"
)

func TestStore_SaveThenClear(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		token string
		role  model.Role
	}{
		{"tok-a", model.RoleAdmin},
		{"tok-b", model.RoleUser},
		{strings.Repeat("x", 512), model.RoleUser},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			store := New(NewMemory())

			require.NoError(t, store.Save(ctx, tc.token, tc.role))
			assert.True(t, store.IsAuthenticated(ctx))

			token, ok, err := store.Token(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tc.token, token)

			role, ok, err := store.Role(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tc.role, role)

			require.NoError(t, store.Clear(ctx))
			assert.False(t, store.IsAuthenticated(ctx))

			_, ok, err = store.Token(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = store.Role(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_SaveRejectsPartialCredentials(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	store := New(mem)

	assert.Error(t, store.Save(ctx, "", model.RoleUser))
	assert.Error(t, store.Save(ctx, "tok", model.Role("guest")))
	assert.Equal(t, 0, mem.Len())
}

func TestStore_Credential(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemory())

	cred, err := store.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, store.Save(ctx, "tok", model.RoleAdmin))
	cred, err = store.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.Credential{Token: "tok", Role: model.RoleAdmin}, cred)
}

func TestStore_EncryptsTokenAtRest(t *testing.T) {
	ctx := context.Background()
	c, err := util.NewCipher(strings.Repeat("0f", 32))
	require.NoError(t, err)

	mem := NewMemory()
	store := New(mem, WithCipher(c))
	require.NoError(t, store.Save(ctx, "plain-token", model.RoleUser))

	raw, ok, err := mem.Get(ctx, TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "plain-token", raw)

	token, ok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "plain-token", token)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	urls := map[string]string{
		"memory": "memory://",
		"sqlite": "sqlite://" + filepath.Join(t.TempDir(), "creds.db"),
		"redis":  "redis://" + mr.Addr(),
	}

	for name, url := range urls {
		t.Run(name, func(t *testing.T) {
			store, err := Open(ctx, url, "")
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Save(ctx, "tok-"+name, model.RoleUser))
			assert.True(t, store.IsAuthenticated(ctx))

			require.NoError(t, store.Clear(ctx))
			assert.False(t, store.IsAuthenticated(ctx))
		})
	}

	t.Run("rejects bad encryption key", func(t *testing.T) {
		_, err := Open(ctx, "memory://", "short")
		assert.Error(t, err)
	})

	t.Run("rejects unknown scheme", func(t *testing.T) {
		_, err := Open(ctx, "ftp://example", "")
		assert.Error(t, err)
	})
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemory())

	t.Run("no token", func(t *testing.T) {
		_, err := store.Claims(ctx)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("reads JWT claims without verifying", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "user-1",
			"role": "user",
			"exp":  exp.Unix(),
		}).SignedString([]byte("unknown-to-client"))
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, signed, model.RoleUser))
		claims, err := store.Claims(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "user", claims.Role)
		assert.True(t, claims.ExpiresAt.Equal(exp))
		assert.False(t, claims.Expired(time.Now()))
		assert.True(t, claims.Expired(exp.Add(time.Minute)))
	})

	t.Run("opaque token", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "opaque", model.RoleUser))
		_, err := store.Claims(ctx)
		assert.Error(t, err)
	})
}
