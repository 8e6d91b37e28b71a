package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestSecureStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := NewSQLiteStore(setupDB(t))
	secure := NewSecureStore(inner, []byte("device-secret"))

	require.NoError(t, secure.Set(ctx, "auth/session", []byte(`{"access_token":"t"}`)))

	// The underlying store must not contain the plaintext.
	raw, err := inner.Get(ctx, "auth/session")
	require.NoError(t, err)
	require.NotNil(t, raw)
	require.NotContains(t, string(raw), "access_token")

	got, err := secure.Get(ctx, "auth/session")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"access_token":"t"}`), got)
}

func TestSecureStore_MissingKeyIsNilNil(t *testing.T) {
	ctx := context.Background()
	secure := NewSecureStore(NewSQLiteStore(setupDB(t)), []byte("device-secret"))

	got, err := secure.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSecureStore_WrongDeviceSecretFails(t *testing.T) {
	ctx := context.Background()
	inner := NewSQLiteStore(setupDB(t))

	first := NewSecureStore(inner, []byte("secret-one"))
	require.NoError(t, first.Set(ctx, "k", []byte("v")))

	second := NewSecureStore(inner, []byte("secret-two"))
	_, err := second.Get(ctx, "k")
	require.Error(t, err)
}
