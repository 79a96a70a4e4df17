package sqlite

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestTokenRepo_SaveAndLoadPlaintext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Save(ctx, model.CredentialToken{Service: "igdb", Token: "abc", ExpiresAt: expires}))

	tok, err := repo.Load(ctx, "igdb")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.Token)
	assert.True(t, expires.Equal(tok.ExpiresAt))
}

func TestTokenRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)

	tok, err := repo.Load(context.Background(), "igdb")
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestTokenRepo_EncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.CredentialToken{Service: "igdb", Token: "secret-token", ExpiresAt: time.Now().Add(time.Hour)}))

	var stored string
	err := db.Reader.QueryRowContext(ctx, `SELECT token FROM upstream_tokens WHERE service = 'igdb'`).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-token", stored)

	tok, err := repo.Load(ctx, "igdb")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", tok.Token)
}

func TestTokenRepo_EncryptedRowWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewTokenRepo(db, testKey()).Save(ctx, model.CredentialToken{Service: "igdb", Token: "t", ExpiresAt: time.Now()}))

	_, err := NewTokenRepo(db, nil).Load(ctx, "igdb")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestTokenRepo_SaveReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.CredentialToken{Service: "igdb", Token: "old", ExpiresAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, model.CredentialToken{Service: "igdb", Token: "new", ExpiresAt: time.Now()}))

	tok, err := repo.Load(ctx, "igdb")
	require.NoError(t, err)
	assert.Equal(t, "new", tok.Token)
}
