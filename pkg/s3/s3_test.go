package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
)

func TestKey(t *testing.T) {
	owner := uuid.New()
	k, err := Key("avatars", owner, "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k, "avatars/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(k, ".png"))

	_, err = Key("avatars", owner, "text/html")
	assert.ErrorIs(t, err, ErrContentType)
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(1<<20, 2))
	assert.ErrorIs(t, CheckSize(3<<20, 2), ErrTooLarge)
	assert.ErrorIs(t, CheckSize(0, 2), ErrTooLarge)
	assert.NoError(t, CheckSize(9<<20, 0))
}

func TestNewDisabled(t *testing.T) {
	st, err := New(context.Background(), config.S3Config{})
	require.NoError(t, err)
	assert.ErrorIs(t, st.Upload(context.Background(), "k", "image/png", strings.NewReader("x"), 1), ErrDisabled)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Upload(ctx, "a/b.png", "image/png", strings.NewReader("data"), 4))
	assert.Equal(t, []byte("data"), m.Objects["a/b.png"])

	url, err := m.PresignDownload(ctx, "a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "memory://a/b.png", url)

	require.NoError(t, m.Delete(ctx, "a/b.png"))
	_, err = m.PresignDownload(ctx, "a/b.png")
	assert.Error(t, err)
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := uuid.New()

	key, err := Put(ctx, m, "avatars", owner, File{ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "avatars/"+owner.String()+"/"))
	assert.Equal(t, []byte("png"), m.Objects[key])

	_, err = Put(ctx, m, "avatars", owner, File{ContentType: "text/plain", Size: 3, Body: strings.NewReader("txt")}, 1)
	assert.ErrorIs(t, err, ErrContentType)

	_, err = Put(ctx, m, "avatars", owner, File{ContentType: "image/png", Size: 2 << 20}, 1)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Put(ctx, Disabled{}, "avatars", owner, File{ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}, 1)
	assert.ErrorIs(t, err, ErrDisabled)
}
