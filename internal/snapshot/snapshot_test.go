package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	at := time.Date(2024, 2, 3, 4, 5, 6, 7, time.FixedZone("BRT", -3*3600))

	key := Key("ppe", at, id, "image/jpeg")

	assert.True(t, strings.HasPrefix(key, "ppe/2024/02/03/"))
	assert.True(t, strings.HasSuffix(key, "_0f8fad5b-d9cb-469f-a165-70867728950e.jpg"))
	assert.NotEqual(t, key, Key("ppe", at, uuid.New(), "image/jpeg"), "different incidents never collide")
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"image/png":                ".png",
		"image/jpeg":               ".jpg",
		"IMAGE/JPEG; charset=utf8": ".jpg",
		"":                         ".jpg",
		"image/webp":               ".webp",
		"application/octet-stream": ".bin",
	}
	for ct, want := range tests {
		assert.Equal(t, want, Extension(ct), ct)
	}
}

func TestFSStore_SaveAndDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "ppe/2024/01/01/1_abc.jpg", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	require.NoError(t, store.Delete(context.Background(), path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), path), "deleting twice is fine")
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../../etc/passwd", []byte("x"), "")
	assert.Error(t, err)

	assert.Error(t, store.Delete(context.Background(), "/etc/hosts"))
}

func TestFSStore_CancelledContext(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, "ppe/x.jpg", []byte("x"), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseGCSPath(t *testing.T) {
	bucket, key, err := parseGCSPath("gs://evidence/ppe/2024/01/01/1_abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "evidence", bucket)
	assert.Equal(t, "ppe/2024/01/01/1_abc.jpg", key)

	for _, bad := range []string{"/tmp/x.jpg", "gs://", "gs://bucket", "gs:///key"} {
		_, _, err := parseGCSPath(bad)
		assert.Error(t, err, bad)
	}
}
