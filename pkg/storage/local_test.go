package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutGetList(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "reports/run-1.json", []byte(`{"ok":true}`)))
	require.NoError(t, store.Put(ctx, "reports/run-2.json", []byte(`{}`)))

	data, err := store.Get(ctx, "reports/run-1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	keys, err := store.List(ctx, "reports")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"reports/run-1.json", "reports/run-2.json"}, keys)
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Get(context.Background(), "nope.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListMissingPrefix(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	keys, err := store.List(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Location
		wantErr bool
	}{
		{name: "s3 object", uri: "s3://bench/mknap/1.txt", want: Location{Bucket: "bench", Key: "mknap/1.txt"}},
		{name: "s3 bucket only", uri: "s3://bench", want: Location{Bucket: "bench"}},
		{name: "s3 missing bucket", uri: "s3:///key", wantErr: true},
		{name: "local file", uri: filepath.Join("data", "input.txt"), want: Location{Root: "data", Key: "input.txt"}},
		{name: "bare file", uri: "input.txt", want: Location{Root: ".", Key: "input.txt"}},
		{name: "empty", uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Local(t *testing.T) {
	dir := t.TempDir()
	store, key, err := Open(context.Background(), filepath.Join(dir, "input.txt"))
	require.NoError(t, err)

	assert.Equal(t, "input.txt", key)
	require.IsType(t, &LocalStore{}, store)
	assert.Equal(t, dir, store.(*LocalStore).Root)
}
