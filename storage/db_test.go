package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testBackends(t *testing.T) map[string]Database {
	t.Helper()
	ldb, err := NewLevelDB(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(ldb.Close)
	return map[string]Database{
		"memdb":   NewMemDB(),
		"leveldb": ldb,
	}
}

func TestDatabaseRoundTrip(t *testing.T) {
	for name, db := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("vault/proposal/1")
			require.NoError(t, db.Put(key, []byte("payload")))

			value, err := db.Get(key)
			require.NoError(t, err)
			require.Equal(t, []byte("payload"), value)

			ok, err := db.Has(key)
			require.NoError(t, err)
			require.True(t, ok)

			require.NoError(t, db.Put(key, []byte("updated")))
			value, err = db.Get(key)
			require.NoError(t, err)
			require.Equal(t, []byte("updated"), value)

			require.NoError(t, db.Delete(key))
			ok, err = db.Has(key)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestDatabaseMissingKey(t *testing.T) {
	for name, db := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Get([]byte("absent"))
			require.True(t, errors.Is(err, ErrKeyNotFound))

			// Deleting an absent key is a no-op.
			require.NoError(t, db.Delete([]byte("absent")))
		})
	}
}

func TestMemDBIsolatesStoredSlices(t *testing.T) {
	db := NewMemDB()
	value := []byte("original")
	require.NoError(t, db.Put([]byte("k"), value))
	value[0] = 'X'

	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("original"), again)
}
