package docrag

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.Provider())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in-memory database", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemoryStorage())
		require.NoError(t, err)
		defer db.Close()
		assert.NotNil(t, db.ChunkRepository())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, db.Close())
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("can create backfiller", func(t *testing.T) {
		backfiller, err := db.NewBackfiller(nil, io.Discard)
		require.NoError(t, err)
		require.NotNil(t, backfiller)
	})

	t.Run("can create responder", func(t *testing.T) {
		responder, err := db.NewResponder()
		require.NoError(t, err)
		require.NotNil(t, responder)
	})
}
