package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedDriver string
		expectedDSN    string
		wantErr        bool
	}{
		{"sqlite path", "sqlite:///tmp/creds.db", "sqlite", "/tmp/creds.db", false},
		{"postgres", "postgres://u:p@localhost/db", "postgres", "postgres://u:p@localhost/db", false},
		{"postgresql alias", "postgresql://localhost/db", "postgres", "postgresql://localhost/db", false},
		{"sqlite without path", "sqlite://", "", "", true},
		{"unknown scheme", "mysql://localhost", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			driver, dsn, err := ParseURL(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedDriver, driver)
			assert.Equal(t, tc.expectedDSN, dsn)
		})
	}
}

func TestWithTx(t *testing.T) {
	db, err := Open("sqlite://" + filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = db.ExecContext(ctx, `CREATE TABLE items (name TEXT)`)
	require.NoError(t, err)

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('b')`); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		var count int
		require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`))
		assert.Equal(t, 1, count)
	})
}
