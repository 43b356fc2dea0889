package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/credentials"
	"github.com/CrispStrobe/filen-dart/internal/model"
)

func TestSaveLoad_RoundTripsMasterKeyOrder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	id := model.Identity{
		Email:        "user@example.com",
		APIKey:       "token123",
		MasterKeys:   []string{"old-key", "new-key"},
		BaseFolderID: "root0",
		UserID:       "u-1",
	}
	require.NoError(t, credentials.Save(id))

	loaded, err := credentials.Load()
	require.NoError(t, err)
	require.Equal(t, id, loaded)
}

func TestLoad_MissingFileReturnsErrNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := credentials.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestLoad_EmptyAPIKeyTreatedAsNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, credentials.Save(model.Identity{Email: "user@example.com"}))

	_, err := credentials.Load()
	require.ErrorIs(t, err, credentials.ErrNotFound)
}
