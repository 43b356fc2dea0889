package batch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/batch"
)

func TestID_DeterministicAndOrderSensitive(t *testing.T) {
	a := batch.ID(batch.KindUpload, []string{"/a", "/b"}, "/remote")
	b := batch.ID(batch.KindUpload, []string{"/a", "/b"}, "/remote")
	require.Equal(t, a, b)
	require.Len(t, a, 16)

	c := batch.ID(batch.KindUpload, []string{"/b", "/a"}, "/remote")
	require.NotEqual(t, a, c)

	d := batch.ID(batch.KindDownload, []string{"/a", "/b"}, "/remote")
	require.NotEqual(t, a, d)
}

func TestSaveLoadDelete_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	id := batch.ID(batch.KindUpload, []string{"/a"}, "/remote")
	state := batch.State{
		OperationType:    batch.KindUpload,
		TargetRemotePath: "/remote",
		Tasks:            []batch.Task{batch.NewPendingTask("/a/f.txt")},
	}

	require.NoError(t, batch.Save(id, state))

	loaded, ok, err := batch.Load(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, state, loaded)

	require.NoError(t, batch.Delete(id))

	_, ok, err = batch.Load(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, ok, err := batch.Load("does-not-exist")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, batch.Delete("never-saved"))
}
