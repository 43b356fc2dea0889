package cryptoutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
)

func TestSealOpenGCM_RoundTrip(t *testing.T) {
	key, err := cryptoutil.RandomBytes(32)
	require.NoError(t, err)
	iv, err := cryptoutil.RandomBytes(12)
	require.NoError(t, err)

	sealed, err := cryptoutil.SealGCM(key, iv, []byte("hello filen"))
	require.NoError(t, err)

	opened, err := cryptoutil.OpenGCM(key, 12, sealed)
	require.NoError(t, err)
	require.Equal(t, "hello filen", string(opened))
}

func TestOpenGCM_WrongKeyFails(t *testing.T) {
	key, _ := cryptoutil.RandomBytes(32)
	wrongKey, _ := cryptoutil.RandomBytes(32)
	iv, _ := cryptoutil.RandomBytes(12)

	sealed, err := cryptoutil.SealGCM(key, iv, []byte("secret"))
	require.NoError(t, err)

	_, err = cryptoutil.OpenGCM(wrongKey, 12, sealed)
	require.ErrorIs(t, err, cryptoutil.ErrDecryptFailed)
}

func TestOpenGCM_ShortCiphertext(t *testing.T) {
	key, _ := cryptoutil.RandomBytes(32)
	_, err := cryptoutil.OpenGCM(key, 12, []byte("short"))
	require.ErrorIs(t, err, cryptoutil.ErrShortCiphertext)
}

func TestStreamingHash_MatchesOneShot(t *testing.T) {
	h := cryptoutil.NewStreamingHash()
	_, _ = h.Write([]byte("abc"))
	_, _ = h.Write([]byte("def"))
	require.Equal(t, cryptoutil.SHA512Hex([]byte("abcdef")), h.SumHex())
}

func TestRandomString_UsesAlphabetAndLength(t *testing.T) {
	s, err := cryptoutil.RandomString(32)
	require.NoError(t, err)
	require.Len(t, s, 32)
	for _, r := range s {
		require.Contains(t, cryptoutil.RandomAlphabet, string(r))
	}
}
