package envelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
)

func TestEncode002Decode002_RoundTrip(t *testing.T) {
	key := cryptoutil.DeriveEnvelopeKey("some-file-key-ascii-32-chars1234")
	enc, err := envelope.Encode002(key, []byte("hello world"))
	require.NoError(t, err)
	require.Regexp(t, `^002.{12}`, enc)

	dec, err := envelope.Decode002(key, enc)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(dec))
}

func TestDecode002_RejectsBadPrefix(t *testing.T) {
	key := cryptoutil.DeriveEnvelopeKey("k")
	_, err := envelope.Decode002(key, "001somethingelse")
	require.ErrorIs(t, err, envelope.ErrBadPrefix)
}

func TestDecodeWithKeyRing_TriesNewestFirstAndFindsOlder(t *testing.T) {
	oldKeyStr := "old-key-ascii-32-characters-long"
	newKeyStr := "new-key-ascii-32-characters-long"
	oldKey := cryptoutil.DeriveEnvelopeKey(oldKeyStr)
	newKey := cryptoutil.DeriveEnvelopeKey(newKeyStr)

	enc, err := envelope.Encode002(oldKey, []byte("legacy payload"))
	require.NoError(t, err)

	plaintext, err := envelope.DecodeWithKeyRing([][]byte{newKey, oldKey}, enc)
	require.NoError(t, err)
	require.Equal(t, "legacy payload", string(plaintext))
}

func TestDecodeWithKeyRing_ExhaustionFails(t *testing.T) {
	key := cryptoutil.DeriveEnvelopeKey("k1")
	other := cryptoutil.DeriveEnvelopeKey("k2")
	enc, err := envelope.Encode002(key, []byte("x"))
	require.NoError(t, err)

	_, err = envelope.DecodeWithKeyRing([][]byte{other}, enc)
	require.ErrorIs(t, err, envelope.ErrDecryptFailed)
}

func TestFileMetadata_RoundTrip(t *testing.T) {
	masterKey := cryptoutil.DeriveEnvelopeKey("master-key-ascii-32-characters12")
	meta := model.DecryptedMetadata{
		Name: "report.pdf", Size: 4096, Mime: "application/pdf",
		Key: "filekey", Hash: "deadbeef", LastModified: 1700000000000,
	}
	enc, err := envelope.EncodeFileMetadata(masterKey, meta)
	require.NoError(t, err)

	got, err := envelope.DecodeFileMetadata([][]byte{masterKey}, enc)
	require.NoError(t, err)
	require.Equal(t, meta, got)
}

func TestFolderName_RawStringVariant(t *testing.T) {
	masterKey := cryptoutil.DeriveEnvelopeKey("master-key-ascii-32-characters12")
	enc, err := envelope.Encode002(masterKey, []byte("Documents"))
	require.NoError(t, err)

	name, err := envelope.DecodeFolderName([][]byte{masterKey}, enc)
	require.NoError(t, err)
	require.Equal(t, "Documents", name)
}

func TestFolderName_JSONObjectVariant(t *testing.T) {
	masterKey := cryptoutil.DeriveEnvelopeKey("master-key-ascii-32-characters12")
	enc, err := envelope.EncodeFolderName(masterKey, "Photos")
	require.NoError(t, err)

	name, err := envelope.DecodeFolderName([][]byte{masterKey}, enc)
	require.NoError(t, err)
	require.Equal(t, "Photos", name)
}

func TestFolderName_MalformedObjectRejected(t *testing.T) {
	masterKey := cryptoutil.DeriveEnvelopeKey("master-key-ascii-32-characters12")
	enc, err := envelope.Encode002(masterKey, []byte(`{"notname":"x"}`))
	require.NoError(t, err)

	_, err = envelope.DecodeFolderName([][]byte{masterKey}, enc)
	require.ErrorIs(t, err, envelope.ErrMalformedEnvelope)
}
