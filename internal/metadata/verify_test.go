package metadata

import (
	"bytes"
	"os"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("test", "", "test@example.com", nil)
	require.NoError(t, err)
	return entity
}

func keyringOf(t *testing.T, entity *openpgp.Entity) Keyring {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	f := t.TempDir() + "/key.asc"
	require.NoError(t, os.WriteFile(f, buf.Bytes(), 0o644))
	keyring, err := LoadKeyring([]string{f})
	require.NoError(t, err)
	return keyring
}

func TestVerifyInReleaseDetachedSignature(t *testing.T) {
	entity := testEntity(t)
	keyring := keyringOf(t, entity)

	body := []byte("Origin: test\nSuite: stable\n")
	var sigBuf bytes.Buffer
	require.NoError(t, openpgp.DetachSign(&sigBuf, entity, bytes.NewReader(body), nil))

	assert.NoError(t, VerifyInRelease(body, sigBuf.Bytes(), keyring))
	assert.Error(t, VerifyInRelease([]byte("tampered"), sigBuf.Bytes(), keyring))
}

func TestVerifyInReleaseCleartextSignature(t *testing.T) {
	entity := testEntity(t)
	keyring := keyringOf(t, entity)

	var buf bytes.Buffer
	w, err := clearsign.Encode(&buf, entity.PrivateKey, nil)
	require.NoError(t, err)
	_, err = w.Write([]byte("Origin: test\nSuite: stable\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.NoError(t, VerifyInRelease(buf.Bytes(), nil, keyring))
}

func TestVerifyInReleaseRequiresTrustedKeys(t *testing.T) {
	err := VerifyInRelease([]byte("anything"), nil, Keyring{})
	assert.Error(t, err)
}

func TestVerifySHA256(t *testing.T) {
	data := []byte("hello")
	assert.NoError(t, VerifySHA256(bytes.NewReader(data), "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
	assert.Error(t, VerifySHA256(bytes.NewReader(data), "deadbeef"))
}
