package metadata

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/types"
)

// Keyring holds the trusted OpenPGP entities for one repo, loaded once
// per run.
type Keyring struct {
	entities openpgp.EntityList
}

// LoadKeyring reads and parses every armored public key file at paths.
func LoadKeyring(paths []string) (Keyring, error) {
	var entities openpgp.EntityList
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return Keyring{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to read trusted key: " + path).
				WithCause(err)
		}
		keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
		if err != nil {
			return Keyring{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse trusted key: " + path).
				WithCause(types.ErrSignature)
		}
		entities = append(entities, keyring...)
	}
	return Keyring{entities: entities}, nil
}

// VerifyInRelease checks an InRelease file that is either cleartext
// signed (the signature embedded in the file itself) or accompanied by
// a detached Release.gpg signature.
func VerifyInRelease(body []byte, detachedSig []byte, keyring Keyring) error {
	if len(keyring.entities) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnauthenticated).
			WithMsg("no trusted keys configured").
			WithCause(types.ErrSignature)
	}

	if detachedSig != nil {
		_, err := openpgp.CheckDetachedSignature(keyring.entities, bytes.NewReader(body), bytes.NewReader(detachedSig), &packet.Config{})
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeUnauthenticated).
				WithMsg("InRelease detached signature verification failed").
				WithCause(types.ErrSignature)
		}
		return nil
	}

	block, _ := clearsign.Decode(body)
	if block == nil || block.ArmoredSignature == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnauthenticated).
			WithMsg("InRelease is neither cleartext-signed nor accompanied by a detached signature").
			WithCause(types.ErrSignature)
	}
	_, err := openpgp.CheckDetachedSignature(keyring.entities, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, &packet.Config{})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeUnauthenticated).
			WithMsg("InRelease cleartext signature verification failed").
			WithCause(types.ErrSignature)
	}
	return nil
}

// VerifySHA256 checks that computing SHA-256 over r yields expectedHex
//.
func VerifySHA256(r io.Reader, expectedHex string) error {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return err
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != expectedHex {
		return errbuilder.New().
			WithCode(errbuilder.CodeDataLoss).
			WithMsg("sha256 mismatch: expected " + expectedHex + " got " + actual).
			WithCause(types.ErrIntegrity)
	}
	return nil
}
