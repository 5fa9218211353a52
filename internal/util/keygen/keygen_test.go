package keygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	t.Parallel()

	keyPair, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	signer, err := keyPair.Signer()
	require.NoError(t, err)
	assert.Equal(t, ssh.KeyAlgoED25519, signer.PublicKey().Type())

	pub, _, _, _, err := ssh.ParseAuthorizedKey(keyPair.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKey().Marshal(), pub.Marshal())
}

func TestGenerateEd25519KeyPair_Unique(t *testing.T) {
	t.Parallel()
	a, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	b, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey, b.PublicKey)
}

func TestSigner_InvalidKey(t *testing.T) {
	t.Parallel()
	_, err := (&KeyPair{PrivateKey: []byte("garbage")}).Signer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse private key")
}
