package keygen

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds a key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the PEM-encoded private key.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// Signer parses the private key for use as an SSH host or client key.
func (k *KeyPair) Signer() (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// GenerateEd25519KeyPair generates an Ed25519 key pair, PEM-encoded in the
// OpenSSH private key format. Generation is fast enough for per-test host keys.
func GenerateEd25519KeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 private key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("failed to encode Ed25519 private key: %w", err)
	}
	return newKeyPair(pem.EncodeToMemory(block), pub)
}

func newKeyPair(privPEM []byte, pub crypto.PublicKey) (*KeyPair, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}
	return &KeyPair{
		PrivateKey: privPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(sshPub),
	}, nil
}
