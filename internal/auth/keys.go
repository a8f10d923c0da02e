package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	keyDirPerm  = 0o700
	keyFilePerm = 0o600
)

// KeyPair holds the Ed25519 key used to sign and verify session tokens.
// It is immutable once constructed and safe to share between goroutines.
type KeyPair struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// GenerateKeyPair creates a fresh in-memory key pair.
func GenerateKeyPair() (*KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &KeyPair{private: private, public: public}, nil
}

// LoadOrGenerateKeyPair reads a PKCS#8 DER encoded Ed25519 private key from
// path. When the file does not exist a new key is generated and written to
// path, creating parent directories as needed. Every failure is reported as a
// *KeyLoadError.
func LoadOrGenerateKeyPair(path string) (*KeyPair, error) {
	der, err := os.ReadFile(path)
	switch {
	case err == nil:
		kp, err := parsePKCS8(der)
		if err != nil {
			return nil, &KeyLoadError{Path: path, Err: err}
		}
		return kp, nil
	case errors.Is(err, fs.ErrNotExist):
		return generateAndStore(path)
	default:
		return nil, &KeyLoadError{Path: path, Err: err}
	}
}

func generateAndStore(path string) (*KeyPair, error) {
	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	der, err := x509.MarshalPKCS8PrivateKey(kp.private)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("encode pkcs8: %w", err)}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, keyDirPerm); err != nil {
			return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("create key directory: %w", err)}
		}
	}

	if err := os.WriteFile(path, der, keyFilePerm); err != nil {
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("write key file: %w", err)}
	}

	return kp, nil
}

func parsePKCS8(der []byte) (*KeyPair, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse pkcs8: %w", err)
	}

	private, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported key type %T, want ed25519", parsed)
	}

	public, ok := private.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("derive ed25519 public key")
	}

	return &KeyPair{private: private, public: public}, nil
}

// PublicKey returns the verification half of the pair.
func (k *KeyPair) PublicKey() ed25519.PublicKey {
	return k.public
}

// PublicKeyFingerprint returns the hex SHA-256 digest of the public key.
func (k *KeyPair) PublicKeyFingerprint() string {
	sum := sha256.Sum256(k.public)
	return hex.EncodeToString(sum[:])
}
