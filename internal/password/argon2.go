// Package password hashes and verifies account passwords with Argon2id,
// encoded as PHC strings.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB    uint32 = 8 * 1024
	minTime        uint32 = 1
	minParallelism uint8  = 1
	minSaltLength         = 8

	defaultSaltLength uint32 = 16
	defaultKeyLength  uint32 = 32
)

var (
	// ErrInvalidHash is returned when a stored hash is not a parseable argon2id PHC string.
	ErrInvalidHash = errors.New("invalid argon2id hash")

	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password is empty")
)

// Params are the Argon2id cost parameters.
type Params struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
}

// DefaultParams returns the argon2 crate defaults the stored hashes use
// (19 MiB, two passes, one lane).
func DefaultParams() Params {
	return Params{
		MemoryKB:    19456,
		Time:        2,
		Parallelism: 1,
	}
}

// Hasher hashes passwords with fixed parameters. It is safe for concurrent use.
type Hasher struct {
	params Params
}

// NewHasher validates params and returns a Hasher.
func NewHasher(params Params) (*Hasher, error) {
	if params.MemoryKB < minMemoryKB {
		return nil, fmt.Errorf("argon2 memory must be at least %d KiB", minMemoryKB)
	}
	if params.Time < minTime {
		return nil, errors.New("argon2 time must be at least 1")
	}
	if params.Parallelism < minParallelism {
		return nil, errors.New("argon2 parallelism must be at least 1")
	}
	return &Hasher{params: params}, nil
}

// Hash returns the PHC encoding of password under a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, defaultSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKB, h.params.Parallelism, defaultKeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.MemoryKB,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. The parameters stored in
// encoded are used, not the hasher's own.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	phc, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), phc.salt, phc.params.Time, phc.params.MemoryKB, phc.params.Parallelism, uint32(len(phc.key)))
	return subtle.ConstantTimeCompare(key, phc.key) == 1, nil
}

type parsedPHC struct {
	params Params
	salt   []byte
	key    []byte
}

func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, ErrInvalidHash
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") || version != argon2.Version {
		return nil, ErrInvalidHash
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := decodeB64(parts[4])
	if err != nil || len(salt) < minSaltLength {
		return nil, ErrInvalidHash
	}

	key, err := decodeB64(parts[5])
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidHash
	}

	return &parsedPHC{params: params, salt: salt, key: key}, nil
}

func parseParams(part string) (Params, error) {
	var (
		p                   Params
		seenM, seenT, seenP bool
	)
	for _, pair := range strings.Split(part, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return Params{}, ErrInvalidHash
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || uint32(v) < minMemoryKB {
				return Params{}, ErrInvalidHash
			}
			p.MemoryKB, seenM = uint32(v), true
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || uint32(v) < minTime {
				return Params{}, ErrInvalidHash
			}
			p.Time, seenT = uint32(v), true
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || uint8(v) < minParallelism {
				return Params{}, ErrInvalidHash
			}
			p.Parallelism, seenP = uint8(v), true
		default:
			return Params{}, ErrInvalidHash
		}
	}
	if !seenM || !seenT || !seenP {
		return Params{}, ErrInvalidHash
	}
	return p, nil
}

// decodeB64 accepts both unpadded (PHC standard) and padded base64.
func decodeB64(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
