// Package password verifies salted one-way password hashes.
//
// Supported encodings:
//   - bcrypt ($2a$, $2b$, $2y$), produced by Hash
//   - werkzeug "pbkdf2:<digest>[:<iterations>]$<salt>$<hex>"
//   - werkzeug "scrypt[:<n>:<r>:<p>]$<salt>$<hex>"
//
// The werkzeug forms let credential files written by Python tooling keep working.
package password

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// ErrUnsupportedHash is returned for hashes in an unknown or malformed encoding.
var ErrUnsupportedHash = errors.New("unsupported password hash format")

const (
	defaultPBKDF2Iterations = 600000
	scryptKeyLen            = 64
)

// Hash returns a bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches encoded. A mismatch is (false, nil);
// an error means the stored hash itself could not be used.
func Verify(encoded, password string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	case strings.HasPrefix(encoded, "pbkdf2:"), strings.HasPrefix(encoded, "scrypt"):
		return verifyWerkzeug(encoded, password)
	default:
		return false, ErrUnsupportedHash
	}
}

func verifyWerkzeug(encoded, password string) (bool, error) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false, ErrUnsupportedHash
	}
	method, salt, hexSum := parts[0], parts[1], parts[2]

	want, err := hex.DecodeString(hexSum)
	if err != nil || len(want) == 0 {
		return false, ErrUnsupportedHash
	}

	var got []byte
	fields := strings.Split(method, ":")
	switch fields[0] {
	case "pbkdf2":
		got, err = pbkdf2Sum(fields[1:], salt, password)
	case "scrypt":
		got, err = scryptSum(fields[1:], salt, password)
	default:
		err = ErrUnsupportedHash
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func pbkdf2Sum(args []string, salt, password string) ([]byte, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, ErrUnsupportedHash
	}
	var h func() hash.Hash
	switch args[0] {
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	case "sha1":
		h = sha1.New
	default:
		return nil, fmt.Errorf("%w: digest %q", ErrUnsupportedHash, args[0])
	}
	iter := defaultPBKDF2Iterations
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return nil, ErrUnsupportedHash
		}
		iter = n
	}
	return pbkdf2.Key([]byte(password), []byte(salt), iter, h().Size(), h), nil
}

func scryptSum(args []string, salt, password string) ([]byte, error) {
	n, r, p := 32768, 8, 1
	switch len(args) {
	case 0:
	case 3:
		vals := make([]int, 3)
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil || v < 1 {
				return nil, ErrUnsupportedHash
			}
			vals[i] = v
		}
		n, r, p = vals[0], vals[1], vals[2]
	default:
		return nil, ErrUnsupportedHash
	}
	sum, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	return sum, nil
}
