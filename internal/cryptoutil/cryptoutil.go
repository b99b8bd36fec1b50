// Package cryptoutil wraps the primitives the PADDLA protocol needs
// to be bit-for-bit identical across server and client implementations:
// SHA-256, HMAC-SHA256, hex codec, and the byte→double folding used to
// turn a hash into a uniform draw in [0,1).
package cryptoutil

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// SHA256 returns the SHA-256 digest of b.
func SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// SHA256Hex returns the hex-encoded SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HMACSHA256 computes HMAC-SHA256(key, msg).
func HMACSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// HMACSHA256Hex computes HMAC-SHA256(key, msg) and hex-encodes the result.
func HMACSHA256Hex(key, msg []byte) string {
	return hex.EncodeToString(HMACSHA256(key, msg))
}

// HexEncode/HexDecode are thin wrappers kept so call sites never reach
// past this package for the wire codec.
func HexEncode(b []byte) string            { return hex.EncodeToString(b) }
func HexDecode(s string) ([]byte, error)   { return hex.DecodeString(s) }

// BytesToDouble folds the first 8 bytes of b, read big-endian, into an
// unsigned 64-bit integer and returns it as a double in [0,1). b must be
// at least 8 bytes (a SHA-256/HMAC-SHA256 digest always is).
//
// Implementations MUST divide by 2^64 using the same high*2^32+low
// composition the spec pins, rather than any other representation of the
// uint64, so rounding behaves identically across languages. Inputs within
// 1024 of 2^64 round up to 2^64 in that sum; those fold to the largest
// double below 1 so the result stays in [0,1).
func BytesToDouble(b []byte) float64 {
	n := binary.BigEndian.Uint64(b[:8])
	high := float64(n >> 32)
	low := float64(n & 0xFFFFFFFF)
	v := (high*4294967296.0 + low) / 18446744073709551616.0
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

// RandomHex returns n cryptographically random bytes, hex-encoded.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
