package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

var codeSpace = big.NewInt(1_000_000)

// CodeHasher turns one-time codes into keyed digests so raw codes are never stored.
type CodeHasher struct {
	Key []byte
}

func (h CodeHasher) Hash(code string) string {
	mac := hmac.New(sha256.New, h.Key)
	mac.Write([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(mac.Sum(nil))
}

// RandomCode6 returns a zero-padded six digit code from crypto/rand.
func RandomCode6() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LooksLikeEmail only requires a non-empty local part and domain around the last @ and no whitespace.
func LooksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n")
}
