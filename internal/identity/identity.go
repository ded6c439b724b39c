// Package identity maps Telegram users to tracker accounts. An identity is
// created on first contact and linked to an account out-of-band using a
// one-time verification code.
package identity

import (
	"crypto/rand"
	"time"
)

// codeAlphabet is the vocabulary for verification codes.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a verification code.
const CodeLength = 12

// Identity is a Telegram user known to the bot. ChatID and Username are
// captured on first contact and never overwritten afterward.
type Identity struct {
	UserID           int64  // Telegram user id, unique
	ChatID           int64  // chat captured at first contact
	Username         string // display name captured at first contact
	AccountID        int64  // linked tracker account, 0 when unlinked
	VerificationCode string // pending code, empty once consumed
	Created          time.Time
	Updated          time.Time
}

// Linked reports whether the identity is bound to a tracker account.
func (i *Identity) Linked() bool {
	return i.AccountID != 0
}

// NewVerificationCode generates a 12-character code drawn uniformly from
// the alphanumeric alphabet. Codes are not required to be unique across
// identities.
func NewVerificationCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process has bigger problems.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
