package workspace

import "crypto/rand"

// Invite codes skip 0/O and 1/I so they survive being read aloud.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLen = 8

// NewInviteCode returns a random 8-character uppercase invite code.
// Uniqueness is enforced by the store; callers retry on collision.
func NewInviteCode() string {
	buf := make([]byte, inviteCodeLen)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf)
}
