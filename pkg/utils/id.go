package utils

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

var idCounter uint32

// GenerateID returns a 24-hex-character id: a 4-byte unix timestamp, 5
// random bytes and a 3-byte counter. Ids sort by creation second.
func GenerateID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(time.Now().Unix()))
	_, _ = rand.Read(b[4:9])
	c := atomic.AddUint32(&idCounter, 1) % 0xFFFFFF
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// DebugID builds the id that groups the logs and payload dumps of one
// request: an 8-char hex timestamp, an underscore and the session id.
func DebugID(sessionID string) string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(time.Now().Unix()))
	return hex.EncodeToString(b) + "_" + sessionID
}
