package services

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// randomUUID is the primary generator. It reads crypto/rand.
var randomUUID = uuid.NewRandom

var (
	fallbackMu      sync.Mutex
	fallbackRand    *rand.ChaCha8
	fallbackCounter atomic.Uint64
)

// NewUUID returns a random version 4 UUID. When the system entropy source
// fails, a ChaCha8 stream seeded from the clock, process id and a counter
// is used instead.
func NewUUID() string {
	if id, err := randomUUID(); err == nil {
		return id.String()
	}
	return fallbackUUID()
}

func fallbackUUID() string {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()

	if fallbackRand == nil {
		fallbackRand = rand.NewChaCha8(fallbackSeed())
	}

	var id uuid.UUID
	binary.LittleEndian.PutUint64(id[0:8], fallbackRand.Uint64())
	binary.LittleEndian.PutUint64(id[8:16], fallbackRand.Uint64()^fallbackCounter.Add(1))
	id[6] = (id[6] & 0x0f) | 0x40 // version 4
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id.String()
}

func fallbackSeed() [32]byte {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(os.Getpid()))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], fallbackCounter.Add(1))
	h.Write(buf[:])

	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return seed
}
