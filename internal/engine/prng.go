package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// SeedFromString hashes an arbitrary string into a 64-bit seed.
func SeedFromString(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(h[:8])
}

// Derive returns a child seed for label using HMAC-SHA256 keyed by base.
// Labels are stable strings such as "board:pins" or "board:finale:library".
func Derive(base uint64, label string) uint64 {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, base)
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(label))
	sum := m.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// Seed is the root of every board shuffle in one session. Two sessions with
// the same seed text see identical boards.
type Seed struct {
	Text string
	root uint64
}

func NewSeed(text string) (Seed, error) {
	if text == "" {
		return Seed{}, fmt.Errorf("seed text must not be empty")
	}
	return Seed{Text: text, root: SeedFromString(text)}, nil
}

// ForSession mixes a session id into the root so sessions sharing a seed
// text still differ.
func (s Seed) ForSession(sessionID string) Seed {
	if sessionID == "" {
		return s
	}
	return Seed{Text: s.Text, root: Derive(s.root, "session:"+sessionID)}
}

// Stream returns the deterministic stream for label.
func (s Seed) Stream(label string) *Stream {
	return newStream(Derive(s.root, label))
}

// BoardStream is the stream a puzzle's NewBoard draws from.
func (s Seed) BoardStream(id PuzzleID) *Stream {
	return s.Stream("board:" + string(id))
}

type splitMix64 struct{ state uint64 }

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Stream is a SplitMix64 generator.
type Stream struct {
	sm *splitMix64
}

func newStream(seed uint64) *Stream {
	return &Stream{sm: &splitMix64{state: seed}}
}

// Intn mirrors math/rand.Intn. n <= 0 yields 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.sm.next() % uint64(n))
}

// Float64 returns a float in [0,1).
func (s *Stream) Float64() float64 { return float64(s.sm.next()>>11) / (1 << 53) }

func (s *Stream) Uint64() uint64 { return s.sm.next() }

// Shuffle runs Fisher-Yates over n elements using swap.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}
