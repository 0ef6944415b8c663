package models

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID derives a hub session id from a fresh UUID.
// Zero is reserved for "not supplied", so it is never returned.
func GenerateSessionID() uint32 {
	for {
		if id := uuid.New().ID(); id != 0 {
			return id
		}
	}
}

func GenerateEventID() string {
	return fmt.Sprintf("evt_%s_%s",
		time.Now().Format("20060102"),
		uuid.NewString())
}

// CheckedMul returns a*b and false when the product overflows uint64.
func CheckedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func SaturatingIncrement(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}

// MazeID binds a maze to the character playing it and the sense it tests.
func MazeID(character Character, senseID uint32) uint32 {
	return uint32(character)<<8 | senseID
}
