package detect

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"strconv"

	"github.com/corona10/goimagehash"
)

func fallbackHash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// MaxHashDistance is the Hamming distance at or below which two perception
// hashes are considered the same frame.
const MaxHashDistance = 5

// PerceptualHasher digests captured frames into 64-bit perception hashes so
// near-identical frames (cursor blinks, clock ticks) compare as duplicates.
// Bytes that do not decode as an image fall back to an exact hash.
type PerceptualHasher struct{}

// Hash returns the hex-encoded perception hash of the frame.
func (PerceptualHasher) Hash(data []byte) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fallbackHash(data)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return fallbackHash(data)
	}
	return strconv.FormatUint(hash.GetHash(), 16)
}

// Perceptual is a near-duplicate detector over perception hashes: a hash is a
// duplicate when its Hamming distance to any remembered hash is within
// threshold. Hashes that do not parse degrade to exact matching.
type Perceptual struct {
	exact     Set
	hashes    []uint64
	threshold int
}

// NewPerceptual creates a perceptual detector. threshold <= 0 selects
// MaxHashDistance.
func NewPerceptual(threshold int) *Perceptual {
	if threshold <= 0 {
		threshold = MaxHashDistance
	}
	return &Perceptual{exact: Set{hashes: make(map[string]struct{})}, threshold: threshold}
}

// IsDuplicate reports whether hash is within threshold of a remembered frame.
func (p *Perceptual) IsDuplicate(hash string) bool {
	bits, err := strconv.ParseUint(hash, 16, 64)
	if err != nil {
		return p.exact.IsDuplicate(hash)
	}
	for _, seen := range p.hashes {
		if hammingDistance(bits, seen) <= p.threshold {
			return true
		}
	}
	return false
}

// Remember records the hash. Exact duplicates are not stored twice.
func (p *Perceptual) Remember(hash string) {
	bits, err := strconv.ParseUint(hash, 16, 64)
	if err != nil {
		p.exact.Remember(hash)
		return
	}
	for _, seen := range p.hashes {
		if seen == bits {
			return
		}
	}
	p.hashes = append(p.hashes, bits)
}

func hammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}
