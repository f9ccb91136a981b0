package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// DHash computes a 64-bit difference hash of an image. Near-identical
// images produce hashes within a small Hamming distance, which is enough
// to catch the same photo submitted twice; it says nothing about whether
// two different photos show the same face.
func DHash(img image.Image) uint64 {
	// 9 columns give 8 horizontal differences per row.
	resized := image.NewRGBA(image.Rect(0, 0, 9, 8))
	xdraw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	gray := make([][]float64, 9)
	for x := 0; x < 9; x++ {
		gray[x] = make([]float64, 8)
		for y := 0; y < 8; y++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			gray[x][y] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	var hash uint64
	bit := 63
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if gray[x][y] > gray[x+1][y] {
				hash |= 1 << bit
			}
			bit--
		}
	}
	return hash
}

// HammingDistance computes the Hamming distance between two 64-bit hashes.
func HammingDistance(hash1, hash2 uint64) int {
	xor := hash1 ^ hash2
	distance := 0
	for xor != 0 {
		distance++
		xor &= xor - 1 // Clear lowest set bit
	}
	return distance
}

// SimilarHash returns true if two hashes are within the given threshold.
// A threshold of 10 is typically used for near-duplicate detection.
func SimilarHash(hash1, hash2 uint64, threshold int) bool {
	return HammingDistance(hash1, hash2) <= threshold
}
