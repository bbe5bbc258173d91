package healpix

import "sync"

// The nested index of cell (ix, iy) inside a base face interleaves the bits of
// ix (even positions) and iy (odd positions). x2pix/y2pix hold that
// interleaving for 7-bit inputs; wider coordinates are split into a high and
// a low 7-bit half.
var (
	xy2pixOnce sync.Once
	x2pix      [128]int
	y2pix      [128]int
)

func mkXY2Pix() {
	for i := 0; i < 128; i++ {
		j := i
		k := 0
		ip := 1
		for j != 0 {
			id := j % 2
			j /= 2
			k += ip * id
			ip *= 4
		}
		x2pix[i] = k
		y2pix[i] = 2 * k
	}
}

// XY2Pix returns the in-face nested index of cell (ix, iy). Coordinates up to
// 128*128-1 are supported, which covers nside 16384.
func XY2Pix(ix, iy int) int {
	xy2pixOnce.Do(mkXY2Pix)
	ixLow, ixHi := ix%128, ix/128
	iyLow, iyHi := iy%128, iy/128
	return (x2pix[ixHi]+y2pix[iyHi])*(128*128) + x2pix[ixLow] + y2pix[iyLow]
}

// Pix2XY is the inverse of XY2Pix.
func Pix2XY(pix int) (ix, iy int) {
	for bit := 0; pix != 0; bit++ {
		ix |= (pix & 1) << bit
		pix >>= 1
		iy |= (pix & 1) << bit
		pix >>= 1
	}
	return ix, iy
}
