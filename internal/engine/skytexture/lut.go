package skytexture

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/skyviewer/internal/logger"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// LUT maps a pixel number to the byte offset of its texel in the RGBA
// atlas. The atlas is 4*nside texels wide; base face f occupies the nside
// square at column f%4, row f/4.
type LUT []int

// BuildLUT computes the table for one resolution and ordering.
func BuildLUT(nside int, ord healpix.Ordering) (LUT, error) {
	if ord != healpix.Ring && ord != healpix.Nested {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedOrdering, ord)
	}
	if err := healpix.ValidNside(nside); err != nil {
		return nil, err
	}

	lut := make(LUT, healpix.NSide2NPix(nside))
	dy := 4 * nside
	for face := range 12 {
		xo := nside * (face % 4)
		yo := nside * (face / 4)
		faceOffset := face * nside * nside
		for y := range nside {
			for x := range nside {
				k := x + xo + (y+yo)*dy
				pix := healpix.XY2Pix(x, y) + faceOffset
				if ord == healpix.Ring {
					pix = healpix.Nest2Ring(nside, pix)
				}
				lut[pix] = 4 * k
			}
		}
	}
	return lut, nil
}

type lutKey struct {
	nside int
	ord   healpix.Ordering
}

func (k lutKey) String() string {
	return k.ord.String() + "/" + strconv.Itoa(k.nside)
}

// LUTCache holds one table per (nside, ordering). Tables are built on first
// use and kept for the life of the cache; concurrent first requests for the
// same key share a single build.
type LUTCache struct {
	mu     sync.RWMutex
	tables map[lutKey]LUT
	group  singleflight.Group
}

// NewLUTCache returns an empty cache.
func NewLUTCache() *LUTCache {
	return &LUTCache{tables: make(map[lutKey]LUT)}
}

// SharedLUTs is the process-wide cache used by textures created with a nil
// cache.
var SharedLUTs = NewLUTCache()

// Get returns the table for (nside, ord), building it if needed. The returned
// table must not be modified.
func (c *LUTCache) Get(nside int, ord healpix.Ordering) (LUT, error) {
	if ord != healpix.Ring && ord != healpix.Nested {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedOrdering, ord)
	}
	key := lutKey{nside, ord}

	c.mu.RLock()
	lut, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return lut, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		lut, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return lut, nil
		}

		lut, err := BuildLUT(nside, ord)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[key] = lut
		c.mu.Unlock()
		logger.Named("skytexture").Debug("lookup table built", zap.Stringer("key", key), zap.Int("pixels", len(lut)))
		return lut, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(LUT), nil
}

// Len returns the number of cached tables.
func (c *LUTCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
