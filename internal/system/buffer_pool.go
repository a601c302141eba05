package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool recycles frame buffers per size. Renders of different
// resolutions share one pool safely.
type ImagePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex

	allocated atomic.Int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[string]*sync.Pool)}
}

// GetImage returns a buffer from the shared pool. Contents are whatever the
// previous user left; callers clear it.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage hands a buffer back to the shared pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// PoolAllocations reports how many buffers the shared pool had to allocate.
func PoolAllocations() int64 {
	return globalPool.Allocated()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					p.allocated.Add(1)
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put ignores buffers of a size the pool never handed out.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

func (p *ImagePool) Allocated() int64 {
	return p.allocated.Load()
}
