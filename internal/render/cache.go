package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
)

// Cache is the on-disk page raster cache for one document, JPEG per
// page. Reads are synchronous on the worker path; writes happen on a
// throwaway goroutine because a lost cache file only costs a re-render.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed. A nil cache is
// returned when the directory cannot be created; callers treat that as
// "always miss".
func NewCache(dir string) *Cache {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("NewCache: create %s: %v", dir, err)
		return nil
	}
	return &Cache{dir: dir}
}

func (c *Cache) pagePath(page int) string {
	return filepath.Join(c.dir, fmt.Sprintf("page_%d.jpg", page))
}

// Read returns the cached raster for a page, if present and decodable.
func (c *Cache) Read(page int) (image.Image, bool) {
	if c == nil {
		return nil, false
	}
	f, err := os.Open(c.pagePath(page))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		log.Printf("Cache.Read: page %d corrupt, ignoring: %v", page, err)
		return nil, false
	}
	return img, true
}

// SizeOf returns a page's pixel dimensions from the cache header alone,
// cheap enough for synchronous placeholder sizing.
func (c *Cache) SizeOf(page int) (w, h int, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	f, err := os.Open(c.pagePath(page))
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// WriteAsync stores a rendered page without blocking the worker.
func (c *Cache) WriteAsync(page int, img image.Image) {
	if c == nil {
		return
	}
	go func() {
		f, err := os.Create(c.pagePath(page))
		if err != nil {
			log.Printf("Cache.WriteAsync: page %d: %v", page, err)
			return
		}
		defer f.Close()
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
			log.Printf("Cache.WriteAsync: encode page %d: %v", page, err)
		}
	}()
}
