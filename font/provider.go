package font

import (
	"io/fs"

	"github.com/patchsub/patchsubset/internal/patcherr"
)

// Provider is the external FontProvider capability (spec §4's
// Subsetter/FontProvider are both "external"): fetch a named font
// blob. The server core's only potentially blocking operation is a
// call through this interface.
type Provider interface {
	// Font returns the font registered under id, or a NotFound
	// *patcherr.Error if no such font exists.
	Font(id string) (*Font, error)
}

// DirectoryCache is a Provider backed by a directory of font files,
// loaded once at construction into a read-mostly Cache (spec §5: "may
// be shared across workers without mutation").
type DirectoryCache struct {
	cache *Cache
}

// NewDirectoryCache walks root (any fs.FS — os.DirFS in production,
// an in-memory fstest.MapFS in tests) loading every font file found.
func NewDirectoryCache(fsys fs.FS, root string) (*DirectoryCache, error) {
	fonts, err := LoadFromFS(fsys, root)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "directory font cache: load", err)
	}

	cache := NewCache()
	cache.Add(fonts...)
	return &DirectoryCache{cache: cache}, nil
}

// Len returns the number of fonts loaded.
func (d *DirectoryCache) Len() int {
	return d.cache.Len()
}

// Font implements Provider.
func (d *DirectoryCache) Font(id string) (*Font, error) {
	f := d.cache.Get(id)
	if f == nil {
		return nil, patcherr.New(patcherr.NotFound, "font not found: "+id)
	}
	return f, nil
}

// CacheProvider adapts a pre-populated Cache to Provider — the path
// SystemCache (font/book.go) and any other Cache-producing loader join
// the server core through.
type CacheProvider struct {
	cache *Cache
}

// NewCacheProvider wraps an existing Cache as a Provider.
func NewCacheProvider(cache *Cache) *CacheProvider {
	return &CacheProvider{cache: cache}
}

// NewSystemProvider discovers and loads the host's installed fonts
// (font/discovery.go's platform-specific search paths) as a Provider,
// for servers that want to serve whatever fonts happen to be installed
// rather than a curated font directory.
func NewSystemProvider() (*CacheProvider, error) {
	cache, err := SystemCache()
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "system font provider: discover", err)
	}
	return &CacheProvider{cache: cache}, nil
}

// Len returns the number of fonts loaded.
func (c *CacheProvider) Len() int {
	return c.cache.Len()
}

// Font implements Provider.
func (c *CacheProvider) Font(id string) (*Font, error) {
	f := c.cache.Get(id)
	if f == nil {
		return nil, patcherr.New(patcherr.NotFound, "font not found: "+id)
	}
	return f, nil
}

// LoadFromFS loads all fonts found under root in fsys.
func LoadFromFS(fsys fs.FS, root string) ([]*Font, error) {
	var fonts []*Font

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if d.IsDir() {
			return nil
		}
		if !IsFontFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil // Skip unreadable files
		}

		loaded, err := LoadFromBytes(data, path)
		if err != nil {
			return nil // Skip unparseable fonts
		}

		fonts = append(fonts, loaded...)
		return nil
	})

	return fonts, err
}
