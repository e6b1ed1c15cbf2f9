package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

// json is a drop-in replacement for encoding/json with better performance
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTypes are the catalog types loaded when none are specified.
// Each type reads from "<type>s.json" in the data directory.
var DefaultTypes = []string{"item", "effect", "enchantment"}

// record is the on-disk shape of a catalog entry. Records missing either
// field are skipped.
type record struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// Index owns every catalog for the process lifetime. Catalogs are built
// once at startup and read-only thereafter; Reload rebuilds from disk and
// swaps the whole set atomically, so a concurrent reader never observes a
// half-replaced catalog.
type Index struct {
	dir   string
	types []string

	catalogs    atomic.Pointer[map[string]*Catalog]
	fingerprint atomic.Uint64

	logger zerolog.Logger
}

// NewIndex creates an empty index over the given data directory. Load
// must be called before lookups return anything. With no types given,
// DefaultTypes is used.
func NewIndex(dir string, logger zerolog.Logger, types ...string) *Index {
	if len(types) == 0 {
		types = DefaultTypes
	}
	ix := &Index{
		dir:    dir,
		types:  types,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
	empty := make(map[string]*Catalog)
	ix.catalogs.Store(&empty)
	return ix
}

// Types returns the configured catalog type names.
func (ix *Index) Types() []string {
	return ix.types
}

// Catalog returns the catalog for a type name.
func (ix *Index) Catalog(typename string) (*Catalog, bool) {
	c, ok := (*ix.catalogs.Load())[typename]
	return c, ok
}

// Load reads all catalog files and swaps them in wholesale. A missing
// file yields an empty catalog for that type, never an error. When the
// source bytes are identical to the currently loaded set the swap is
// skipped, so calling again is always safe and cheap.
func (ix *Index) Load() error {
	hasher := xxh3.New()
	raw := make(map[string][]byte, len(ix.types))

	for _, typename := range ix.types {
		path := filepath.Join(ix.dir, typename+"s.json")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				ix.logger.Warn().Str("path", path).Msg("catalog file not found, using empty catalog")
				data = nil
			} else {
				return fmt.Errorf("read catalog %s: %w", path, err)
			}
		}
		raw[typename] = data
		_, _ = hasher.Write([]byte(typename))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(data)
		_, _ = hasher.Write([]byte{0})
	}

	sum := hasher.Sum64()
	if sum == ix.fingerprint.Load() && len(*ix.catalogs.Load()) > 0 {
		ix.logger.Debug().Msg("catalog data unchanged, skipping reload")
		return nil
	}

	catalogs := make(map[string]*Catalog, len(ix.types))
	for _, typename := range ix.types {
		c, err := parseCatalog(typename, raw[typename])
		if err != nil {
			return err
		}
		catalogs[typename] = c
		ix.logger.Info().Str("type", typename).Int("entries", c.Len()).Msg("catalog loaded")
	}

	ix.catalogs.Store(&catalogs)
	ix.fingerprint.Store(sum)
	return nil
}

// parseCatalog builds a catalog from raw JSON. The canonical identifier
// is the lowercased raw name under the game's namespace, matching what
// the server expects in commands.
func parseCatalog(typename string, data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return New(typename, nil), nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s catalog: %w", typename, err)
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if r.Name == "" || r.DisplayName == "" {
			continue
		}
		entries = append(entries, Entry{
			DisplayName: r.DisplayName,
			ID:          "minecraft:" + strings.ToLower(r.Name),
			Category:    r.Type,
		})
	}
	return New(typename, entries), nil
}
