package tile

import "fmt"

// CacheKey builds the fast-cache key for a tile.
func CacheKey(gameID string, c Coordinate, f Format) string {
	return fmt.Sprintf("tile:%s:%d:%d:%d:%s", gameID, c.Z, c.X, c.Y, f)
}

// ETagKey is the companion key holding the cached tile's ETag.
func ETagKey(cacheKey string) string {
	return "etag:" + cacheKey
}

// CachePrefix matches every cached tile of a game, for invalidation.
func CachePrefix(gameID string) string {
	return fmt.Sprintf("tile:%s:", gameID)
}

// ObjectKey builds the origin-store key for a tile.
func ObjectKey(gameID string, c Coordinate, f Format) string {
	return fmt.Sprintf("%s/%d/%d/%d.%s", gameID, c.Z, c.X, c.Y, f)
}

// MetadataObjectKey is the origin-store key of a game's pyramid metadata.
func MetadataObjectKey(gameID string) string {
	return fmt.Sprintf("%s/metadata.json", gameID)
}
