package store

import (
	"context"
	"sync"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
)

// MemoryBlobStore is an in-process BlobStore used in tests.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ BlobStore = (*MemoryBlobStore)(nil)

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "object %s not found", key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryBlobStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	return nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports the number of stored objects. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

type metadataKey struct {
	gameID string
	zoom   uint8
	x, y   uint32
	format string
}

// MemoryMetadataStore is an in-process MetadataStore used in tests.
type MemoryMetadataStore struct {
	mu      sync.RWMutex
	games   map[string]*Game
	markers map[string][]Marker
	tiles   map[metadataKey]*TileMetadataRecord
}

var _ MetadataStore = (*MemoryMetadataStore)(nil)

func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		games:   make(map[string]*Game),
		markers: make(map[string][]Marker),
		tiles:   make(map[metadataKey]*TileMetadataRecord),
	}
}

func (s *MemoryMetadataStore) AddGame(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *MemoryMetadataStore) AddMarker(gameID string, m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[gameID] = append(s.markers[gameID], m)
}

func (s *MemoryMetadataStore) GetGame(_ context.Context, id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "game %s not found", id)
	}
	return g, nil
}

func (s *MemoryMetadataStore) MarkersInBounds(_ context.Context, gameID string, b tile.Bounds) ([]Marker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Marker
	for _, m := range s.markers[gameID] {
		lng, lat := m.Position[0], m.Position[1]
		if lng >= b.West && lng <= b.East && lat >= b.South && lat <= b.North {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryMetadataStore) UpsertTileMetadata(_ context.Context, rec *TileMetadataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := metadataKey{gameID: rec.GameID, zoom: rec.Zoom, x: rec.X, y: rec.Y, format: rec.Format}
	s.tiles[key] = rec
	return nil
}

func (s *MemoryMetadataStore) GetTileMetadata(_ context.Context, gameID string, c tile.Coordinate, f tile.Format) (*TileMetadataRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tiles[metadataKey{gameID: gameID, zoom: c.Z, x: c.X, y: c.Y, format: f.String()}]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "tile metadata %s/%d/%d/%d.%s not found",
			gameID, c.Z, c.X, c.Y, f)
	}
	return rec, nil
}

// TileRecordCount reports the number of upserted rows. Test helper.
func (s *MemoryMetadataStore) TileRecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tiles)
}

func (s *MemoryMetadataStore) Close() error {
	return nil
}
