package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/internal/wkt"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ MetadataStore = (*PostgresStore)(nil)

func NewPostgresStore(cfg config.Postgres, l logger.Logger) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db, logger: l}

	if err := s.runMigrations(); err != nil {
		return nil, err
	}

	l.Info("postgres metadata store initialized", "host", cfg.Host, "db", cfg.Database)

	return s, nil
}

func (s *PostgresStore) runMigrations() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(s.db, "migrations")
}

func (s *PostgresStore) GetGame(ctx context.Context, id string) (*Game, error) {
	gameID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Newf(apperror.KindNotFound, "game %s not found", id)
	}

	query := `SELECT id, name, slug, map_bounds, min_zoom_level, max_zoom_level, tile_size, base_map_url
	FROM games
	WHERE id = $1`

	var g Game
	var minZoom, maxZoom int
	err = s.db.QueryRowContext(ctx, query, gameID).Scan(
		&g.ID, &g.Name, &g.Slug, &g.MapBounds, &minZoom, &maxZoom, &g.TileSize, &g.BaseMapURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Newf(apperror.KindNotFound, "game %s not found", id)
		}
		return nil, apperror.Wrap(apperror.KindUpstream, "query game", err)
	}
	g.MinZoom = uint8(minZoom)
	g.MaxZoom = uint8(maxZoom)

	return &g, nil
}

func (s *PostgresStore) MarkersInBounds(ctx context.Context, gameID string, b tile.Bounds) ([]Marker, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return nil, apperror.Newf(apperror.KindNotFound, "game %s not found", gameID)
	}

	query := `SELECT id, ST_AsText(position), marker_type, title, metadata
	FROM markers
	WHERE game_id = $1
	AND ST_Intersects(position, ST_MakeEnvelope($2, $3, $4, $5, 4326))
	AND visibility_level > 0`

	rows, err := s.db.QueryContext(ctx, query, id, b.West, b.South, b.East, b.North)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUpstream, "query markers", err)
	}
	defer rows.Close()

	var markers []Marker
	for rows.Next() {
		var m Marker
		var position string
		if err := rows.Scan(&m.ID, &position, &m.MarkerType, &m.Title, &m.Metadata); err != nil {
			return nil, apperror.Wrap(apperror.KindUpstream, "scan marker", err)
		}
		point, ok := wkt.ParsePoint(position)
		if !ok {
			s.logger.Warn("skipping marker with malformed position", "marker", m.ID, "wkt", position)
			continue
		}
		m.Position = point
		markers = append(markers, m)
	}

	return markers, rows.Err()
}

func (s *PostgresStore) UpsertTileMetadata(ctx context.Context, rec *TileMetadataRecord) error {
	query := `INSERT INTO tile_metadata
	(id, game_id, zoom_level, tile_x, tile_y, format, file_size, content_hash, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (game_id, zoom_level, tile_x, tile_y, format)
	DO UPDATE SET
		file_size = EXCLUDED.file_size,
		content_hash = EXCLUDED.content_hash,
		created_at = EXCLUDED.created_at`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.GameID, int(rec.Zoom), int64(rec.X), int64(rec.Y),
		rec.Format, rec.ByteSize, rec.ContentHash, rec.CreatedAt,
	)
	if err != nil {
		return apperror.Wrap(apperror.KindUpstream, "upsert tile metadata", err)
	}
	return nil
}

func (s *PostgresStore) GetTileMetadata(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format) (*TileMetadataRecord, error) {
	query := `SELECT id, game_id, zoom_level, tile_x, tile_y, format, file_size, content_hash, created_at, last_accessed
	FROM tile_metadata
	WHERE game_id = $1 AND zoom_level = $2 AND tile_x = $3 AND tile_y = $4 AND format = $5`

	var rec TileMetadataRecord
	var zoom int
	var x, y int64
	err := s.db.QueryRowContext(ctx, query, gameID, int(c.Z), int64(c.X), int64(c.Y), f.String()).Scan(
		&rec.ID, &rec.GameID, &zoom, &x, &y, &rec.Format,
		&rec.ByteSize, &rec.ContentHash, &rec.CreatedAt, &rec.LastAccessed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Newf(apperror.KindNotFound, "tile metadata %s/%d/%d/%d.%s not found",
				gameID, c.Z, c.X, c.Y, f)
		}
		return nil, apperror.Wrap(apperror.KindUpstream, "query tile metadata", err)
	}
	rec.Zoom = uint8(zoom)
	rec.X = uint32(x)
	rec.Y = uint32(y)

	return &rec, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
