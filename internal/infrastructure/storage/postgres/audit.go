package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/audit"
)

// Compression is the codec of sys_audit.snapshot_compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// DefaultCompressThreshold is the snapshot size above which zstd is used.
const DefaultCompressThreshold = 10 * 1024

// AuditRecord is one row of sys_audit.
type AuditRecord struct {
	ID                 id.ID           `db:"id" json:"id"`
	EntityType         string          `db:"entity_type" json:"entityType"`
	EntityID           id.ID           `db:"entity_id" json:"entityId"`
	Action             audit.Action    `db:"action" json:"action"`
	Actor              string          `db:"actor" json:"actor"`
	Snapshot           json.RawMessage `db:"snapshot" json:"snapshot,omitempty"`
	SnapshotCompressed []byte          `db:"snapshot_compressed" json:"-"`
	Compression        Compression     `db:"compression" json:"-"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
}

var _ audit.Log = (*AuditRecorder)(nil)

// AuditRecorder writes audit entries, compressing large snapshots with zstd.
type AuditRecorder struct {
	txm       *TxManager
	clock     clock.Clock
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func NewAuditRecorder(txm *TxManager, clk clock.Clock) (*AuditRecorder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditRecorder{
		txm:       txm,
		clock:     clk,
		encoder:   encoder,
		decoder:   decoder,
		threshold: DefaultCompressThreshold,
	}, nil
}

func (r *AuditRecorder) Record(ctx context.Context, e audit.Entry) error {
	snapshot, err := json.Marshal(e.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}

	rec := r.pack(AuditRecord{
		ID:         id.New(),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Actor:      e.Actor,
		Snapshot:   snapshot,
		CreatedAt:  r.clock.Now().UTC(),
	})

	_, err = r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (id, entity_type, entity_id, action, actor, snapshot, snapshot_compressed, compression, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.EntityType, rec.EntityID, rec.Action, rec.Actor,
		nullJSON(rec.Snapshot), rec.SnapshotCompressed, rec.Compression, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// pack moves snapshots above the threshold into the compressed column.
func (r *AuditRecorder) pack(rec AuditRecord) AuditRecord {
	rec.Compression = CompressionNone
	if len(rec.Snapshot) > r.threshold {
		rec.SnapshotCompressed = r.encoder.EncodeAll(rec.Snapshot, nil)
		rec.Snapshot = nil
		rec.Compression = CompressionZstd
	}
	return rec
}

func (r *AuditRecorder) unpack(rec *AuditRecord) error {
	if rec.Compression != CompressionZstd || len(rec.SnapshotCompressed) == 0 {
		return nil
	}
	raw, err := r.decoder.DecodeAll(rec.SnapshotCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress audit snapshot %s: %w", rec.ID, err)
	}
	rec.Snapshot = raw
	rec.SnapshotCompressed = nil
	return nil
}

// History returns the newest entries for an entity with snapshots decompressed.
func (r *AuditRecorder) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []AuditRecord
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, `
		SELECT id, entity_type, entity_id, action, actor, snapshot, snapshot_compressed, compression, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, TranslateError(fmt.Errorf("query audit history: %w", err))
	}
	out := make([]audit.Record, 0, len(records))
	for i := range records {
		if err := r.unpack(&records[i]); err != nil {
			return nil, err
		}
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (rec AuditRecord) toDomain() audit.Record {
	return audit.Record{
		ID:         rec.ID,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Action:     rec.Action,
		Actor:      rec.Actor,
		Snapshot:   rec.Snapshot,
		CreatedAt:  rec.CreatedAt,
	}
}

func nullJSON(b json.RawMessage) any {
	if b == nil {
		return nil
	}
	return []byte(b)
}
