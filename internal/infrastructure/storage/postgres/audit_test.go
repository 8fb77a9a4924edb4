package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
)

func TestAuditPackCompressesLargeSnapshots(t *testing.T) {
	r, err := NewAuditRecorder(nil, clock.System{})
	require.NoError(t, err)

	small := r.pack(AuditRecord{ID: id.New(), Snapshot: json.RawMessage(`{"status":"pending"}`)})
	assert.Equal(t, CompressionNone, small.Compression)
	assert.Nil(t, small.SnapshotCompressed)

	notes := strings.Repeat("Auto-created when order was placed. ", 1000)
	raw, err := json.Marshal(map[string]string{"notes": notes})
	require.NoError(t, err)
	require.Greater(t, len(raw), DefaultCompressThreshold)

	big := r.pack(AuditRecord{ID: id.New(), Snapshot: raw})
	assert.Equal(t, CompressionZstd, big.Compression)
	assert.Nil(t, big.Snapshot)
	assert.Less(t, len(big.SnapshotCompressed), len(raw))

	require.NoError(t, r.unpack(&big))
	assert.JSONEq(t, string(raw), string(big.Snapshot))
	assert.Nil(t, big.SnapshotCompressed)
}
