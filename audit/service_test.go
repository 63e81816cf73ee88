package audit

import (
	"context"
	"testing"

	"github.com/kasuganosora/weaponpaints/model"
	"github.com/kasuganosora/weaponpaints/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(AuditEntry{
		TraceID: "trace-123",
		SteamID: "76561198000000001",
		Slot:    4,
		Action:  ActionKnifeSelect,
		Payload: map[string]string{"knife": "weapon_knife_karambit"},
	})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "76561198000000001", logs[0].SteamID)
	assert.Equal(t, 4, logs[0].Slot)
	assert.Equal(t, ActionKnifeSelect, logs[0].Action)
	assert.JSONEq(t, `{"knife":"weapon_knife_karambit"}`, string(logs[0].Payload))
}

func TestLog_GeneratesTraceID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Log(AuditEntry{Action: ActionRefresh})
	svc.Stop(context.Background())

	var al model.AuditLog
	require.NoError(t, db.First(&al).Error)
	assert.Len(t, al.TraceID, 36)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	for i := 0; i < 250; i++ {
		svc.Log(AuditEntry{Action: ActionSkinSelect, Slot: i % 8})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestLog_UnserialisablePayload(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.New(core))

	svc.Log(AuditEntry{Action: ActionGloveSelect, Payload: make(chan int)})
	svc.Stop(context.Background())

	assert.Equal(t, 1, logs.Len())
	var al model.AuditLog
	require.NoError(t, db.First(&al).Error)
	assert.Equal(t, "null", string(al.Payload))
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background()) // must not panic
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	for i := 0; i < queueSize+10; i++ {
		svc.Log(AuditEntry{Action: "flood"})
	}
	svc.Stop(context.Background())
}

func TestTraceIDFrom_Context(t *testing.T) {
	ctx := WithTraceID(context.Background(), "req-42")
	assert.Equal(t, "req-42", TraceIDFrom(ctx))
	assert.Equal(t, "", TraceIDFrom(context.Background()))
}
