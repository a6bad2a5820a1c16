package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-hris-iam/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingAudit) Log(_ context.Context, entry AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, entry.Action)
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	audit := &recordingAudit{}

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, gin.New(), ServerConfig{Port: "0", ShutdownTimeout: time.Second}, audit)
	}()

	require.Eventually(t, func() bool {
		audit.mu.Lock()
		defer audit.mu.Unlock()
		return len(audit.actions) == 1
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"SERVER_START", "SERVER_SHUTDOWN"}, audit.actions)
}

func TestServe_ListenError(t *testing.T) {
	err := Serve(context.Background(), gin.New(), ServerConfig{Port: "not-a-port"}, &recordingAudit{})
	assert.Error(t, err)
}

func TestZapAuditLogger_TagsRequestIdentity(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	audit := NewZapAuditLogger(zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "req-1")
	ctx = contextutil.WithUserID(ctx, "user-1")
	audit.Log(ctx, AuditLog{Action: "TENANT_DELETED", Message: "tenant deleted", Meta: map[string]any{"company_id": "c-1"}})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	assert.Equal(t, "tenant deleted", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "TENANT_DELETED", fields["action"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}
