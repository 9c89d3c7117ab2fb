package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentbot/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

type fakeChannel bool

func (f fakeChannel) IsConnected() bool { return bool(f) }

func serve[T any](t *testing.T, h gin.HandlerFunc) (int, dto.Response[T]) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

	h(c)

	var resp dto.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler("rentbot", "1.2.0", fakeDB{}, fakeChannel(false))

	code, resp := serve[LivenessResponse](t, h.Healthz)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, "rentbot", resp.Data.Name)
	assert.Equal(t, "1.2.0", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name         string
		db           DatabaseChecker
		channel      ChannelChecker
		wantCode     int
		wantDatabase string
		wantChannel  string
	}{
		{"all up", fakeDB{}, fakeChannel(true), http.StatusOK, "ok", "connected"},
		{"no channel configured", fakeDB{}, nil, http.StatusOK, "ok", "disabled"},
		{"database down", fakeDB{err: errors.New("connection refused")}, fakeChannel(true), http.StatusServiceUnavailable, "unreachable", "connected"},
		{"channel down", fakeDB{}, fakeChannel(false), http.StatusServiceUnavailable, "ok", "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("rentbot", "dev", tt.db, tt.channel)

			code, resp := serve[ReadinessResponse](t, h.Readyz)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode == http.StatusOK, resp.Success)
			if !resp.Success {
				require.NotNil(t, resp.Error)
				assert.Equal(t, dto.CodeNotReady, resp.Error.Code)
			}
			assert.Equal(t, tt.wantDatabase, resp.Data.Database)
			assert.Equal(t, tt.wantChannel, resp.Data.Channel)
		})
	}
}

func TestHealthHandler_Readyz_Stats(t *testing.T) {
	h := NewHealthHandler("rentbot", "dev", fakeDB{}, nil).
		WithStats(func() (any, error) { return map[string]int{"open_connections": 3}, nil })

	_, resp := serve[ReadinessResponse](t, h.Readyz)

	pool, ok := resp.Data.Pool.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), pool["open_connections"])
}
