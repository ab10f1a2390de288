package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountingClient_Push(t *testing.T) {
	var got SyncPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	msg := "qty changed"
	err := NewAccountingClient(srv.URL).Push(context.Background(), SyncPayload{EntityType: "item", EntityID: 7, Message: &msg, Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, "item", got.EntityType)
	assert.Equal(t, int64(7), got.EntityID)
	require.NotNil(t, got.Message)
	assert.Equal(t, msg, *got.Message)
}

func TestAccountingClient_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewAccountingClient(srv.URL).Push(context.Background(), SyncPayload{EntityType: "item", EntityID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDeliverSync_NilPusherIsDelivered(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCBConfig())
	assert.NoError(t, DeliverSync(context.Background(), nil, cb, SyncPayload{EntityType: "item", EntityID: 1}))
	assert.Equal(t, CBClosed, cb.State())
}

func TestFailureMessage(t *testing.T) {
	msg := "recount"
	empty := ""
	assert.Equal(t, "timeout: recount", FailureMessage(errors.New("timeout"), &msg))
	assert.Equal(t, "timeout", FailureMessage(errors.New("timeout"), &empty))
	assert.Equal(t, "timeout", FailureMessage(errors.New("timeout"), nil))
}
