package network_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/failure"
	"gatekey/internal/network"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	cases := map[failure.Kind]int{
		failure.GateUnsatisfied:      http.StatusForbidden,
		failure.ProofMissing:         http.StatusUnauthorized,
		failure.CiphertextCorrupt:    http.StatusUnprocessableEntity,
		failure.AccessControlInvalid: http.StatusBadRequest,
		failure.NotGatedForChain:     http.StatusBadRequest,
		failure.NetworkNotReady:      http.StatusServiceUnavailable,
		failure.RelayFailure:         http.StatusBadGateway,
		failure.StorageFailure:       http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, network.StatusFor(kind), kind)
	}
}

func serve(t *testing.T, status int, body string) *network.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return network.NewClient(ts.URL+"/", ts.Client(), failure.RelayFailure)
}

func TestClientDecodesErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("kind in body wins", func(t *testing.T) {
		t.Parallel()
		c := serve(t, http.StatusBadRequest, `{"error":"nope","kind":"not_gated_for_chain"}`)
		err := c.Post(ctx, "op", "/x", map[string]string{}, nil)
		assert.ErrorIs(t, err, failure.NotGatedForChain)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("status inferred", func(t *testing.T) {
		t.Parallel()
		c := serve(t, http.StatusUnprocessableEntity, "bad key")
		err := c.Get(ctx, "op", "/x", nil)
		assert.ErrorIs(t, err, failure.CiphertextCorrupt)
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("unknown kind falls back to status", func(t *testing.T) {
		t.Parallel()
		c := serve(t, http.StatusForbidden, `{"error":"x","kind":"Mystery"}`)
		assert.ErrorIs(t, c.Get(ctx, "op", "/x", nil), failure.GateUnsatisfied)
	})

	t.Run("unmapped status uses fallback", func(t *testing.T) {
		t.Parallel()
		c := serve(t, http.StatusTeapot, "")
		assert.ErrorIs(t, c.Get(ctx, "op", "/x", nil), failure.RelayFailure)
	})

	t.Run("undecodable success", func(t *testing.T) {
		t.Parallel()
		c := serve(t, http.StatusOK, "not json")
		var out map[string]any
		assert.ErrorIs(t, c.Get(ctx, "op", "/x", &out), failure.RelayFailure)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		c := network.NewClient("http://127.0.0.1:1", nil, failure.NetworkFailure)
		assert.ErrorIs(t, c.Get(ctx, "op", "/x", nil), failure.NetworkFailure)
	})
}

func TestClientRoundTrip(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		if err := network.DecodeJSON(w, r, &in); err != nil {
			network.WriteError(w, err)
			return
		}
		network.WriteJSON(w, http.StatusOK, map[string]string{"echo": in["msg"], "path": r.URL.Path})
	}))
	t.Cleanup(ts.Close)

	c := network.NewClient(ts.URL, ts.Client(), failure.RelayFailure)
	var out map[string]string
	require.NoError(t, c.Post(context.Background(), "op", "/echo", map[string]string{"msg": "hi"}, &out))
	assert.Equal(t, "hi", out["echo"])
	assert.Equal(t, "/echo", out["path"])

	resp, err := ts.Client().Post(ts.URL, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body network.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, failure.InvalidInput, body.Kind)
}

func TestWriteErrorHidesUnclassified(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	network.WriteError(rec, errors.New("db password is hunter2"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")

	rec = httptest.NewRecorder()
	network.WriteError(rec, failure.New(failure.GateUnsatisfied, "op", ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"gate_unsatisfied","kind":"gate_unsatisfied"}`, rec.Body.String())
}
