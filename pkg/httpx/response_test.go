package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeAlwaysCarriesData(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
		t.Helper()
		var m map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
		return m
	}

	t.Run("failure data is an empty object", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Fail(rec, http.StatusBadRequest, "nope")

		m := decode(t, rec)
		require.JSONEq(t, `false`, string(m["success"]))
		require.JSONEq(t, `"nope"`, string(m["message"]))
		require.JSONEq(t, `{}`, string(m["data"]))
	})

	t.Run("success without payload still sends data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OK(rec, http.StatusOK, "done", nil)

		m := decode(t, rec)
		require.JSONEq(t, `true`, string(m["success"]))
		require.JSONEq(t, `{}`, string(m["data"]))
	})

	t.Run("payload passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OK(rec, http.StatusOK, "done", map[string]string{"id": "abc"})

		m := decode(t, rec)
		require.JSONEq(t, `{"id":"abc"}`, string(m["data"]))
	})

	t.Run("no-store headers set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Fail(rec, http.StatusUnauthorized, "no")
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}
