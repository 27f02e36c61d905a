package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uploadkit/uploadkit/pkg/gateway"
)

func newClient(t *testing.T, slotURL, deleteURL string) *gateway.Client {
	t.Helper()
	client, err := gateway.New(gateway.Config{
		SlotEndpoint:   slotURL,
		DeleteEndpoint: deleteURL,
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		client, err := gateway.New(gateway.Config{
			SlotEndpoint:   "https://api.example.com/uploads",
			DeleteEndpoint: "https://api.example.com/uploads",
		})
		require.NoError(t, err)
		require.NotNil(t, client)
	})

	t.Run("missing slot endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := gateway.New(gateway.Config{DeleteEndpoint: "https://api.example.com/uploads"})
		require.ErrorIs(t, err, gateway.ErrInvalidConfig)
	})

	t.Run("missing delete endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := gateway.New(gateway.Config{SlotEndpoint: "https://api.example.com/uploads"})
		require.ErrorIs(t, err, gateway.ErrInvalidConfig)
	})
}

func TestClient_RequestUploadSlot(t *testing.T) {
	t.Parallel()

	t.Run("returns issued slot", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "photo.png", req["name"])
			require.Equal(t, "image/png", req["contentType"])

			_ = json.NewEncoder(w).Encode(map[string]string{
				"url": "https://bucket.example.com/photo.png?sig=abc",
			})
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		slot, err := client.RequestUploadSlot(context.Background(), "photo.png", "image/png")
		require.NoError(t, err)
		require.Equal(t, "https://bucket.example.com/photo.png?sig=abc", slot.URL)
	})

	t.Run("surfaces backend message", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "bucket quota exceeded"})
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		_, err := client.RequestUploadSlot(context.Background(), "a.png", "image/png")
		require.ErrorIs(t, err, gateway.ErrSlotRequest)
		require.Contains(t, err.Error(), "bucket quota exceeded")
	})

	t.Run("generic message without envelope", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>gateway timeout</html>"))
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		_, err := client.RequestUploadSlot(context.Background(), "a.png", "image/png")
		require.ErrorIs(t, err, gateway.ErrSlotRequest)
		require.Contains(t, err.Error(), "502")
	})

	t.Run("rejects response without target", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		_, err := client.RequestUploadSlot(context.Background(), "a.png", "image/png")
		require.ErrorIs(t, err, gateway.ErrSlotRequest)
	})
}

func TestClient_TransferBytes(t *testing.T) {
	t.Parallel()

	t.Run("streams bytes with content type", func(t *testing.T) {
		t.Parallel()

		var received []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "image/png", r.Header.Get("Content-Type"))
			received, _ = io.ReadAll(r.Body)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		content := "fake png bytes"

		var progress []int
		err := client.TransferBytes(context.Background(), gateway.Slot{URL: srv.URL},
			strings.NewReader(content), int64(len(content)), "image/png",
			func(p int) { progress = append(progress, p) })
		require.NoError(t, err)
		require.Equal(t, content, string(received))

		require.NotEmpty(t, progress)
		require.Equal(t, 100, progress[len(progress)-1])
		for _, p := range progress {
			require.GreaterOrEqual(t, p, 0)
			require.LessOrEqual(t, p, 100)
		}
	})

	t.Run("nil progress callback is allowed", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		err := client.TransferBytes(context.Background(), gateway.Slot{URL: srv.URL},
			strings.NewReader("data"), 4, "text/plain", nil)
		require.NoError(t, err)
	})

	t.Run("wraps backend rejection", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "signature expired"})
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		err := client.TransferBytes(context.Background(), gateway.Slot{URL: srv.URL},
			strings.NewReader("data"), 4, "text/plain", nil)
		require.ErrorIs(t, err, gateway.ErrTransfer)
		require.Contains(t, err.Error(), "signature expired")
	})
}

func TestClient_RequestDeletion(t *testing.T) {
	t.Parallel()

	t.Run("sends locator", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "https://bucket.example.com/photo.png", req["url"])

			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		err := client.RequestDeletion(context.Background(), "https://bucket.example.com/photo.png")
		require.NoError(t, err)
	})

	t.Run("wraps failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "object not found"})
		}))
		defer srv.Close()

		client := newClient(t, srv.URL, srv.URL)
		err := client.RequestDeletion(context.Background(), "https://bucket.example.com/gone.png")
		require.ErrorIs(t, err, gateway.ErrDeletion)
		require.Contains(t, err.Error(), "object not found")
	})
}
