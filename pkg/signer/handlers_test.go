package signer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uploadkit/uploadkit/pkg/signer"
)

type fakeIssuer struct {
	slotURL   string
	slotErr   error
	deleteErr error

	gotName    string
	gotKind    string
	gotLocator string
}

func (f *fakeIssuer) CreateSlot(_ context.Context, name, mediaKind string) (string, error) {
	f.gotName = name
	f.gotKind = mediaKind
	if f.slotErr != nil {
		return "", f.slotErr
	}
	return f.slotURL, nil
}

func (f *fakeIssuer) Delete(_ context.Context, locator string) error {
	f.gotLocator = locator
	return f.deleteErr
}

func TestRoutes_CreateSlot(t *testing.T) {
	t.Parallel()

	t.Run("issues slot", func(t *testing.T) {
		t.Parallel()

		issuer := &fakeIssuer{slotURL: "https://uploads.s3.amazonaws.com/a.png?X-Amz-Signature=abc"}
		srv := httptest.NewServer(signer.Routes(issuer, nil))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/uploads", "application/json",
			strings.NewReader(`{"name":"photo.png","contentType":"image/png"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "photo.png", issuer.gotName)
		require.Equal(t, "image/png", issuer.gotKind)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, issuer.slotURL, body["url"])
	})

	t.Run("rejects missing name", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(signer.Routes(&fakeIssuer{}, nil))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/uploads", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotEmpty(t, body["message"])
	})

	t.Run("maps service failure to envelope", func(t *testing.T) {
		t.Parallel()

		issuer := &fakeIssuer{slotErr: signer.ErrPresignFailed}
		srv := httptest.NewServer(signer.Routes(issuer, nil))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/uploads", "application/json",
			strings.NewReader(`{"name":"a.png","contentType":"image/png"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestRoutes_Delete(t *testing.T) {
	t.Parallel()

	doDelete := func(t *testing.T, url, payload string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodDelete, url+"/uploads", strings.NewReader(payload))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("deletes by locator", func(t *testing.T) {
		t.Parallel()

		issuer := &fakeIssuer{}
		srv := httptest.NewServer(signer.Routes(issuer, nil))
		defer srv.Close()

		resp := doDelete(t, srv.URL, `{"url":"https://cdn.example.com/a.png"}`)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "https://cdn.example.com/a.png", issuer.gotLocator)
	})

	t.Run("missing url rejected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(signer.Routes(&fakeIssuer{}, nil))
		defer srv.Close()

		resp := doDelete(t, srv.URL, `{}`)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		t.Parallel()

		issuer := &fakeIssuer{deleteErr: signer.ErrNotFound}
		srv := httptest.NewServer(signer.Routes(issuer, nil))
		defer srv.Close()

		resp := doDelete(t, srv.URL, `{"url":"https://cdn.example.com/gone.png"}`)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
