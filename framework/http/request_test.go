package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	gohttp "github.com/km-arc/go-lifespan/framework/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Bind(t *testing.T) {
	raw := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"groceries"}`))
	raw.Header.Set("Content-Type", "application/json")

	var body struct {
		Title string `json:"title"`
	}
	require.NoError(t, gohttp.NewRequest(raw).Bind(&body))
	assert.Equal(t, "groceries", body.Title)
}

func TestRequest_Bind_Invalid(t *testing.T) {
	for name, payload := range map[string]string{
		"empty":     "",
		"malformed": `{"title":`,
	} {
		t.Run(name, func(t *testing.T) {
			raw := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(payload))

			var body map[string]any
			err := gohttp.NewRequest(raw).Bind(&body)
			assert.ErrorIs(t, err, gohttp.ErrBadRequest)
		})
	}
}

func TestRequest_Query(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/notes?limit=5", nil))

	assert.Equal(t, "5", req.Query("limit"))
	assert.Equal(t, "0", req.Query("offset", "0"))
	assert.Empty(t, req.Query("offset"))
}

func TestRequest_RouteParam(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/notes/{id}", func(w http.ResponseWriter, raw *http.Request) {
		got = gohttp.NewRequest(raw).RouteParam("id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notes/7", nil))
	assert.Equal(t, "7", got)
}
