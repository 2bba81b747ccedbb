package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toxscope/toxscope/internal/application/embedding"
	"github.com/toxscope/toxscope/internal/application/explore"
	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
)

func ldp(v float64) *float64 { return &v }

func testCompounds() []ctypes.Compound {
	return []ctypes.Compound{
		{
			ID: "1", Name: "aspirin",
			Descriptors: map[ctypes.DescriptorKey]float64{
				ctypes.DescMolWeight: 180,
				ctypes.DescLogP:      1.2,
			},
			Doses: "0.1, 1, 10",
			Endpoints: map[ctypes.EndpointKey]ctypes.Endpoint{
				ctypes.EndpointCellCount: {
					Mean: "100, 90, 60",
					LD50: ldp(500),
				},
			},
			SMILES: "CC(=O)OC1=CC=CC=C1C(=O)O",
		},
		{
			ID: "2", Name: "rotenone",
			Descriptors: map[ctypes.DescriptorKey]float64{
				ctypes.DescMolWeight: 394,
				ctypes.DescLogP:      4.1,
			},
			Doses: "0.1, 1, 10",
			Endpoints: map[ctypes.EndpointKey]ctypes.Endpoint{
				ctypes.EndpointCellCount: {
					Mean: "100, 40, 5",
					LD50: ldp(5),
				},
			},
		},
	}
}

func testStats() ctypes.StatsMap {
	return ctypes.StatsMap{
		ctypes.DescMolWeight: {Min: 100, Mean: 287, Max: 600, Count: 2},
		ctypes.DescLogP:      {Min: 0, Mean: 2.65, Max: 6, Count: 2},
	}
}

// newTestService builds a service over the two-compound fixture with an
// embedding source for weight 0.0 only.
func newTestService(t *testing.T) *explore.Service {
	t.Helper()
	resources := map[string][]byte{
		"ids.txt":                  []byte("aspirin\nrotenone\n"),
		"embeddings/blend_0.0.csv": []byte("x,y\n0.0,0.0\n10.0,10.0\n"),
	}
	fetcher := fetch.FetcherFunc(func(_ context.Context, name string) ([]byte, error) {
		data, ok := resources[name]
		if !ok {
			return nil, errors.NotFound("resource " + name)
		}
		return data, nil
	})
	loader := embedding.NewLoader(fetcher, nil, nil)
	svc := explore.NewService(testCompounds(), testStats(), 10, loader, nil, nil,
		explore.WithQuietInterval(time.Millisecond))
	t.Cleanup(svc.Close)
	return svc
}

// newTestRouter mounts every handler the way the route tree does, so tests
// exercise URL parameters through chi.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := newTestService(t)
	eh := NewExploreHandler(svc)
	emb := NewEmbeddingHandler(svc)
	ch := NewCompoundHandler(svc, nil)

	r := chi.NewRouter()
	r.Get("/state", eh.GetState)
	r.Post("/dose", eh.SetDose)
	r.Post("/reset", eh.Reset)
	r.Put("/selection", eh.SetSelection)
	r.Post("/lasso", eh.Lasso)
	r.Get("/descriptors", eh.Descriptors)
	r.Post("/filters/range", eh.SetRange)
	r.Post("/filters/discrete", eh.SetDiscrete)
	r.Get("/embedding", emb.Points)
	r.Get("/embedding/weights", emb.Weights)
	r.Get("/compounds/{name}", ch.Detail)
	r.Get("/compounds/{name}/curves", ch.Curves)
	r.Get("/compounds/{name}/structure", ch.Structure)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
