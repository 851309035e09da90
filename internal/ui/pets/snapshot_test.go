package pets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/internal/petclient"
)

func TestRenderSnapshotAgainstService(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/pets/v1/data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Total":2,"Pets":[
			{"name":"Rex","kind":"dog","age":3,"pic":"r.png"},
			{"Name":"Nemo","Kind":"Clownfish","Age":1,"URL":"nemo.jpg"}]}`))
	}))
	defer srv.Close()

	src := &fakeConfig{cfg: config.Configuration{PetServiceURL: srv.URL + "/pets/v1/data", Stage: "qa"}}
	out, err := RenderSnapshot(context.Background(), Options{
		Config:  src,
		Fetcher: petclient.New(5 * time.Second),
		NoColor: true,
	}, 90, 16)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	for _, want := range []string{"Pets", "stage: qa", "NAME", "KIND", "AGE", "PIC", "Rex", "Nemo", "Clownfish", "nemo.jpg", "2 pets"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 90, line)
	}
}

func TestRenderSnapshotReportsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out, err := RenderSnapshot(context.Background(), Options{
		Config:  &fakeConfig{cfg: config.Configuration{PetServiceURL: srv.URL}},
		Fetcher: petclient.New(time.Second),
		NoColor: true,
	}, 80, 12)
	require.Error(t, err)
	var httpErr *petclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Contains(t, out, "fetch error")
}

func TestRenderSnapshotEmptyURL(t *testing.T) {
	_, err := RenderSnapshot(context.Background(), Options{
		Config:  &fakeConfig{},
		Fetcher: petclient.New(time.Second),
		NoColor: true,
	}, 80, 12)
	assert.ErrorIs(t, err, petclient.ErrEmptyURL)
}

func TestRenderSnapshotConfigTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	f := &fakeFetcher{}

	_, err := RenderSnapshot(ctx, Options{Config: &fakeConfig{block: true}, Fetcher: f, NoColor: true}, 80, 12)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.calls())
}
