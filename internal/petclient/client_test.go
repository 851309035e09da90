package petclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPets_ExtractsPetsField(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Pets": [{"name":"Rex","kind":"dog","age":3,"pic":"r.png"}]}`))
	}))
	defer srv.Close()

	res, err := New(time.Second).FetchPets(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
	assert.True(t, res.FieldPresent)
	assert.Equal(t, []Pet{{"name": "Rex", "kind": "dog", "age": json.Number("3"), "pic": "r.png"}}, res.Pets)
}

func TestFetchPets_MissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Total": 0}`))
	}))
	defer srv.Close()

	res, err := New(0).FetchPets(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, res.FieldPresent)
	assert.Empty(t, res.Pets)
}

func TestFetchPets_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no answer from all the pets services", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(0).FetchPets(context.Background(), srv.URL)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, "no answer from all the pets services", httpErr.Body)
}

func largePetsBody(n int) string {
	var b strings.Builder
	b.WriteString(`{"Total":`)
	b.WriteString(fmt.Sprint(n))
	b.WriteString(`,"Pets":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"Name":"pet-%06d","Kind":"Labrador Retriever","Age":%d,"URL":"https://pets.example/img/%06d.jpg"}`, i, i%20, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestFetchPets_LargeBodyIsReadWhole(t *testing.T) {
	body := largePetsBody(12000)
	require.Greater(t, len(body), 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	res, err := New(5*time.Second).FetchPets(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, res.Pets, 12000)
	assert.Equal(t, "pet-011999", res.Pets[11999]["Name"])
}

func TestFetchPets_MaxBodyExceeded(t *testing.T) {
	body := largePetsBody(50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(time.Second)
	c.MaxBody = int64(len(body)) - 1
	_, err := c.FetchPets(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Contains(t, err.Error(), fmt.Sprintf("exceeds %d bytes", c.MaxBody))

	c.MaxBody = int64(len(body))
	res, err := c.FetchPets(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, res.Pets, 50)
}

func TestFetchPets_EmptyURL(t *testing.T) {
	_, err := New(0).FetchPets(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestFetchPets_NilClient(t *testing.T) {
	var c *Client
	_, err := c.FetchPets(context.Background(), "http://pets.local")
	assert.Error(t, err)
}

func TestFetchPets_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(time.Second).FetchPets(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "petclient: do request")
}

func TestFetchPets_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := New(0).FetchPets(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNewWithTransport_UsesTransport(t *testing.T) {
	var seen string
	tr := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return nil, errors.New("boom")
	})

	_, err := NewWithTransport(0, tr).FetchPets(context.Background(), "http://pets.local/pets")
	require.Error(t, err)
	assert.Equal(t, "http://pets.local/pets", seen)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Result
		wantErr bool
	}{
		{name: "null field", body: `{"Pets": null}`, want: Result{FieldPresent: true}},
		{name: "empty array", body: `{"Pets": []}`, want: Result{FieldPresent: true, Pets: []Pet{}}},
		{name: "lowercase key is not the field", body: `{"pets": [{"name":"x"}]}`, want: Result{}},
		{
			name: "extra keys kept opaque",
			body: `{"Total":1,"Hostname":"h","Pets":[{"Name":"Nemo","Kind":"Clown","Age":14,"URL":"n.jpg","Extra":{"a":1}}]}`,
			want: Result{FieldPresent: true, Pets: []Pet{{
				"Name": "Nemo", "Kind": "Clown", "Age": json.Number("14"), "URL": "n.jpg",
				"Extra": map[string]any{"a": json.Number("1")},
			}}},
		},
		{name: "body is array", body: `[{"name":"x"}]`, wantErr: true},
		{name: "malformed", body: `{"Pets": [`, wantErr: true},
		{name: "field not array", body: `{"Pets": "dogs"}`, wantErr: true},
		{name: "elements not objects", body: `{"Pets": [1, 2]}`, wantErr: true},
		{name: "null body", body: `null`, want: Result{}},
		{
			name: "large integers keep their digits",
			body: `{"Pets":[{"Age":9007199254740993}]}`,
			want: Result{FieldPresent: true, Pets: []Pet{{"Age": json.Number("9007199254740993")}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPError_Message(t *testing.T) {
	assert.Equal(t, "http error: status=500", (&HTTPError{StatusCode: 500}).Error())
	assert.Equal(t, "http error: status=404 body=gone", (&HTTPError{StatusCode: 404, Body: "gone"}).Error())
}
