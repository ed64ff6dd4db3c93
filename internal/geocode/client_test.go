package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSearch(t *testing.T) {
	var gotUA, gotQuery, gotCountry string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		gotCountry = r.URL.Query().Get("countrycodes")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"53.7997","lon":"-1.5492","address":{"city":"Leeds"}}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "EVALocal-Importer/1.0", 5*time.Second)

	result, err := client.Search(context.Background(), "LS1 1AA")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotUA != "EVALocal-Importer/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "EVALocal-Importer/1.0")
	}
	if gotQuery != "LS1 1AA" {
		t.Errorf("query = %q, want %q", gotQuery, "LS1 1AA")
	}
	if gotCountry != "gb" {
		t.Errorf("countrycodes = %q, want gb", gotCountry)
	}
	if result.Latitude != 53.7997 || result.Longitude != -1.5492 {
		t.Errorf("coordinates = (%v, %v), want (53.7997, -1.5492)", result.Latitude, result.Longitude)
	}
	if result.City != "Leeds" {
		t.Errorf("city = %q, want Leeds", result.City)
	}
}

func TestClientSearchFallsBackToTown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"54.0","lon":"-1.0","address":{"town":"Harrogate"}}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test", time.Second)
	result, err := client.Search(context.Background(), "HG1 1AA")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.City != "Harrogate" {
		t.Errorf("city = %q, want Harrogate", result.City)
	}
}

func TestClientSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test", time.Second)
	_, err := client.Search(context.Background(), "ZZ99 9ZZ")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("error = %v, want ErrNoResults", err)
	}
}

func TestClientSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test", time.Second)
	if _, err := client.Search(context.Background(), "LS1 1AA"); err == nil {
		t.Error("Search() should fail on non-200 status")
	}
}

func TestClientSearchBadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"-1.0"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test", time.Second)
	if _, err := client.Search(context.Background(), "LS1 1AA"); err == nil {
		t.Error("Search() should fail on unparsable coordinates")
	}
}
