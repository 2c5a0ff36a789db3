package ratings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNHTSAOverallStars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/modelyear/"):
			fmt.Fprint(w, `{"Results": [{"VehicleId": 12345}]}`)
		case strings.Contains(r.URL.Path, "/VehicleId/12345"):
			fmt.Fprint(w, `{"Results": [{"OverallRating": "5"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewNHTSAClient(srv.URL)
	stars, err := c.OverallStars(context.Background(), 2022, "Honda", "Civic")
	if err != nil {
		t.Fatalf("OverallStars: %v", err)
	}
	if stars != 5 {
		t.Errorf("stars = %d, want 5", stars)
	}
}

func TestNHTSAUnratedVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/modelyear/"):
			fmt.Fprint(w, `{"Results": [{"VehicleId": 7}]}`)
		default:
			fmt.Fprint(w, `{"Results": [{"OverallRating": "Not Rated"}]}`)
		}
	}))
	defer srv.Close()

	c := NewNHTSAClient(srv.URL)
	if _, err := c.OverallStars(context.Background(), 2022, "Honda", "Civic"); err == nil {
		t.Fatal("expected error for unrated vehicle")
	}
}

func TestNHTSANoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Results": []}`)
	}))
	defer srv.Close()

	c := NewNHTSAClient(srv.URL)
	if _, err := c.OverallStars(context.Background(), 1999, "Lada", "Niva"); err == nil {
		t.Fatal("expected error for unknown vehicle")
	}
}

func TestEPASmartwayCertified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/menu/options"):
			fmt.Fprint(w, `{"menuItem": [{"value": "43210"}]}`)
		case strings.Contains(r.URL.Path, "/vehicle/43210"):
			fmt.Fprint(w, `{"smartWay": "Elite"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewEPAClient(srv.URL)
	certified, err := c.SmartwayCertified(context.Background(), 2023, "Toyota", "Prius")
	if err != nil {
		t.Fatalf("SmartwayCertified: %v", err)
	}
	if !certified {
		t.Error("expected certified")
	}
}

func TestEPANotCertified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/menu/options") {
			fmt.Fprint(w, `{"menuItem": [{"value": "1"}]}`)
			return
		}
		fmt.Fprint(w, `{"smartWay": "No"}`)
	}))
	defer srv.Close()

	c := NewEPAClient(srv.URL)
	certified, err := c.SmartwayCertified(context.Background(), 2022, "Ford", "F-150")
	if err != nil {
		t.Fatalf("SmartwayCertified: %v", err)
	}
	if certified {
		t.Error("expected not certified")
	}
}
