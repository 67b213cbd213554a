package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Key: "test-key", Host: "example.test"}, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestFetch_SendsSearchRequest(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	var gotMethod, gotPath, gotHost, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotHost = r.Header.Get("x-rapidapi-host")
		gotKey = r.Header.Get("x-rapidapi-key")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{"data":{"products":[{"product_title":"Robot","product_price":"$20.00","product_photo":"p","product_star_rating":4.5}]}}`))
	})

	products := client.Fetch(context.Background(), "robot toys")
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].Title != "Robot" || products[0].Rating != Rating("4.5") {
		t.Fatalf("unexpected product: %+v", products[0])
	}

	if gotMethod != http.MethodGet || gotPath != "/search" {
		t.Fatalf("request = %s %s, want GET /search", gotMethod, gotPath)
	}
	if gotHost != "example.test" || gotKey != "test-key" {
		t.Fatalf("headers host=%q key=%q", gotHost, gotKey)
	}
	want := map[string]string{
		"query":               "robot toys",
		"page":                "1",
		"country":             "US",
		"sort_by":             "RELEVANCE",
		"product_condition":   "ALL",
		"is_prime":            "false",
		"deals_and_discounts": "NONE",
	}
	if !reflect.DeepEqual(gotQuery, want) {
		t.Fatalf("query = %v, want %v", gotQuery, want)
	}
}

func TestFetch_CapsAtTenRecords(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		var resp searchResponse
		for i := 0; i < 25; i++ {
			resp.Data.Products = append(resp.Data.Products, Product{Title: fmt.Sprintf("item %d", i)})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	products := client.Fetch(context.Background(), "anything")
	if len(products) != maxRecords {
		t.Fatalf("got %d products, want %d", len(products), maxRecords)
	}
	if products[0].Title != "item 0" || products[9].Title != "item 9" {
		t.Fatalf("order not kept: first=%q last=%q", products[0].Title, products[9].Title)
	}
}

func TestFetch_EmptyLiveResultIsNotReplaced(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"products":[]}}`))
	})

	if got := client.Fetch(context.Background(), "lego"); len(got) != 0 {
		t.Fatalf("expected no products, got %+v", got)
	}
}

func TestFetch_FallsBackOnUpstreamFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		},
		"malformed json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, handler)
			products := client.Fetch(context.Background(), "Lego castle")
			if !reflect.DeepEqual(products, Offline("Lego castle")) {
				t.Fatalf("expected offline catalog, got %+v", products)
			}
			if products[0].Title != "LEGO Classic Creative Bricks Set" {
				t.Fatalf("first title = %q", products[0].Title)
			}
		})
	}
}

func TestFetch_UnreachableHostFallsBack(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(Config{Key: "k"}, WithBaseURL(base))
	if got := client.Fetch(context.Background(), "doll"); !reflect.DeepEqual(got, Offline("doll")) {
		t.Fatalf("expected offline catalog, got %+v", got)
	}
}

func TestFetch_NoKeyUsesOffline(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	if got := client.Fetch(context.Background(), "baby doll"); !reflect.DeepEqual(got, Offline("baby doll")) {
		t.Fatalf("expected offline catalog, got %+v", got)
	}
}

func TestOffline_KeywordMatchInFileOrder(t *testing.T) {
	t.Parallel()

	lego := Offline("LEGO dolls house")
	if len(lego) != 3 {
		t.Fatalf("got %d lego products, want 3", len(lego))
	}
	if lego[0].Title != "LEGO Classic Creative Bricks Set" || lego[0].Price != "$29.99" {
		t.Fatalf("unexpected first lego product: %+v", lego[0])
	}

	dolls := Offline("a baby doll")
	if len(dolls) != 3 {
		t.Fatalf("got %d doll products, want 3", len(dolls))
	}
	if dolls[0].Title != "American Girl Doll - Holiday Edition" || dolls[2].Title != "Baby Alive Doll" {
		t.Fatalf("unexpected doll order: %q, %q", dolls[0].Title, dolls[2].Title)
	}
}

func TestOffline_SynthesizedGift(t *testing.T) {
	t.Parallel()

	got := Offline("toy car")
	want := []Product{{
		Title:       "Wonderful Toy Car",
		Price:       "$49.99",
		Photo:       "https://via.placeholder.com/300x300?text=Gift",
		URL:         "#",
		Description: "A perfect toy car for Christmas!",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Offline(toy car) = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(Offline("toy car"), got) {
		t.Fatal("synthesized gift is not deterministic")
	}
}

func TestOffline_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := Offline("lego")
	first[0].Title = "changed"
	if got := Offline("lego")[0].Title; got != "LEGO Classic Creative Bricks Set" {
		t.Fatalf("offline catalog was mutated: %q", got)
	}
}

func TestRating_UnmarshalVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]Rating{
		`{"product_star_rating":"4.7"}`: "4.7",
		`{"product_star_rating":4}`:     "4",
		`{"product_star_rating":null}`:  "",
		`{}`:                            "",
	}
	for in, want := range cases {
		var p Product
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if p.Rating != want {
			t.Fatalf("%s: rating = %q, want %q", in, p.Rating, want)
		}
	}

	var p Product
	if err := json.Unmarshal([]byte(`{"product_star_rating":true}`), &p); err == nil {
		t.Fatal("expected error for boolean rating")
	}
}
