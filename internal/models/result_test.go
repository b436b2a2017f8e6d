package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSearchResult_Accessors(t *testing.T) {
	posted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		result       SearchResult
		wantPrice    bool
		wantRating   bool
		wantLocation bool
		wantTime     bool
	}{
		{"product", SearchResult{Type: TypeProduct, Attrs: ProductAttrs{Price: Float(10), Rating: Float(4), Location: "Berlin"}}, true, true, true, false},
		{"unrated product", SearchResult{Type: TypeProduct, Attrs: ProductAttrs{Price: Float(10)}}, true, false, false, false},
		{"post", SearchResult{Type: TypePost, Attrs: PostAttrs{PostedAt: posted}}, false, false, false, true},
		{"open budget job", SearchResult{Type: TypeJob, Attrs: JobAttrs{Location: "Remote", PostedAt: posted}}, false, false, true, true},
		{"crypto", SearchResult{Type: TypeCrypto, Attrs: CryptoAttrs{Symbol: "BTC", Price: Float(43000)}}, true, false, false, false},
		{"no attributes", SearchResult{Type: TypeUser}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.result.Price(); ok != tt.wantPrice {
				t.Errorf("Price ok = %v, want %v", ok, tt.wantPrice)
			}
			if _, ok := tt.result.Rating(); ok != tt.wantRating {
				t.Errorf("Rating ok = %v, want %v", ok, tt.wantRating)
			}
			if _, ok := tt.result.Location(); ok != tt.wantLocation {
				t.Errorf("Location ok = %v, want %v", ok, tt.wantLocation)
			}
			if _, ok := tt.result.Timestamp(); ok != tt.wantTime {
				t.Errorf("Timestamp ok = %v, want %v", ok, tt.wantTime)
			}
		})
	}
}

func TestSearchResult_JSONKeepsVariant(t *testing.T) {
	in := SearchResult{
		ID:       "s1",
		Type:     TypeService,
		Title:    "Logo Design",
		Category: "Design",
		Attrs:    ServiceAttrs{Price: Float(150), Rating: Float(4.9), Location: "Remote", DeliveryDays: 3},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["price"] != 150.0 || raw["deliveryDays"] != 3.0 {
		t.Errorf("flat wire form missing fields: %s", data)
	}
	if _, present := raw["timestamp"]; present {
		t.Errorf("timestamp should be omitted for services: %s", data)
	}

	var out SearchResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	attrs, ok := out.Attrs.(ServiceAttrs)
	if !ok {
		t.Fatalf("Attrs = %T, want ServiceAttrs", out.Attrs)
	}
	if attrs.DeliveryDays != 3 || attrs.Price == nil || *attrs.Price != 150 {
		t.Errorf("attrs = %+v", attrs)
	}
}

func TestRecord_ResultDropsForeignAttributes(t *testing.T) {
	rec := Record{ID: "p1", Type: TypePost, Title: "Hello", Price: Float(9.99), Location: "Paris"}
	r := rec.Result()
	if _, ok := r.Price(); ok {
		t.Error("posts have no price")
	}
	if _, ok := r.Location(); ok {
		t.Error("posts have no location")
	}
}
