package models

import (
	"encoding/json"
	"time"
)

// Record is the flat wire form of a SearchResult, shared by the JSON API and the
// YAML fixture and catalog files. Optional attributes are omitted when they do not
// apply to the record's type.
type Record struct {
	ID           string     `json:"id" yaml:"id"`
	Type         EntityType `json:"type" yaml:"type"`
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description" yaml:"description"`
	Image        string     `json:"image,omitempty" yaml:"image,omitempty"`
	Price        *float64   `json:"price,omitempty" yaml:"price,omitempty"`
	Rating       *float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Location     string     `json:"location,omitempty" yaml:"location,omitempty"`
	Category     string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags         []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Author       *Author    `json:"author,omitempty" yaml:"author,omitempty"`
	Stats        *Stats     `json:"stats,omitempty" yaml:"stats,omitempty"`
	Followers    int64      `json:"followers,omitempty" yaml:"followers,omitempty"`
	Condition    string     `json:"condition,omitempty" yaml:"condition,omitempty"`
	DeliveryDays int        `json:"deliveryDays,omitempty" yaml:"delivery_days,omitempty"`
	Remote       bool       `json:"remote,omitempty" yaml:"remote,omitempty"`
	Duration     int        `json:"duration,omitempty" yaml:"duration,omitempty"`
	Symbol       string     `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Change24h    float64    `json:"change24h,omitempty" yaml:"change24h,omitempty"`
}

// Result converts the record into a SearchResult, building the attribute variant
// that matches Type. Attributes that do not belong to Type are dropped.
func (rec *Record) Result() SearchResult {
	r := SearchResult{
		ID:          rec.ID,
		Type:        rec.Type,
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.Image,
		Category:    rec.Category,
		Tags:        rec.Tags,
		Author:      rec.Author,
		Stats:       rec.Stats,
	}
	var ts time.Time
	if rec.Timestamp != nil {
		ts = *rec.Timestamp
	}
	switch rec.Type {
	case TypeUser:
		r.Attrs = UserAttrs{Location: rec.Location, Rating: rec.Rating, Followers: rec.Followers}
	case TypeProduct:
		r.Attrs = ProductAttrs{Price: rec.Price, Rating: rec.Rating, Location: rec.Location, Condition: rec.Condition}
	case TypeService:
		r.Attrs = ServiceAttrs{Price: rec.Price, Rating: rec.Rating, Location: rec.Location, DeliveryDays: rec.DeliveryDays}
	case TypeJob:
		r.Attrs = JobAttrs{Budget: rec.Price, Location: rec.Location, PostedAt: ts, Remote: rec.Remote}
	case TypePost:
		r.Attrs = PostAttrs{PostedAt: ts}
	case TypeVideo:
		r.Attrs = VideoAttrs{PublishedAt: ts, Duration: rec.Duration}
	case TypeCrypto:
		r.Attrs = CryptoAttrs{Symbol: rec.Symbol, Price: rec.Price, Change24h: rec.Change24h}
	}
	return r
}

// RecordOf flattens r into its wire form.
func RecordOf(r *SearchResult) Record {
	rec := Record{
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Category:    r.Category,
		Tags:        r.Tags,
		Author:      r.Author,
		Stats:       r.Stats,
	}
	if p, ok := r.Price(); ok {
		rec.Price = Float(p)
	}
	if v, ok := r.Rating(); ok {
		rec.Rating = Float(v)
	}
	rec.Location, _ = r.Location()
	if ts, ok := r.Timestamp(); ok {
		rec.Timestamp = &ts
	}
	switch a := r.Attrs.(type) {
	case UserAttrs:
		rec.Followers = a.Followers
	case ProductAttrs:
		rec.Condition = a.Condition
	case ServiceAttrs:
		rec.DeliveryDays = a.DeliveryDays
	case JobAttrs:
		rec.Remote = a.Remote
	case VideoAttrs:
		rec.Duration = a.Duration
	case CryptoAttrs:
		rec.Symbol = a.Symbol
		rec.Change24h = a.Change24h
	}
	return rec
}

// MarshalJSON encodes the result in its flat wire form.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(RecordOf(&r))
}

// UnmarshalJSON decodes the flat wire form.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = rec.Result()
	return nil
}
