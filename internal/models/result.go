// Package models defines the searchable entity record, search parameters, and responses.
package models

import (
	"strings"
	"time"
)

// EntityType identifies which kind of entity a SearchResult describes.
type EntityType string

const (
	TypeUser    EntityType = "user"
	TypeProduct EntityType = "product"
	TypeService EntityType = "service"
	TypePost    EntityType = "post"
	TypeVideo   EntityType = "video"
	TypeCrypto  EntityType = "crypto"
	TypeJob     EntityType = "job"
)

// AllEntityTypes lists every known entity type in display order.
var AllEntityTypes = []EntityType{TypeUser, TypeProduct, TypeService, TypeJob, TypePost, TypeVideo, TypeCrypto}

// NormalizeEntityType lowercases s and strips one trailing "s", so "Videos" and
// "video" both become TypeVideo. Empty input and "all" return "" (no type filter).
// Unknown names are returned normalized; they simply match nothing.
func NormalizeEntityType(s string) EntityType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return ""
	}
	return EntityType(strings.TrimSuffix(s, "s"))
}

// Known reports whether t is one of AllEntityTypes.
func (t EntityType) Known() bool {
	for _, k := range AllEntityTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Author is the person or organization behind an entity.
type Author struct {
	Name     string `json:"name" yaml:"name"`
	Avatar   string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Verified bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// Stats holds engagement counters. Zero means unknown.
type Stats struct {
	Views    int64 `json:"views,omitempty" yaml:"views,omitempty"`
	Likes    int64 `json:"likes,omitempty" yaml:"likes,omitempty"`
	Comments int64 `json:"comments,omitempty" yaml:"comments,omitempty"`
	Shares   int64 `json:"shares,omitempty" yaml:"shares,omitempty"`
}

// SearchResult is a normalized searchable entity. Fields shared by every type are
// plain struct fields; type-specific attributes live in Attrs and are read through
// the Price, Rating, Location, and Timestamp accessors.
// SearchResult values are built once per fetch and never mutated afterwards.
type SearchResult struct {
	ID          string
	Type        EntityType
	Title       string
	Description string
	Image       string
	Category    string
	Tags        []string
	Author      *Author
	Stats       *Stats
	Attrs       Attributes
}

// Views returns the view counter, or 0 when stats are absent.
func (r *SearchResult) Views() int64 {
	if r.Stats == nil {
		return 0
	}
	return r.Stats.Views
}

// Price returns the entity's price. ok is false when price does not apply.
func (r *SearchResult) Price() (price float64, ok bool) {
	switch a := r.Attrs.(type) {
	case ProductAttrs:
		return deref(a.Price)
	case ServiceAttrs:
		return deref(a.Price)
	case CryptoAttrs:
		return deref(a.Price)
	case JobAttrs:
		return deref(a.Budget)
	}
	return 0, false
}

// Rating returns the entity's average rating. ok is false when unrated.
func (r *SearchResult) Rating() (rating float64, ok bool) {
	var p *float64
	switch a := r.Attrs.(type) {
	case UserAttrs:
		p = a.Rating
	case ProductAttrs:
		p = a.Rating
	case ServiceAttrs:
		p = a.Rating
	}
	return deref(p)
}

// Location returns the entity's location. ok is false when it has none.
func (r *SearchResult) Location() (location string, ok bool) {
	switch a := r.Attrs.(type) {
	case UserAttrs:
		location = a.Location
	case ProductAttrs:
		location = a.Location
	case ServiceAttrs:
		location = a.Location
	case JobAttrs:
		location = a.Location
	}
	return location, location != ""
}

// Timestamp returns when the entity was published. ok is false when unknown.
func (r *SearchResult) Timestamp() (ts time.Time, ok bool) {
	switch a := r.Attrs.(type) {
	case PostAttrs:
		ts = a.PostedAt
	case VideoAttrs:
		ts = a.PublishedAt
	case JobAttrs:
		ts = a.PostedAt
	}
	return ts, !ts.IsZero()
}
