package models

import "time"

// Attributes is the type-specific part of a SearchResult. The set of
// implementations is closed: one struct per EntityType.
type Attributes interface {
	EntityType() EntityType
	sealed()
}

// UserAttrs describes a member profile.
type UserAttrs struct {
	Location  string
	Rating    *float64
	Followers int64
}

// ProductAttrs describes a marketplace listing. Price is nil when unlisted.
type ProductAttrs struct {
	Price     *float64
	Rating    *float64
	Location  string
	Condition string
}

// ServiceAttrs describes a freelance service offering.
type ServiceAttrs struct {
	Price        *float64
	Rating       *float64
	Location     string
	DeliveryDays int
}

// JobAttrs describes a freelance job posting. Budget is nil for "open budget" jobs.
type JobAttrs struct {
	Budget   *float64
	Location string
	PostedAt time.Time
	Remote   bool
}

// PostAttrs describes a social feed post.
type PostAttrs struct {
	PostedAt time.Time
}

// VideoAttrs describes an uploaded video. Duration is in seconds.
type VideoAttrs struct {
	PublishedAt time.Time
	Duration    int
}

// CryptoAttrs describes a crypto asset quote.
type CryptoAttrs struct {
	Symbol    string
	Price     *float64
	Change24h float64
}

func (UserAttrs) EntityType() EntityType    { return TypeUser }
func (ProductAttrs) EntityType() EntityType { return TypeProduct }
func (ServiceAttrs) EntityType() EntityType { return TypeService }
func (JobAttrs) EntityType() EntityType     { return TypeJob }
func (PostAttrs) EntityType() EntityType    { return TypePost }
func (VideoAttrs) EntityType() EntityType   { return TypeVideo }
func (CryptoAttrs) EntityType() EntityType  { return TypeCrypto }

func (UserAttrs) sealed()    {}
func (ProductAttrs) sealed() {}
func (ServiceAttrs) sealed() {}
func (JobAttrs) sealed()     {}
func (PostAttrs) sealed()    {}
func (VideoAttrs) sealed()   {}
func (CryptoAttrs) sealed()  {}

// Float returns a pointer to v, for optional attributes such as prices and ratings.
func Float(v float64) *float64 {
	return &v
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
