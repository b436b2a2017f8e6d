package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/pkg/utils"
)

// endpoint is one upstream search route and the mapping of its entity shape.
type endpoint struct {
	entity  string
	listKey string
	decode  func([]json.RawMessage) []models.SearchResult
}

// HTTPSource searches one or more platform API endpoints.
type HTTPSource struct {
	name      string
	types     []models.EntityType
	client    *Client
	endpoints []endpoint
	logger    *zap.Logger
}

// Name implements Source.
func (s *HTTPSource) Name() string { return s.name }

// Types implements Source.
func (s *HTTPSource) Types() []models.EntityType { return s.types }

// Search queries every endpoint of the source in turn. When some endpoints fail
// and others succeed, the successful results are returned and the failures are
// logged; when all fail, the joined error is returned.
func (s *HTTPSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var (
		out  []models.SearchResult
		errs []error
	)
	for _, ep := range s.endpoints {
		items, err := s.client.searchEntity(ctx, ep.entity, ep.listKey, query)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ep.decode(items)...)
	}
	if len(errs) == len(s.endpoints) {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		s.logger.Warn("partial source failure", zap.String("source", s.name), zap.Error(err))
	}
	return out, nil
}

func newHTTPSource(name string, client *Client, logger *zap.Logger, types []models.EntityType, eps ...endpoint) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{name: name, types: types, client: client, endpoints: eps, logger: logger}
}

// NewUserSource searches /users/search.
func NewUserSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("users", c, logger, []models.EntityType{models.TypeUser},
		endpoint{"users", "users", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapUser) }})
}

// NewProductSource searches /products/search.
func NewProductSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("products", c, logger, []models.EntityType{models.TypeProduct},
		endpoint{"products", "products", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapProduct) }})
}

// NewFreelanceSource searches /jobs/search and /services/search.
func NewFreelanceSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("freelance", c, logger, []models.EntityType{models.TypeJob, models.TypeService},
		endpoint{"jobs", "jobs", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapJob) }},
		endpoint{"services", "services", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapService) }})
}

// NewPostSource searches /posts/search.
func NewPostSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("posts", c, logger, []models.EntityType{models.TypePost},
		endpoint{"posts", "posts", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapPost) }})
}

// NewVideoSource searches /videos/search.
func NewVideoSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("videos", c, logger, []models.EntityType{models.TypeVideo},
		endpoint{"videos", "videos", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapVideo) }})
}

// NewCryptoSource searches /crypto/search.
func NewCryptoSource(c *Client, logger *zap.Logger) *HTTPSource {
	return newHTTPSource("crypto", c, logger, []models.EntityType{models.TypeCrypto},
		endpoint{"crypto", "assets", func(items []json.RawMessage) []models.SearchResult { return decodeEach(items, mapCrypto) }})
}

// DefaultHTTPSources is the fan-out set used when none is configured.
var DefaultHTTPSources = []string{"users", "products", "freelance", "posts", "videos", "crypto"}

// NewHTTPSources builds the named sources in order. Unknown names are an error.
func NewHTTPSources(c *Client, names []string, logger *zap.Logger) ([]Source, error) {
	out := make([]Source, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "users":
			out = append(out, NewUserSource(c, logger))
		case "products":
			out = append(out, NewProductSource(c, logger))
		case "freelance":
			out = append(out, NewFreelanceSource(c, logger))
		case "posts":
			out = append(out, NewPostSource(c, logger))
		case "videos":
			out = append(out, NewVideoSource(c, logger))
		case "crypto":
			out = append(out, NewCryptoSource(c, logger))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return out, nil
}

// Upstream entity shapes. Only the fields that feed a SearchResult are decoded.

type partyDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
}

func (p *partyDTO) author() *models.Author {
	if p == nil {
		return nil
	}
	name := firstNonEmpty(p.DisplayName, p.Name, p.Username)
	if name == "" {
		return nil
	}
	return &models.Author{Name: name, Avatar: p.Avatar, Verified: p.Verified}
}

type userDTO struct {
	ID           flexID    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar"`
	Location     string    `json:"location"`
	Profession   string    `json:"profession"`
	Verified     bool      `json:"verified"`
	Followers    int64     `json:"followers"`
	ProfileViews int64     `json:"profileViews"`
	Rating       flexFloat `json:"rating"`
	Skills       []string  `json:"skills"`
}

func mapUser(u *userDTO) (models.SearchResult, bool) {
	title := firstNonEmpty(u.DisplayName, u.Name, u.Username)
	if title == "" {
		return models.SearchResult{}, false
	}
	return models.SearchResult{
		ID:          string(u.ID),
		Type:        models.TypeUser,
		Title:       title,
		Description: u.Bio,
		Image:       u.Avatar,
		Category:    u.Profession,
		Tags:        u.Skills,
		Author:      &models.Author{Name: title, Avatar: u.Avatar, Verified: u.Verified},
		Stats:       stats(u.ProfileViews, 0, 0, 0),
		Attrs:       models.UserAttrs{Location: u.Location, Rating: u.Rating.ptr(), Followers: u.Followers},
	}, true
}

type productDTO struct {
	ID          flexID    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       flexFloat `json:"price"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	Rating      flexFloat `json:"rating"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Condition   string    `json:"condition"`
	Tags        []string  `json:"tags"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Seller      *partyDTO `json:"seller"`
}

func mapProduct(p *productDTO) (models.SearchResult, bool) {
	title := firstNonEmpty(p.Name, p.Title)
	if title == "" {
		return models.SearchResult{}, false
	}
	image := p.Image
	if image == "" && len(p.Images) > 0 {
		image = p.Images[0]
	}
	return models.SearchResult{
		ID:          string(p.ID),
		Type:        models.TypeProduct,
		Title:       title,
		Description: p.Description,
		Image:       image,
		Category:    p.Category,
		Tags:        p.Tags,
		Author:      p.Seller.author(),
		Stats:       stats(p.Views, p.Likes, 0, 0),
		Attrs: models.ProductAttrs{
			Price:     p.Price.ptr(),
			Rating:    p.Rating.ptr(),
			Location:  p.Location,
			Condition: p.Condition,
		},
	}, true
}

type jobDTO struct {
	ID          flexID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      flexFloat `json:"budget"`
	Category    string    `json:"category"`
	Skills      []string  `json:"skills"`
	Location    string    `json:"location"`
	Remote      bool      `json:"remote"`
	PostedAt    flexTime  `json:"postedAt"`
	Views       int64     `json:"views"`
	Proposals   int64     `json:"proposals"`
	Client      *partyDTO `json:"client"`
}

func mapJob(j *jobDTO) (models.SearchResult, bool) {
	if j.Title == "" {
		return models.SearchResult{}, false
	}
	location := j.Location
	if location == "" && j.Remote {
		location = "Remote"
	}
	return models.SearchResult{
		ID:          string(j.ID),
		Type:        models.TypeJob,
		Title:       j.Title,
		Description: j.Description,
		Category:    j.Category,
		Tags:        j.Skills,
		Author:      j.Client.author(),
		Stats:       stats(j.Views, 0, j.Proposals, 0),
		Attrs: models.JobAttrs{
			Budget:   j.Budget.ptr(),
			Location: location,
			PostedAt: j.PostedAt.t,
			Remote:   j.Remote,
		},
	}, true
}

type serviceDTO struct {
	ID           flexID    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        flexFloat `json:"price"`
	Rating       flexFloat `json:"rating"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	DeliveryTime int       `json:"deliveryTime"`
	Location     string    `json:"location"`
	Image        string    `json:"image"`
	Views        int64     `json:"views"`
	Orders       int64     `json:"orders"`
	Freelancer   *partyDTO `json:"freelancer"`
}

func mapService(s *serviceDTO) (models.SearchResult, bool) {
	if s.Title == "" {
		return models.SearchResult{}, false
	}
	return models.SearchResult{
		ID:          string(s.ID),
		Type:        models.TypeService,
		Title:       s.Title,
		Description: s.Description,
		Image:       s.Image,
		Category:    s.Category,
		Tags:        s.Tags,
		Author:      s.Freelancer.author(),
		Stats:       stats(s.Views, 0, 0, 0),
		Attrs: models.ServiceAttrs{
			Price:        s.Price.ptr(),
			Rating:       s.Rating.ptr(),
			Location:     s.Location,
			DeliveryDays: s.DeliveryTime,
		},
	}, true
}

type postDTO struct {
	ID        flexID    `json:"id"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Author    *partyDTO `json:"author"`
	CreatedAt flexTime  `json:"createdAt"`
	Hashtags  []string  `json:"hashtags"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	Comments  int64     `json:"comments"`
	Shares    int64     `json:"shares"`
}

const postTitleMax = 80

func mapPost(p *postDTO) (models.SearchResult, bool) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return models.SearchResult{}, false
	}
	title := utils.Truncate(utils.FirstLine(content), postTitleMax)
	return models.SearchResult{
		ID:          string(p.ID),
		Type:        models.TypePost,
		Title:       title,
		Description: content,
		Image:       p.Image,
		Tags:        p.Hashtags,
		Author:      p.Author.author(),
		Stats:       stats(p.Views, p.Likes, p.Comments, p.Shares),
		Attrs:       models.PostAttrs{PostedAt: p.CreatedAt.t},
	}, true
}

type videoDTO struct {
	ID          flexID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    int       `json:"duration"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt flexTime  `json:"publishedAt"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Channel     *partyDTO `json:"channel"`
}

func mapVideo(v *videoDTO) (models.SearchResult, bool) {
	if v.Title == "" {
		return models.SearchResult{}, false
	}
	return models.SearchResult{
		ID:          string(v.ID),
		Type:        models.TypeVideo,
		Title:       v.Title,
		Description: v.Description,
		Image:       v.Thumbnail,
		Category:    v.Category,
		Tags:        v.Tags,
		Author:      v.Channel.author(),
		Stats:       stats(v.Views, v.Likes, v.Comments, 0),
		Attrs:       models.VideoAttrs{PublishedAt: v.PublishedAt.t, Duration: v.Duration},
	}, true
}

type cryptoDTO struct {
	ID             flexID    `json:"id"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	Price          flexFloat `json:"price"`
	CurrentPrice   flexFloat `json:"current_price"`
	Change24h      flexFloat `json:"change24h"`
	PriceChangePct flexFloat `json:"price_change_percentage_24h"`
}

func mapCrypto(c *cryptoDTO) (models.SearchResult, bool) {
	price := c.Price
	if !price.set {
		price = c.CurrentPrice
	}
	change := c.Change24h
	if !change.set {
		change = c.PriceChangePct
	}
	if c.Name == "" {
		return models.SearchResult{}, false
	}
	symbol := strings.ToUpper(c.Symbol)
	title := c.Name
	if symbol != "" {
		title = fmt.Sprintf("%s (%s)", c.Name, symbol)
	}
	tags := []string{"crypto"}
	if symbol != "" {
		tags = append(tags, strings.ToLower(symbol))
	}
	return models.SearchResult{
		ID:          string(c.ID),
		Type:        models.TypeCrypto,
		Title:       title,
		Description: cryptoDescription(c.Name, price, change),
		Image:       c.Image,
		Category:    "Cryptocurrency",
		Tags:        tags,
		Attrs:       models.CryptoAttrs{Symbol: symbol, Price: price.ptr(), Change24h: change.value},
	}, true
}

func cryptoDescription(name string, price, change flexFloat) string {
	if !price.set {
		return name + " quote unavailable"
	}
	return fmt.Sprintf("%s trading at $%.2f (%+.2f%% 24h)", name, price.value, change.value)
}

// flexTime decodes an RFC 3339 string, a YYYY-MM-DD date, or epoch milliseconds.
type flexTime struct {
	t time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err == nil {
			f.t = time.UnixMilli(ms).UTC()
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.t = t
			return nil
		}
	}
	return nil
}

func stats(views, likes, comments, shares int64) *models.Stats {
	if views == 0 && likes == 0 && comments == 0 && shares == 0 {
		return nil
	}
	return &models.Stats{Views: views, Likes: likes, Comments: comments, Shares: shares}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
