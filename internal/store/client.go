package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

const (
	cacheKeyRestaurants = "store:restaurants"
	cacheKeyBookings    = "store:bookings"
)

// Client is an HTTP client to the remote booking record store. One attempt
// is made per call; there is no retry or abort path beyond the request
// timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client with baseURL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures optional Redis caching for the list endpoints.
// Mutations invalidate the affected key, preserving read-after-write for a
// single caller.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// GetAllRestaurants fetches every restaurant.
func (c *Client) GetAllRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	endpoint := c.baseURL + "/api/v1/restaurants"
	var wrap struct {
		Restaurants []models.Restaurant `json:"restaurants"`
	}

	if c.readCache(ctx, cacheKeyRestaurants, &wrap) {
		return wrap.Restaurants, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, fmt.Errorf("get restaurants: %w", err)
	}
	c.writeCache(ctx, cacheKeyRestaurants, wrap)
	return wrap.Restaurants, nil
}

// CreateRestaurant creates a restaurant; the store assigns the ID when absent.
func (c *Client) CreateRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	endpoint := c.baseURL + "/api/v1/restaurants"
	var created models.Restaurant
	if err := c.doPost(ctx, endpoint, r, &created); err != nil {
		return models.Restaurant{}, fmt.Errorf("create restaurant: %w", err)
	}
	c.dropCache(ctx, cacheKeyRestaurants)
	return created, nil
}

// UpdateRestaurant applies a partial update and returns the full record.
func (c *Client) UpdateRestaurant(ctx context.Context, id int64, updates RestaurantUpdate) (models.Restaurant, error) {
	endpoint := fmt.Sprintf("%s/api/v1/restaurants/%d", c.baseURL, id)
	var updated models.Restaurant
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, updates, &updated); err != nil {
		return models.Restaurant{}, fmt.Errorf("update restaurant %d: %w", id, err)
	}
	c.dropCache(ctx, cacheKeyRestaurants)
	return updated, nil
}

// GetAllBookings fetches every booking.
func (c *Client) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	endpoint := c.baseURL + "/api/v1/bookings"
	var wrap struct {
		Bookings []models.Booking `json:"bookings"`
	}

	if c.readCache(ctx, cacheKeyBookings, &wrap) {
		return wrap.Bookings, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	c.writeCache(ctx, cacheKeyBookings, wrap)
	return wrap.Bookings, nil
}

// CreateBooking creates a booking; the store assigns id, created_at and
// confirmation_number.
func (c *Client) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	endpoint := c.baseURL + "/api/v1/bookings"
	var created models.Booking
	if err := c.doPost(ctx, endpoint, b, &created); err != nil {
		return models.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	c.dropCache(ctx, cacheKeyBookings)
	return created, nil
}

// DeleteBooking removes the booking record outright.
func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s", c.baseURL, url.PathEscape(id))
	if err := c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	c.dropCache(ctx, cacheKeyBookings)
	return nil
}

// RejectBooking marks the booking rejected and returns the updated record.
func (c *Client) RejectBooking(ctx context.Context, id string) (models.Booking, error) {
	return c.decide(ctx, id, "reject")
}

// ConfirmBooking marks the booking confirmed and returns the updated record.
func (c *Client) ConfirmBooking(ctx context.Context, id string) (models.Booking, error) {
	return c.decide(ctx, id, "confirm")
}

func (c *Client) decide(ctx context.Context, id, action string) (models.Booking, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s/%s", c.baseURL, url.PathEscape(id), action)
	var updated models.Booking
	if err := c.doPost(ctx, endpoint, nil, &updated); err != nil {
		return models.Booking{}, fmt.Errorf("%s booking %s: %w", action, id, err)
	}
	c.dropCache(ctx, cacheKeyBookings)
	return updated, nil
}

// CurrentUser returns the authenticated user, or nil when the store reports
// no session.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	endpoint := c.baseURL + "/api/v1/auth/me"
	var user models.User
	err := c.doGet(ctx, endpoint, &user)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &user, nil
}

// HealthCheck checks if the record store is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) dropCache(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("http %d: %w", resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
