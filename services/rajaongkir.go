package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	provincesCacheKey = "rajaongkir:provinces"
	citiesCacheKey    = "rajaongkir:cities:%s"
	regionCacheTTL    = 24 * time.Hour
)

// Province and City mirror RajaOngkir's region catalog entries.
type Province struct {
	ProvinceID string `json:"province_id"`
	Province   string `json:"province"`
}

type City struct {
	CityID     string `json:"city_id"`
	ProvinceID string `json:"province_id"`
	Province   string `json:"province"`
	Type       string `json:"type"`
	CityName   string `json:"city_name"`
	PostalCode string `json:"postal_code"`
}

// CourierCost is one service level quoted by a courier.
type CourierCost struct {
	Service     string `json:"service"`
	Description string `json:"description"`
	Cost        []struct {
		Value int64  `json:"value"`
		Etd   string `json:"etd"`
		Note  string `json:"note"`
	} `json:"cost"`
}

// CourierRates groups the quoted services of a single courier.
type CourierRates struct {
	Code  string        `json:"code"`
	Name  string        `json:"name"`
	Costs []CourierCost `json:"costs"`
}

// ShippingService exposes the RajaOngkir region catalog and cost quotes.
type ShippingService interface {
	Provinces(ctx context.Context) ([]Province, error)
	Cities(ctx context.Context, provinceID string) ([]City, error)
	Cost(ctx context.Context, destinationCityID string, weightGrams int, courier string) ([]CourierRates, error)
}

// RajaOngkirService calls the RajaOngkir starter API. Region lists change
// rarely, so they are served read-through from Redis; cost quotes always
// go upstream.
type RajaOngkirService struct {
	apiKey       string
	baseURL      string
	originCityID string
	httpClient   *http.Client
	cache        *redis.Client
	logger       *zap.Logger
}

func NewRajaOngkirService(apiKey, baseURL, originCityID string, cache *redis.Client, logger *zap.Logger) *RajaOngkirService {
	return &RajaOngkirService{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		originCityID: originCityID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// ---- RajaOngkir API response envelope ----

type rajaOngkirEnvelope struct {
	RajaOngkir struct {
		Status struct {
			Code        int    `json:"code"`
			Description string `json:"description"`
		} `json:"status"`
		Results json.RawMessage `json:"results"`
	} `json:"rajaongkir"`
}

// Provinces returns the province catalog, cached for a day.
func (s *RajaOngkirService) Provinces(ctx context.Context) ([]Province, error) {
	var provinces []Province
	if s.cacheGet(ctx, provincesCacheKey, &provinces) {
		return provinces, nil
	}

	if err := s.doGet(ctx, "/province", nil, &provinces); err != nil {
		return nil, fmt.Errorf("rajaongkir provinces: %w", err)
	}

	s.cacheSet(ctx, provincesCacheKey, provinces)
	return provinces, nil
}

// Cities returns the city catalog, optionally filtered by province, cached
// per province for a day.
func (s *RajaOngkirService) Cities(ctx context.Context, provinceID string) ([]City, error) {
	key := fmt.Sprintf(citiesCacheKey, provinceID)
	if provinceID == "" {
		key = fmt.Sprintf(citiesCacheKey, "all")
	}

	var cities []City
	if s.cacheGet(ctx, key, &cities) {
		return cities, nil
	}

	query := url.Values{}
	if provinceID != "" {
		query.Set("province", provinceID)
	}
	if err := s.doGet(ctx, "/city", query, &cities); err != nil {
		return nil, fmt.Errorf("rajaongkir cities: %w", err)
	}

	s.cacheSet(ctx, key, cities)
	return cities, nil
}

// Cost quotes delivery from the configured origin city. Weight is clamped
// to the courier minimum of one gram.
func (s *RajaOngkirService) Cost(ctx context.Context, destinationCityID string, weightGrams int, courier string) ([]CourierRates, error) {
	if weightGrams < 1 {
		weightGrams = 1
	}

	form := url.Values{}
	form.Set("origin", s.originCityID)
	form.Set("destination", destinationCityID)
	form.Set("weight", strconv.Itoa(weightGrams))
	form.Set("courier", courier)

	var rates []CourierRates
	if err := s.doPostForm(ctx, "/cost", form, &rates); err != nil {
		return nil, fmt.Errorf("rajaongkir cost: %w", err)
	}
	return rates, nil
}

// ---- HTTP helpers ----

func (s *RajaOngkirService) doGet(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return s.send(req, out)
}

func (s *RajaOngkirService) doPostForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.send(req, out)
}

func (s *RajaOngkirService) send(req *http.Request, out interface{}) error {
	req.Header.Set("key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope rajaOngkirEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.RajaOngkir.Status.Code != http.StatusOK {
		return fmt.Errorf("rajaongkir API error (code %d): %s",
			envelope.RajaOngkir.Status.Code, envelope.RajaOngkir.Status.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.RajaOngkir.Results, out); err != nil {
			return fmt.Errorf("decode results: %w", err)
		}
	}
	return nil
}

// ---- cache helpers ----

// cacheGet reports whether key held a usable cached value. Cache failures
// are logged and treated as misses.
func (s *RajaOngkirService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("region cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("region cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *RajaOngkirService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, regionCacheTTL).Err(); err != nil {
		s.logger.Warn("region cache write failed", zap.String("key", key), zap.Error(err))
	}
}
