package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

func rajaOngkirServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvinces(t *testing.T) {
	srv := rajaOngkirServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/province", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("key"))
		w.Write([]byte(`{"rajaongkir":{"status":{"code":200,"description":"OK"},"results":[
			{"province_id":"9","province":"Jawa Barat"},
			{"province_id":"10","province":"Jawa Tengah"}]}}`))
	})

	svc := services.NewRajaOngkirService("test-key", srv.URL, "23", nil, zap.NewNop())
	provinces, err := svc.Provinces(context.Background())
	assert.NoError(t, err)
	assert.Len(t, provinces, 2)
	assert.Equal(t, "Jawa Barat", provinces[0].Province)
}

func TestCities_FiltersByProvince(t *testing.T) {
	srv := rajaOngkirServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/city", r.URL.Path)
		assert.Equal(t, "9", r.URL.Query().Get("province"))
		w.Write([]byte(`{"rajaongkir":{"status":{"code":200,"description":"OK"},"results":[
			{"city_id":"23","province_id":"9","type":"Kota","city_name":"Bandung","postal_code":"40111"}]}}`))
	})

	svc := services.NewRajaOngkirService("test-key", srv.URL, "23", nil, zap.NewNop())
	cities, err := svc.Cities(context.Background(), "9")
	assert.NoError(t, err)
	assert.Len(t, cities, 1)
	assert.Equal(t, "Bandung", cities[0].CityName)
}

func TestCost(t *testing.T) {
	srv := rajaOngkirServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cost", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "23", r.PostForm.Get("origin"))
		assert.Equal(t, "114", r.PostForm.Get("destination"))
		assert.Equal(t, "400", r.PostForm.Get("weight"))
		assert.Equal(t, "jne", r.PostForm.Get("courier"))
		w.Write([]byte(`{"rajaongkir":{"status":{"code":200,"description":"OK"},"results":[
			{"code":"jne","name":"Jalur Nugraha Ekakurir (JNE)","costs":[
				{"service":"REG","description":"Layanan Reguler","cost":[{"value":10000,"etd":"2-3","note":""}]}]}]}}`))
	})

	svc := services.NewRajaOngkirService("test-key", srv.URL, "23", nil, zap.NewNop())
	rates, err := svc.Cost(context.Background(), "114", 400, "jne")
	assert.NoError(t, err)
	assert.Len(t, rates, 1)
	assert.Equal(t, "jne", rates[0].Code)
	assert.Equal(t, int64(10000), rates[0].Costs[0].Cost[0].Value)
}

func TestCost_UpstreamError(t *testing.T) {
	srv := rajaOngkirServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rajaongkir":{"status":{"code":400,"description":"Invalid key"},"results":null}}`))
	})

	svc := services.NewRajaOngkirService("bad-key", srv.URL, "23", nil, zap.NewNop())
	_, err := svc.Cost(context.Background(), "114", 400, "jne")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestCost_ClampsWeightToMinimum(t *testing.T) {
	srv := rajaOngkirServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.PostForm.Get("weight"))
		w.Write([]byte(`{"rajaongkir":{"status":{"code":200,"description":"OK"},"results":[]}}`))
	})

	svc := services.NewRajaOngkirService("test-key", srv.URL, "23", nil, zap.NewNop())
	_, err := svc.Cost(context.Background(), "114", 0, "jne")
	assert.NoError(t, err)
}
