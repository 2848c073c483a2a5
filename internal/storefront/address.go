package storefront

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"go-cosmetics/internal/models"
)

const DefaultAddressAPI = "https://provinces.open-api.vn"

// AddressLookup is what the checkout address selector needs.
type AddressLookup interface {
	Provinces(ctx context.Context) ([]models.Province, error)
	Districts(ctx context.Context, provinceCode int) ([]models.District, error)
	Wards(ctx context.Context, districtCode int) ([]models.Ward, error)
}

// AddressDirectory reads the public Vietnamese administrative-unit API.
// Responses are not cached.
type AddressDirectory struct {
	baseURL    string
	httpClient *http.Client
}

func NewAddressDirectory(baseURL string, httpClient *http.Client) *AddressDirectory {
	if baseURL == "" {
		baseURL = DefaultAddressAPI
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &AddressDirectory{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

func (d *AddressDirectory) Provinces(ctx context.Context) ([]models.Province, error) {
	doc, err := d.fetch(ctx, "/api/p/")
	if err != nil {
		return nil, err
	}
	var out []models.Province
	doc.ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.Province{Code: int(v.Get("code").Int()), Name: v.Get("name").String()})
		return true
	})
	return out, nil
}

func (d *AddressDirectory) Districts(ctx context.Context, provinceCode int) ([]models.District, error) {
	doc, err := d.fetch(ctx, fmt.Sprintf("/api/p/%d?depth=2", provinceCode))
	if err != nil {
		return nil, err
	}
	var out []models.District
	doc.Get("districts").ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.District{
			Code:         int(v.Get("code").Int()),
			Name:         v.Get("name").String(),
			ProvinceCode: provinceCode,
		})
		return true
	})
	return out, nil
}

func (d *AddressDirectory) Wards(ctx context.Context, districtCode int) ([]models.Ward, error) {
	doc, err := d.fetch(ctx, fmt.Sprintf("/api/d/%d?depth=2", districtCode))
	if err != nil {
		return nil, err
	}
	var out []models.Ward
	doc.Get("wards").ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.Ward{
			Code:         int(v.Get("code").Int()),
			Name:         v.Get("name").String(),
			DistrictCode: districtCode,
		})
		return true
	})
	return out, nil
}

func (d *AddressDirectory) fetch(ctx context.Context, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("address lookup: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("address lookup: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("address lookup %s: status %d", path, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("address lookup %s: invalid json", path)
	}
	return gjson.ParseBytes(body), nil
}
