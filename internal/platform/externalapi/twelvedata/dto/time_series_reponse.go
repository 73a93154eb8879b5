// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

// StocksResponse represents the JSON response from the Twelve Data stocks endpoint.
type StocksResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    []struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Currency string `json:"currency"`
		Exchange string `json:"exchange"`
		Country  string `json:"country"`
		Type     string `json:"type"`
	} `json:"data"`
}
