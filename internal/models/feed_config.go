package models

import "net/url"

// DefaultFeedBaseURL is the endpoint prefix of the NYC subway GTFS-Realtime feeds.
// The feed identifier is appended to it.
const DefaultFeedBaseURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-"

// FeedConfig describes the realtime feed polled by the ingestion pipeline.
type FeedConfig struct {
	FeedID       string `json:"feed_id" yaml:"feed_id" validate:"required"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	APIKeyHeader string `json:"api_key_header,omitempty" yaml:"api_key_header,omitempty"`
	APIKeyValue  string `json:"api_key_value,omitempty" yaml:"api_key_value,omitempty"`
}

// Endpoint returns the URL the feed is fetched from.
// An explicit URL wins over BaseURL, which wins over DefaultFeedBaseURL.
func (f FeedConfig) Endpoint() string {
	if f.URL != "" {
		return f.URL
	}
	base := f.BaseURL
	if base == "" {
		base = DefaultFeedBaseURL
	}
	return base + url.PathEscape(f.FeedID)
}
