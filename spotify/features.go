package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amonks/artistgraph/chunk"
	"github.com/amonks/artistgraph/request"
	"github.com/rs/zerolog/log"
)

const audioFeaturesMicroBatch = 10

// GetAudioFeatures fetches audio features, AudioFeaturesLimit ids at a time.
//
// The endpoint is deprecated. A 404 or 410 yields whatever was collected so
// far rather than an error. A 403 on a chunk retries the chunk as
// micro-batches of 10, dropping those that still fail.
func (spo *Client) GetAudioFeatures(ctx context.Context, ids []string) (map[string]AudioFeatures, error) {
	features := map[string]AudioFeatures{}
	for _, c := range chunk.Split(chunk.Unique(ids), AudioFeaturesLimit) {
		got, err := spo.fetchAudioFeatures(ctx, c)
		code := request.StatusCode(err)
		switch {
		case err == nil:
			merge(features, got)

		case code == http.StatusNotFound || code == http.StatusGone:
			log.Warn().Int("status", code).Msg("audio features endpoint unavailable")
			return features, nil

		case code == http.StatusForbidden && len(c) > 1:
			for _, micro := range chunk.Split(c, audioFeaturesMicroBatch) {
				got, err := spo.fetchAudioFeatures(ctx, micro)
				if err != nil && (errors.Is(err, ErrCredentials) || ctx.Err() != nil) {
					return nil, err
				} else if err != nil {
					log.Warn().Err(err).Int("ids", len(micro)).Msg("dropping audio features micro-batch")
					continue
				}
				merge(features, got)
			}

		default:
			return nil, err
		}
	}
	return features, nil
}

func (spo *Client) fetchAudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	var results struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	query := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := spo.getJSON(ctx, "/audio-features", query, &results); err != nil {
		return nil, fmt.Errorf("error getting audio features for %d tracks: %w", len(ids), err)
	}
	return results.AudioFeatures, nil
}

func merge(into map[string]AudioFeatures, from []*AudioFeatures) {
	for _, f := range from {
		if f != nil && f.ID != "" {
			into[f.ID] = *f
		}
	}
}
