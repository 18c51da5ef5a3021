// internal/symptoms/service.go
package symptoms

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sshreyx1/hot-triage/internal/common/cache"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/common/metrics"
	"github.com/sshreyx1/hot-triage/internal/infermedica"
)

const (
	defaultAge = 30
	defaultSex = infermedica.SexMale
)

// Input is a free-text symptom description plus optional demographics.
type Input struct {
	Text string           `json:"text"`
	Age  *infermedica.Age `json:"age,omitempty"`
	Sex  infermedica.Sex  `json:"sex,omitempty"`
}

// Service forwards free-text symptom descriptions to the engine's NLP
// endpoint and passes the mention list through unmodified.
type Service struct {
	client   *infermedica.Client
	cache    *cache.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewService creates the parse adapter. cacheClient may be nil, in which case
// every request goes straight upstream.
func NewService(client *infermedica.Client, cacheClient *cache.Client, cacheTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		client:   client,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		logger: log.With(map[string]interface{}{
			"component": "symptom-parser",
		}),
	}
}

// Parse forwards the description to the external NLP service with spelling
// correction and token inclusion enabled. Missing demographics default to
// age 30 and sex male. The raw upstream body is returned unmodified.
func (s *Service) Parse(ctx context.Context, in Input) (json.RawMessage, error) {
	req := infermedica.ParseRequest{
		Text:            in.Text,
		Age:             infermedica.Age{Value: defaultAge},
		Sex:             defaultSex,
		IncludeTokens:   true,
		CorrectSpelling: true,
	}
	if in.Age != nil && in.Age.Value != 0 {
		req.Age.Value = in.Age.Value
	}
	if in.Sex != "" {
		req.Sex = in.Sex
	}

	s.logger.Info("parsing symptoms", map[string]interface{}{
		"text": in.Text,
	})

	key := cacheKey(req)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			metrics.ParseCacheHits.WithLabelValues("hit").Inc()
			return raw, nil
		} else if !cache.IsMiss(err) {
			// Cache trouble must not fail the request.
			s.logger.Warn("parse cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		metrics.ParseCacheHits.WithLabelValues("miss").Inc()
	}

	resp, err := s.client.Parse(ctx, req)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Mentions))
	for _, m := range resp.Mentions {
		names = append(names, m.CommonName)
	}
	s.logger.Info("detected symptoms", map[string]interface{}{
		"mentions": names,
		"count":    len(names),
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Raw, s.cacheTTL); err != nil {
			s.logger.Warn("parse cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return resp.Raw, nil
}

func cacheKey(req infermedica.ParseRequest) string {
	sum := sha1.Sum([]byte(req.Text))
	return fmt.Sprintf("parse:%s:%d:%x", req.Sex, req.Age.Value, sum)
}
