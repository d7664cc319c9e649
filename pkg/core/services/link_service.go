package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

type LinkService struct {
	repo    ports.LinkRepository
	clock   ports.Clock
	metrics ports.ReportMetrics
	logger  zerolog.Logger
	offset  time.Duration
}

// NewLinkService records clicks in wall time shifted by offset, the same
// wall time reports are bounded in.
func NewLinkService(repo ports.LinkRepository, clock ports.Clock, metrics ports.ReportMetrics, logger zerolog.Logger, offset time.Duration) *LinkService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &LinkService{repo: repo, clock: clock, metrics: metrics, logger: logger, offset: offset}
}

func (s *LinkService) Shorten(ctx context.Context, originalURL, title, customCode string) (*domain.Link, error) {
	if originalURL == "" {
		return nil, domain.ErrInvalidURL
	}

	code := customCode
	if code == "" {
		var err error
		code, err = generateShortCode(6)
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByShortCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrCodeExists
		}
	}

	link := &domain.Link{
		OriginalURL: originalURL,
		ShortCode:   code,
		Title:       title,
		CreatedAt:   s.clock.Now().UTC(),
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info().Str("short_code", link.ShortCode).Str("url", link.OriginalURL).Msg("link created")
	return link, nil
}

func (s *LinkService) GetOriginalURL(ctx context.Context, code string) (string, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", domain.ErrLinkNotFound
	}
	return link.OriginalURL, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// RecordClick appends a click for shortCode to the log.
func (s *LinkService) RecordClick(ctx context.Context, shortCode, referrer, userAgent, ip, country string) error {
	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if link == nil {
		return domain.ErrLinkNotFound
	}

	click := &domain.ClickEvent{
		Timestamp:   s.clock.Now().UTC().Add(s.offset).Truncate(time.Second),
		ShortCode:   link.ShortCode,
		Referrer:    referrer,
		UserAgent:   userAgent,
		ClientIP:    ip,
		CountryCode: country,
	}

	if err := s.repo.RecordClick(ctx, click); err != nil {
		return err
	}
	s.metrics.ClickRecorded()
	return nil
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
