package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/internal/models"
)

const shortLinkCacheTTL = 24 * time.Hour

// ShortLinkService resolves share codes to recipes. Redis acts as a
// lookaside cache; cache failures never fail the request.
type ShortLinkService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewShortLinkService(db *gorm.DB, redisClient *redis.Client) *ShortLinkService {
	return &ShortLinkService{db: db, redis: redisClient}
}

// Resolve returns the id of the recipe owning the code.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey(code)).Result()
		if err == nil {
			if id, parseErr := uuid.Parse(cached); parseErr == nil {
				return id, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("short link cache read failed: %v", err)
		}
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Select("id").
		First(&recipe, "short_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("%w: short code %q", ErrNotFound, code)
	}
	if err != nil {
		return uuid.Nil, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey(code), recipe.ID.String(), shortLinkCacheTTL).Err(); err != nil {
			log.Printf("short link cache write failed: %v", err)
		}
	}
	return recipe.ID, nil
}

// Invalidate drops the cached mapping for a code. Runs when the owning
// recipe is deleted, so the code stops resolving immediately instead of
// serving the stale id until the TTL expires.
func (s *ShortLinkService) Invalidate(ctx context.Context, code string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKey(code)).Err()
}

// Code returns the share code assigned to the recipe at creation.
func (s *ShortLinkService) Code(ctx context.Context, recipeID uuid.UUID) (string, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Select("short_code").
		First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
	}
	if err != nil {
		return "", err
	}
	return recipe.ShortCode, nil
}

func cacheKey(code string) string {
	return "shortlink:" + code
}
