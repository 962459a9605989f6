package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platefeed/backend/internal/models"
)

// FollowRepo operates on the follower -> author subscription edges.
type FollowRepo struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) *FollowRepo {
	return &FollowRepo{db: db}
}

func (r *FollowRepo) Exists(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FollowRepo) Add(ctx context.Context, followerID, authorID uuid.UUID) error {
	follow := models.Follow{FollowerID: followerID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return fmt.Errorf("add follow: %w", err)
	}
	return nil
}

func (r *FollowRepo) Remove(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, fmt.Errorf("remove follow: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AuthorIDs returns the set of authors the user follows.
func (r *FollowRepo) AuthorIDs(ctx context.Context, followerID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Authors lists the followed users ordered by id, paginated.
func (r *FollowRepo) Authors(ctx context.Context, followerID uuid.UUID, limit, offset int) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", followerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := base.
		Order("users.id").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}
