package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/microblog/internal/model"
)

type FollowRepository interface {
	// Create inserts the edge user→author. Idempotent: an existing edge is
	// left untouched and no error is returned.
	Create(ctx context.Context, userID, authorID string) error
	// Delete removes the edge if present; removing a missing edge is a no-op.
	Delete(ctx context.Context, userID, authorID string) error
	Exists(ctx context.Context, userID, authorID string) (bool, error)
	// ListAuthorIDs returns the ids of every author the user follows.
	ListAuthorIDs(ctx context.Context, userID string) ([]string, error)
	CountFollowers(ctx context.Context, authorID string) (int64, error)
	CountEdges(ctx context.Context, userID, authorID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, userID, authorID string) error {
	f := &model.Follow{ID: uuid.New().String(), UserID: userID, AuthorID: authorID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID string) (bool, error) {
	var f model.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *followRepository) ListAuthorIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, authorID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("author_id = ?", authorID).
		Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountEdges(ctx context.Context, userID, authorID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&cnt).Error
	return cnt, err
}
