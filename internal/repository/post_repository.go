package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

// PostRepository exposes every post query the views need as an explicit
// method; there are no implicit reverse accessors.
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Update(ctx context.Context, p *model.Post) error
	// Delete removes the post and its comments in one transaction. The
	// application never calls it from a request path; it exists for
	// administrative use.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	ListAll(ctx context.Context) ([]*model.Post, error)
	ListByGroup(ctx context.Context, groupID string) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*model.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Model(&model.Post{ID: p.ID}).
		Select("text", "group_id", "image_path").
		Updates(map[string]any{
			"text":       p.Text,
			"group_id":   p.GroupID,
			"image_path": p.ImagePath,
		}).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]*model.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Count(&cnt).Error
	return cnt, err
}
