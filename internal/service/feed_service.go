package service

import (
	"context"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/pagination"
)

// FeedService assembles the reverse-chronological post feeds: global,
// per group, and followed-authors.
type FeedService interface {
	Index(ctx context.Context, page int) (pagination.Page[*model.Post], error)
	Group(ctx context.Context, slug string, page int) (*model.Group, pagination.Page[*model.Post], error)
	Following(ctx context.Context, userID string, page int) (pagination.Page[*model.Post], error)
}

type feedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	followRepo repository.FollowRepository
	pageSize   int
}

func NewFeedService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, followRepo repository.FollowRepository, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &feedService{postRepo: postRepo, groupRepo: groupRepo, followRepo: followRepo, pageSize: pageSize}
}

func (s *feedService) Index(ctx context.Context, page int) (pagination.Page[*model.Post], error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return pagination.Page[*model.Post]{}, err
	}
	return pagination.Paginate(posts, s.pageSize, page), nil
}

func (s *feedService) Group(ctx context.Context, slug string, page int) (*model.Group, pagination.Page[*model.Post], error) {
	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pagination.Page[*model.Post]{}, err
	}
	posts, err := s.postRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, pagination.Page[*model.Post]{}, err
	}
	return group, pagination.Paginate(posts, s.pageSize, page), nil
}

func (s *feedService) Following(ctx context.Context, userID string, page int) (pagination.Page[*model.Post], error) {
	authorIDs, err := s.followRepo.ListAuthorIDs(ctx, userID)
	if err != nil {
		return pagination.Page[*model.Post]{}, err
	}
	posts, err := s.postRepo.ListByAuthors(ctx, authorIDs)
	if err != nil {
		return pagination.Page[*model.Post]{}, err
	}
	return pagination.Paginate(posts, s.pageSize, page), nil
}
