package service

import (
	"context"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/pagination"
)

// Profile is everything the profile page renders. Following is tri-state:
// nil for unauthenticated viewers, otherwise whether the viewer follows
// the author.
type Profile struct {
	Author        *model.User
	Page          pagination.Page[*model.Post]
	PostCount     int64
	FollowerCount int64
	Following     *bool
}

type ProfileService interface {
	// Profile loads the author page. viewerID is empty for guests.
	Profile(ctx context.Context, username, viewerID string, page int) (*Profile, error)
}

type profileService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	pageSize   int
}

func NewProfileService(userRepo repository.UserRepository, postRepo repository.PostRepository, followRepo repository.FollowRepository, pageSize int) ProfileService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &profileService{userRepo: userRepo, postRepo: postRepo, followRepo: followRepo, pageSize: pageSize}
}

func (s *profileService) Profile(ctx context.Context, username, viewerID string, page int) (*Profile, error) {
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	followerCount, err := s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Author:        author,
		Page:          pagination.Paginate(posts, s.pageSize, page),
		PostCount:     int64(len(posts)),
		FollowerCount: followerCount,
	}

	if viewerID != "" {
		following, err := s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
		p.Following = &following
	}
	return p, nil
}
