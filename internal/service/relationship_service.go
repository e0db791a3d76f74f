package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/microblog/internal/repository"
)

var (
	// ErrFollowSelf guards the hard invariant: no user follows themselves.
	ErrFollowSelf = errors.New("cannot follow self")
)

// RelationshipService manages follow edges between users and authors.
type RelationshipService interface {
	// Follow creates the edge requester→author. Idempotent; self-follow is
	// rejected. The author is addressed by username and must exist.
	Follow(ctx context.Context, userID, authorUsername string) error
	// Unfollow removes the edge if present; a missing edge is a no-op.
	Unfollow(ctx context.Context, userID, authorUsername string) error
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	FollowerCount(ctx context.Context, authorID string) (int64, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository) RelationshipService {
	return &relationshipService{followRepo: followRepo, userRepo: userRepo}
}

func (s *relationshipService) Follow(ctx context.Context, userID, authorUsername string) error {
	author, err := s.userRepo.FindByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return ErrFollowSelf
	}
	return s.followRepo.Create(ctx, userID, author.ID)
}

func (s *relationshipService) Unfollow(ctx context.Context, userID, authorUsername string) error {
	author, err := s.userRepo.FindByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, userID, author.ID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *relationshipService) FollowerCount(ctx context.Context, authorID string) (int64, error) {
	return s.followRepo.CountFollowers(ctx, authorID)
}
