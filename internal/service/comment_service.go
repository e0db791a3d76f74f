package service

import (
	"context"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

type CommentService interface {
	// Add creates a comment by authorID on the post. The caller has
	// already resolved the post; no existence check happens here.
	Add(ctx context.Context, postID, authorID, text string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
}

func NewCommentService(commentRepo repository.CommentRepository) CommentService {
	return &commentService{commentRepo: commentRepo}
}

func (s *commentService) Add(ctx context.Context, postID, authorID, text string) error {
	return s.commentRepo.Create(ctx, &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	})
}
