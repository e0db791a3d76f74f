package service

import (
	"context"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

// PostDetail is everything the post detail page renders.
type PostDetail struct {
	Post            *model.Post
	AuthorPostCount int64
	Comments        []*model.Comment
}

type PostService interface {
	Get(ctx context.Context, id string) (*model.Post, error)
	Detail(ctx context.Context, id string) (*PostDetail, error)
	// Create persists a new post owned by authorID. groupID may be empty
	// (ungrouped); a non-empty groupID must name an existing group.
	Create(ctx context.Context, authorID, text, groupID, imagePath string) (*model.Post, error)
	// Update applies text/group/image to an existing post. Authorization
	// is the caller's concern: only handlers know the silent-redirect rule.
	Update(ctx context.Context, post *model.Post, text, groupID, imagePath string) error
	// Groups lists every group for the post form's select box.
	Groups(ctx context.Context) ([]*model.Group, error)
}

type postService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
}

func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, commentRepo repository.CommentRepository) PostService {
	return &postService{postRepo: postRepo, groupRepo: groupRepo, commentRepo: commentRepo}
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

func (s *postService) Detail(ctx context.Context, id string) (*PostDetail, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, AuthorPostCount: count, Comments: comments}, nil
}

func (s *postService) Create(ctx context.Context, authorID, text, groupID, imagePath string) (*model.Post, error) {
	gid, err := s.resolveGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	post := &model.Post{
		Text:      text,
		AuthorID:  authorID,
		GroupID:   gid,
		ImagePath: imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, post *model.Post, text, groupID, imagePath string) error {
	gid, err := s.resolveGroup(ctx, groupID)
	if err != nil {
		return err
	}
	post.Text = text
	post.GroupID = gid
	if imagePath != "" {
		post.ImagePath = imagePath
	}
	return s.postRepo.Update(ctx, post)
}

func (s *postService) Groups(ctx context.Context) ([]*model.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *postService) resolveGroup(ctx context.Context, groupID string) (*string, error) {
	if groupID == "" {
		return nil, nil
	}
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &group.ID, nil
}
