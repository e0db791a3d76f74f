// seed fills a dev database with demo users, groups, follow edges, and
// posts.
package main

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/database"
	"github.com/d60-Lab/microblog/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	users := flag.Int("users", 5, "number of demo users")
	postsPer := flag.Int("posts", 8, "posts per user")
	flag.Parse()

	cfg := must(config.Load())
	mustDo(logger.Init(cfg.Log.Level, cfg.Log.Production))
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	hash := must(bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost))

	groups := []*model.Group{
		{Title: "General", Slug: "general", Description: "Anything goes"},
		{Title: "Travel", Slug: "travel", Description: "Trips and places"},
		{Title: "Cooking", Slug: "cooking", Description: "Recipes and food"},
	}
	for _, g := range groups {
		mustDo(groupRepo.Create(ctx, g))
	}

	seeded := make([]*model.User, 0, *users)
	for i := 0; i < *users; i++ {
		u := &model.User{
			Username: fmt.Sprintf("demo%d", i),
			Email:    fmt.Sprintf("demo%d@example.com", i),
			Password: string(hash),
		}
		mustDo(userRepo.Create(ctx, u))
		seeded = append(seeded, u)
	}

	// everyone follows demo0
	for _, u := range seeded[1:] {
		mustDo(followRepo.Create(ctx, u.ID, seeded[0].ID))
	}

	for i, u := range seeded {
		for j := 0; j < *postsPer; j++ {
			p := &model.Post{
				Text:     fmt.Sprintf("Post %d from %s", j, u.Username),
				AuthorID: u.ID,
			}
			if j%2 == 0 {
				p.GroupID = &groups[(i+j)%len(groups)].ID
			}
			mustDo(postRepo.Create(ctx, p))
		}
	}

	fmt.Printf("seeded %d users, %d groups, %d posts\n", len(seeded), len(groups), len(seeded)*(*postsPer))
}
