// groupctl creates groups. Groups have no management view in the web app;
// this tool is the administrative process that owns their lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/database"
	"github.com/d60-Lab/microblog/pkg/logger"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	title := flag.String("title", "", "group title (required)")
	slug := flag.String("slug", "", "URL-safe slug (required)")
	description := flag.String("description", "", "group description")
	flag.Parse()

	if *title == "" || *slug == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !slugRe.MatchString(*slug) {
		fmt.Fprintf(os.Stderr, "invalid slug %q: use lowercase letters, digits, - and _\n", *slug)
		os.Exit(2)
	}

	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, cfg.Log.Production); err != nil {
		panic(err)
	}
	db := must(database.InitDB(cfg))

	groups := repository.NewGroupRepository(db)
	g := &model.Group{Title: *title, Slug: *slug, Description: *description}
	if err := groups.Create(context.Background(), g); err != nil {
		fmt.Fprintf(os.Stderr, "create group: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created group %s (%s)\n", g.Title, g.Slug)
}
