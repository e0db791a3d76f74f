package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/storage"
	"github.com/d60-Lab/microblog/pkg/token"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	mr       *miniredis.Miniredis
	cfg      *config.Config
	mediaDir string

	users     repository.UserRepository
	posts     repository.PostRepository
	groups    repository.GroupRepository
	comments  repository.CommentRepository
	follows   repository.FollowRepository
	auth      service.AuthService
	fragments *cache.FragmentCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Group{}, &model.Post{}, &model.Comment{}, &model.Follow{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.Feed.PageSize = 10
	cfg.Cache.TTL = 20 * time.Second
	cfg.Session.Secret = "test-secret"
	cfg.Session.TTL = time.Hour
	cfg.Limits.WriteRPS = 1000
	cfg.Limits.WriteBurst = 1000

	mediaDir := t.TempDir()
	media, err := storage.NewLocalStorage(mediaDir)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	follows := repository.NewFollowRepository(db)

	fragments := cache.NewFragmentCache(rdb, cfg.Cache.TTL)
	auth := service.NewAuthService(users)

	h, err := handler.New(
		service.NewFeedService(posts, groups, follows, cfg.Feed.PageSize),
		service.NewProfileService(users, posts, follows, cfg.Feed.PageSize),
		service.NewPostService(posts, groups, comments),
		service.NewCommentService(comments),
		service.NewRelationshipService(follows, users),
		auth,
		fragments, media,
		"../../web/templates/*.tmpl",
		cfg.Session.Secret, cfg.Session.TTL,
	)
	require.NoError(t, err)

	return &testEnv{
		router:    NewRouter(cfg, h, users, media.BasePath()),
		db:        db,
		mr:        mr,
		cfg:       cfg,
		mediaDir:  mediaDir,
		users:     users,
		posts:     posts,
		groups:    groups,
		comments:  comments,
		follows:   follows,
		auth:      auth,
		fragments: fragments,
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.auth.Signup(context.Background(), username, username+"@example.com", "sup3rsecret")
	require.NoError(t, err)
	return u
}

func (e *testEnv) sessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	tok, err := token.Generate(userID, e.cfg.Session.Secret, e.cfg.Session.TTL)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: tok}
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postMultipart(t *testing.T, path string, fields url.Values, filename string, content []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(field, v))
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postCount(t *testing.T) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, e.db.Model(&model.Post{}).Count(&cnt).Error)
	return cnt
}

func TestGuestPostCreateRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/create/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))

	w = env.postForm("/create/", url.Values{"text": {"sneaky"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))
	assert.EqualValues(t, 0, env.postCount(t))
}

func TestPostCreate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.postForm("/create/", url.Values{"text": {"my first post"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, env.postCount(t))

	posts, err := env.posts.ListByAuthor(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "my first post", posts[0].Text)
}

func TestPostCreateValidationFailureRendersFormWith200(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.postForm("/create/", url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.EqualValues(t, 0, env.postCount(t))
}

func TestPostCreateRejectsNonImageUpload(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.postMultipart(t, "/create/", url.Values{"text": {"with attachment"}}, "notes.txt", []byte("plain text"), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Attach a jpg, png, gif, or webp image.")
	assert.EqualValues(t, 0, env.postCount(t))
}

func TestPostCreateStoresImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.postMultipart(t, "/create/", url.Values{"text": {"picture post"}}, "cat.png", []byte("not a real png"), cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	posts, err := env.posts.ListByAuthor(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].ImagePath)
	assert.True(t, strings.HasPrefix(posts[0].ImagePath, "posts/post_"))

	_, err = os.Stat(filepath.Join(env.mediaDir, filepath.FromSlash(posts[0].ImagePath)))
	assert.NoError(t, err)
}

func TestPostEditByNonAuthorIsSilentlyIgnored(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	ctx := context.Background()

	p := &model.Post{Text: "original", AuthorID: alice.ID}
	require.NoError(t, env.posts.Create(ctx, p))

	w := env.postForm("/posts/"+p.ID+"/edit/", url.Values{"text": {"hacked"}}, env.sessionCookie(t, bob.ID))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+p.ID+"/", w.Header().Get("Location"))

	got, err := env.posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Text)
}

func TestPostEditByAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	ctx := context.Background()

	p := &model.Post{Text: "original", AuthorID: alice.ID}
	require.NoError(t, env.posts.Create(ctx, p))

	w := env.postForm("/posts/"+p.ID+"/edit/", url.Values{"text": {"updated"}}, env.sessionCookie(t, alice.ID))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+p.ID+"/", w.Header().Get("Location"))

	got, err := env.posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Text)
	assert.EqualValues(t, 1, env.postCount(t))
}

func TestEditMissingPostRenders404(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	w := env.postForm("/posts/nope/edit/", url.Values{"text": {"x"}}, env.sessionCookie(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentCreateAndSilentDrop(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	ctx := context.Background()

	p := &model.Post{Text: "commentable", AuthorID: alice.ID}
	require.NoError(t, env.posts.Create(ctx, p))
	cookie := env.sessionCookie(t, bob.ID)

	// invalid comment: dropped without any signal, still redirected
	w := env.postForm("/posts/"+p.ID+"/comment/", url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+p.ID+"/", w.Header().Get("Location"))

	cnt, err := env.comments.CountByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cnt)

	// valid comment lands
	w = env.postForm("/posts/"+p.ID+"/comment/", url.Values{"text": {"nice"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	got, err := env.comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bob.ID, got[0].AuthorID)
}

func TestCommentOnMissingPostRenders404(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.postForm("/posts/nope/comment/", url.Values{"text": {"hello"}}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the 404 comes before validation, so an invalid comment gets it too
	w = env.postForm("/posts/nope/comment/", url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowAndUnfollowAreIdempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	cookie := env.sessionCookie(t, alice.ID)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		w := env.get("/profile/bob/follow/", cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/bob/", w.Header().Get("Location"))
	}
	cnt, err := env.follows.CountEdges(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)

	for i := 0; i < 2; i++ {
		w := env.get("/profile/bob/unfollow/", cookie)
		assert.Equal(t, http.StatusFound, w.Code)
	}
	cnt, err = env.follows.CountEdges(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cnt)
}

func TestSelfFollowCreatesNoEdge(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	cookie := env.sessionCookie(t, alice.ID)

	w := env.get("/profile/alice/follow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	cnt, err := env.follows.CountEdges(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cnt)
}

func TestFollowFeedRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/follow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Ffollow%2F", w.Header().Get("Location"))
}

func TestGroupFeedIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	ctx := context.Background()

	groupA := &model.Group{Title: "Group A", Slug: "group-a"}
	groupB := &model.Group{Title: "Group B", Slug: "group-b"}
	require.NoError(t, env.groups.Create(ctx, groupA))
	require.NoError(t, env.groups.Create(ctx, groupB))

	require.NoError(t, env.posts.Create(ctx, &model.Post{Text: "only in group A", AuthorID: alice.ID, GroupID: &groupA.ID}))
	require.NoError(t, env.posts.Create(ctx, &model.Post{Text: "only in group B", AuthorID: alice.ID, GroupID: &groupB.ID}))

	w := env.get("/group/group-b/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "only in group B")
	assert.NotContains(t, w.Body.String(), "only in group A")

	w = env.get("/group/missing/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexCacheServesStaleUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	ctx := context.Background()

	p := &model.Post{Text: "soon to be deleted", AuthorID: alice.ID}
	require.NoError(t, env.posts.Create(ctx, p))

	// first hit renders and caches page 1
	w := env.get("/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "soon to be deleted")

	require.NoError(t, env.posts.Delete(ctx, p.ID))

	// still served from cache after deletion
	w = env.get("/", nil)
	assert.Contains(t, w.Body.String(), "soon to be deleted")

	require.NoError(t, env.fragments.Invalidate(ctx, cache.IndexPageKey(1)))

	w = env.get("/", nil)
	assert.NotContains(t, w.Body.String(), "soon to be deleted")
}

func TestIndexCacheDoesNotCarrySessionNav(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	ctx := context.Background()

	require.NoError(t, env.posts.Create(ctx, &model.Post{Text: "shared feed post", AuthorID: alice.ID}))

	// bob warms the cache while logged in
	w := env.get("/", env.sessionCookie(t, bob.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log out")
	assert.Contains(t, w.Body.String(), `<a href="/profile/bob/">bob</a>`)

	// a guest hitting the warm cache gets the guest nav, not bob's
	w = env.get("/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shared feed post")
	assert.Contains(t, w.Body.String(), "Log in")
	assert.NotContains(t, w.Body.String(), "bob")

	// and a different user gets their own nav from the same cached fragment
	w = env.get("/", env.sessionCookie(t, alice.ID))
	assert.Contains(t, w.Body.String(), `<a href="/profile/alice/">alice</a>`)
	assert.Contains(t, w.Body.String(), "Log out")
	assert.NotContains(t, w.Body.String(), "bob")
}

func TestProfileUnknownUserRenders404(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/profile/ghost/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginHonorsNextParameter(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	w := env.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"sup3rsecret"},
		"next":     {"/create/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "session cookie should be set")
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	w := env.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"sup3rsecret"},
		"next":     {"https://evil.example.com/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginBadCredentialsRerenders(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	w := env.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")
}

func TestSignupDuplicateUsernameRerenders(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	w := env.postForm("/auth/signup/", url.Values{
		"username": {"alice"},
		"email":    {"second@example.com"},
		"password": {"sup3rsecret"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This username is taken.")
}

func TestAboutPages(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/about/author/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.get("/about/tech/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnmatchedRouteRenders404(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/no/such/page/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetailShowsComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	ctx := context.Background()

	p := &model.Post{Text: "discussed", AuthorID: alice.ID}
	require.NoError(t, env.posts.Create(ctx, p))
	require.NoError(t, env.comments.Create(ctx, &model.Comment{PostID: p.ID, AuthorID: alice.ID, Text: "first comment"}))

	w := env.get("/posts/"+p.ID+"/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "discussed")
	assert.Contains(t, w.Body.String(), "first comment")

	w = env.get("/posts/missing/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
