package devlink

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterPostsRoutes mounts the posts resource. Every route is private.
func RegisterPostsRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...PostsControllerOption) {
	controller := NewPostsController(opts...)

	app.Post("/api/posts", controller.Create, protected).SetName("posts.create")
	app.Get("/api/posts", controller.List, protected).SetName("posts.list")
	app.Get("/api/posts/:id", controller.Get, protected).SetName("posts.get")
	app.Delete("/api/posts/:id", controller.Delete, protected).SetName("posts.delete")
	app.Put("/api/posts/like/:id", controller.Like, protected).SetName("posts.like")
	app.Put("/api/posts/unlike/:id", controller.Unlike, protected).SetName("posts.unlike")
	app.Post("/api/posts/comment/:id", controller.Comment, protected).SetName("posts.comment")
	app.Delete("/api/posts/comment/:id/:comment_id", controller.DeleteComment, protected).SetName("posts.comment.delete")
}

type PostsController struct {
	Logger     Logger
	Repo       RepositoryManager
	ContextKey string
}

type PostsControllerOption func(*PostsController) *PostsController

func NewPostsController(opts ...PostsControllerOption) *PostsController {
	c := &PostsController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in posts controller...")
	}

	return c
}

func WithPostsLogger(logger Logger) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Logger = logger
		return c
	}
}

func WithPostsRepo(repo RepositoryManager) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Repo = repo
		return c
	}
}

func WithPostsContextKey(key string) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.ContextKey = key
		return c
	}
}

// PostPayload is the create-post and create-comment request body.
type PostPayload struct {
	Text string `json:"text"`
}

// Validate will run validation rules
func (r PostPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Text,
			validation.Required.Error("Text is required"),
		),
	)
}

// Create publishes a post. Author name and avatar are copied onto the post
// at creation time.
func (a *PostsController) Create(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	payload := new(PostPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("post create parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), userID.String())
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	now := time.Now()
	post := &Post{
		UserID: userID,
		Name:   user.Name,
		Avatar: user.Avatar,
		Text:   payload.Text,
		Date:   &now,
	}

	post, err = a.Repo.Posts().Save(ctx.Context(), post)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post)
}

// List returns every post, most recent first.
func (a *PostsController) List(ctx router.Context) error {
	posts, err := a.Repo.Posts().List(ctx.Context())
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, posts)
}

// Get returns one post by id.
func (a *PostsController) Get(ctx router.Context) error {
	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post)
}

// Delete removes a post. Only the author may delete it.
func (a *PostsController) Delete(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	if !post.IsOwner(userID) {
		return WriteError(ctx, a.Logger, ErrNotAuthorized)
	}

	if err := a.Repo.Posts().DeleteByID(ctx.Context(), post.ID); err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Msg: "Post removed"})
}

// Like records the caller's like, at most one per post, and returns the
// likes list.
func (a *PostsController) Like(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	if !post.AddLike(userID) {
		return WriteError(ctx, a.Logger, ErrAlreadyLiked)
	}

	if post, err = a.Repo.Posts().Save(ctx.Context(), post); err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post.Likes)
}

// Unlike removes the caller's like and returns the likes list.
func (a *PostsController) Unlike(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	if !post.RemoveLike(userID) {
		return WriteError(ctx, a.Logger, ErrNotYetLiked)
	}

	if post, err = a.Repo.Posts().Save(ctx.Context(), post); err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post.Likes)
}

// Comment adds a comment at the head of the list and returns the comments
// list.
func (a *PostsController) Comment(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	payload := new(PostPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("comment parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), userID.String())
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	post.AddComment(Comment{
		ID:     uuid.New(),
		UserID: userID,
		Name:   user.Name,
		Avatar: user.Avatar,
		Text:   payload.Text,
		Date:   time.Now(),
	})

	if post, err = a.Repo.Posts().Save(ctx.Context(), post); err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post.Comments)
}

// DeleteComment removes a comment. Only the comment author may remove it.
func (a *PostsController) DeleteComment(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	post, err := a.loadPost(ctx)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	commentID, err := uuid.Parse(ctx.Param("comment_id", ""))
	if err != nil {
		return WriteError(ctx, a.Logger, ErrCommentNotFound)
	}

	comment, ok := post.FindComment(commentID)
	if !ok {
		return WriteError(ctx, a.Logger, ErrCommentNotFound)
	}

	if comment.UserID != userID {
		return WriteError(ctx, a.Logger, ErrNotAuthorized)
	}

	post.RemoveComment(commentID)

	if post, err = a.Repo.Posts().Save(ctx.Context(), post); err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, post.Comments)
}

func (a *PostsController) loadPost(ctx router.Context) (*Post, error) {
	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return nil, ErrPostNotFound
	}

	post, err := a.Repo.Posts().GetByPostID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return post, nil
}
