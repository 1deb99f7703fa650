package devlink

import (
	"context"
	"database/sql"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepoLister fetches the public repositories of a GitHub account.
type RepoLister interface {
	ListRepos(ctx context.Context, username string) (any, error)
}

// RegisterProfileRoutes mounts the profile resource. Listing and lookups are
// public, everything that writes runs behind the token middleware.
func RegisterProfileRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...ProfileControllerOption) {
	controller := NewProfileController(opts...)

	app.Get("/api/profile/me", controller.Me, protected).SetName("profile.me")
	app.Post("/api/profile", controller.Upsert, protected).SetName("profile.upsert")
	app.Get("/api/profile", controller.List).SetName("profile.list")
	app.Get("/api/profile/user/:user_id", controller.ByUser).SetName("profile.by-user")
	app.Delete("/api/profile", controller.DeleteAccount, protected).SetName("profile.delete-account")
	app.Put("/api/profile/experience", controller.AddExperience, protected).SetName("profile.experience.add")
	app.Delete("/api/profile/experience/:exp_id", controller.DeleteExperience, protected).SetName("profile.experience.delete")
	app.Put("/api/profile/education", controller.AddEducation, protected).SetName("profile.education.add")
	app.Delete("/api/profile/education/:edu_id", controller.DeleteEducation, protected).SetName("profile.education.delete")
	app.Get("/api/profile/github/:username", controller.GithubRepos).SetName("profile.github")
}

type ProfileController struct {
	Logger     Logger
	Repo       RepositoryManager
	Github     RepoLister
	ContextKey string
}

type ProfileControllerOption func(*ProfileController) *ProfileController

func NewProfileController(opts ...ProfileControllerOption) *ProfileController {
	c := &ProfileController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in profile controller...")
	}

	return c
}

func WithProfileLogger(logger Logger) ProfileControllerOption {
	return func(c *ProfileController) *ProfileController {
		c.Logger = logger
		return c
	}
}

func WithProfileRepo(repo RepositoryManager) ProfileControllerOption {
	return func(c *ProfileController) *ProfileController {
		c.Repo = repo
		return c
	}
}

func WithProfileGithub(lister RepoLister) ProfileControllerOption {
	return func(c *ProfileController) *ProfileController {
		c.Github = lister
		return c
	}
}

func WithProfileContextKey(key string) ProfileControllerOption {
	return func(c *ProfileController) *ProfileController {
		c.ContextKey = key
		return c
	}
}

// Me returns the authenticated user's profile with the owner's public
// fields joined in. A user without a profile is an expected state for the
// client, it reports a 400 with a descriptive message.
func (a *ProfileController) Me(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	profile, err := a.Repo.Profiles().GetByUserID(ctx.Context(), userID)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return WriteError(ctx, a.Logger, ErrNoProfileForUser)
		}
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profile)
}

// ProfilePayload is the create-or-update request body. Skills arrive as a
// comma separated string and are stored as a trimmed ordered list.
type ProfilePayload struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Validate will run validation rules
func (r ProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Status,
			validation.Required.Error("Status is required"),
		),
		validation.Field(
			&r.Skills,
			validation.Required.Error("Skills is required"),
		),
	)
}

// SkillList splits the comma separated skills string, dropping empty items.
func (r ProfilePayload) SkillList() []string {
	parts := strings.Split(r.Skills, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Upsert creates the caller's profile on first write and updates it after.
// Experience and education lists are untouched, they have their own
// endpoints.
func (a *ProfileController) Upsert(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	payload := new(ProfilePayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile upsert parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	profile, err := a.Repo.Profiles().GetByUserID(ctx.Context(), userID)
	if err != nil {
		if !repository.IsRecordNotFound(err) && !errors.IsNotFound(err) {
			return WriteError(ctx, a.Logger, err)
		}
		profile = &Profile{UserID: userID}
	}

	profile.Company = payload.Company
	profile.Website = payload.Website
	profile.Location = payload.Location
	profile.Status = payload.Status
	profile.Skills = payload.SkillList()
	profile.Bio = payload.Bio
	profile.GithubUsername = payload.GithubUsername
	profile.Social = SocialLinks{
		Youtube:   payload.Youtube,
		Twitter:   payload.Twitter,
		Facebook:  payload.Facebook,
		Linkedin:  payload.Linkedin,
		Instagram: payload.Instagram,
	}

	profile, err = a.Repo.Profiles().Save(ctx.Context(), profile)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profile)
}

// List returns every profile with the owner's public fields.
func (a *ProfileController) List(ctx router.Context) error {
	profiles, err := a.Repo.Profiles().List(ctx.Context())
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profiles)
}

// ByUser returns the profile owned by the given user id. An unparseable id
// reports the same not found response as an unknown one.
func (a *ProfileController) ByUser(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("user_id", ""))
	if err != nil {
		return WriteError(ctx, a.Logger, ErrProfileNotFound)
	}

	profile, err := a.Repo.Profiles().GetByUserID(ctx.Context(), userID)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return WriteError(ctx, a.Logger, ErrProfileNotFound)
		}
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profile)
}

// DeleteAccount removes the caller's posts, profile and account in one
// transaction.
func (a *ProfileController) DeleteAccount(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	err = a.Repo.RunInTx(ctx.Context(), &sql.TxOptions{}, func(c context.Context, tx bun.Tx) error {
		if err := a.Repo.Posts().DeleteByUserIDTx(c, tx, userID); err != nil {
			return err
		}
		if err := a.Repo.Profiles().DeleteByUserIDTx(c, tx, userID); err != nil {
			return err
		}
		return a.Repo.Users().DeleteByIDTx(c, tx, userID)
	})
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Msg: "User deleted"})
}

// ExperiencePayload is the add-experience request body.
type ExperiencePayload struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Validate will run validation rules
func (r ExperiencePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Title,
			validation.Required.Error("Title is required"),
		),
		validation.Field(
			&r.Company,
			validation.Required.Error("Company is required"),
		),
		validation.Field(
			&r.From,
			validation.Required.Error("From date is required"),
		),
	)
}

// AddExperience inserts a new entry at the head of the caller's experience
// list and returns the full profile.
func (a *ProfileController) AddExperience(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	payload := new(ExperiencePayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("experience parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	profile, err := a.loadOwnProfile(ctx, userID)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	profile.AddExperience(Experience{
		ID:          uuid.New(),
		Title:       payload.Title,
		Company:     payload.Company,
		Location:    payload.Location,
		From:        payload.From,
		To:          payload.To,
		Current:     payload.Current,
		Description: payload.Description,
	})

	profile, err = a.Repo.Profiles().Save(ctx.Context(), profile)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profile)
}

// DeleteExperience removes the entry with the given id. Deleting an absent
// entry still returns the profile, the operation is idempotent.
func (a *ProfileController) DeleteExperience(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	profile, err := a.loadOwnProfile(ctx, userID)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	if expID, err := uuid.Parse(ctx.Param("exp_id", "")); err == nil {
		if profile.RemoveExperience(expID) {
			if profile, err = a.Repo.Profiles().Save(ctx.Context(), profile); err != nil {
				return WriteError(ctx, a.Logger, err)
			}
		}
	}

	return ctx.JSON(router.StatusOK, profile)
}

// EducationPayload is the add-education request body.
type EducationPayload struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Validate will run validation rules
func (r EducationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.School,
			validation.Required.Error("School is required"),
		),
		validation.Field(
			&r.Degree,
			validation.Required.Error("Degree is required"),
		),
		validation.Field(
			&r.FieldOfStudy,
			validation.Required.Error("Field of study is required"),
		),
		validation.Field(
			&r.From,
			validation.Required.Error("From date is required"),
		),
	)
}

// AddEducation inserts a new entry at the head of the caller's education
// list and returns the full profile.
func (a *ProfileController) AddEducation(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	payload := new(EducationPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("education parse payload", "error", err)
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, WrapValidationErrors(err))
	}

	profile, err := a.loadOwnProfile(ctx, userID)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	profile.AddEducation(Education{
		ID:           uuid.New(),
		School:       payload.School,
		Degree:       payload.Degree,
		FieldOfStudy: payload.FieldOfStudy,
		From:         payload.From,
		To:           payload.To,
		Current:      payload.Current,
		Description:  payload.Description,
	})

	profile, err = a.Repo.Profiles().Save(ctx.Context(), profile)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	return ctx.JSON(router.StatusOK, profile)
}

// DeleteEducation removes the entry with the given id, idempotent like the
// experience delete.
func (a *ProfileController) DeleteEducation(ctx router.Context) error {
	userID, err := CurrentUserID(ctx, a.ContextKey)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	profile, err := a.loadOwnProfile(ctx, userID)
	if err != nil {
		return WriteError(ctx, a.Logger, err)
	}

	if eduID, err := uuid.Parse(ctx.Param("edu_id", "")); err == nil {
		if profile.RemoveEducation(eduID) {
			if profile, err = a.Repo.Profiles().Save(ctx.Context(), profile); err != nil {
				return WriteError(ctx, a.Logger, err)
			}
		}
	}

	return ctx.JSON(router.StatusOK, profile)
}

// GithubRepos proxies the GitHub repository listing for a username. Any
// upstream failure reports the same not found response, the client cannot
// tell an unknown user from a rate limited call.
func (a *ProfileController) GithubRepos(ctx router.Context) error {
	if a.Github == nil {
		return WriteError(ctx, a.Logger, ErrNoGithubProfile)
	}

	repos, err := a.Github.ListRepos(ctx.Context(), ctx.Param("username", ""))
	if err != nil {
		a.Logger.Error("github repos lookup", "error", err)
		return WriteError(ctx, a.Logger, ErrNoGithubProfile)
	}

	return ctx.JSON(router.StatusOK, repos)
}

func (a *ProfileController) loadOwnProfile(ctx router.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := a.Repo.Profiles().GetByUserID(ctx.Context(), userID)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return nil, ErrNoProfileForUser
		}
		return nil, err
	}
	return profile, nil
}
