package devlink

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// fakeUsers overrides the repository methods the code under test touches.
// Anything else panics, which is a test bug, not a production path.
type fakeUsers struct {
	Users
	getByEmail      func(ctx context.Context, email string) (*User, error)
	register        func(ctx context.Context, user *User) (*User, error)
	getByIdentifier func(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
	deleteByIDTx    func(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUsers) Register(ctx context.Context, user *User) (*User, error) {
	return f.register(ctx, user)
}

func (f *fakeUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	return f.getByIdentifier(ctx, identifier, criteria...)
}

func (f *fakeUsers) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return f.deleteByIDTx(ctx, tx, id)
}

type fakeProfiles struct {
	Profiles
	getByUserID      func(ctx context.Context, userID uuid.UUID) (*Profile, error)
	list             func(ctx context.Context) ([]*Profile, error)
	save             func(ctx context.Context, profile *Profile) (*Profile, error)
	deleteByUserIDTx func(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return f.getByUserID(ctx, userID)
}

func (f *fakeProfiles) List(ctx context.Context) ([]*Profile, error) {
	return f.list(ctx)
}

func (f *fakeProfiles) Save(ctx context.Context, profile *Profile) (*Profile, error) {
	return f.save(ctx, profile)
}

func (f *fakeProfiles) DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	return f.deleteByUserIDTx(ctx, tx, userID)
}

type fakePosts struct {
	Posts
	getByPostID      func(ctx context.Context, id uuid.UUID) (*Post, error)
	list             func(ctx context.Context) ([]*Post, error)
	save             func(ctx context.Context, post *Post) (*Post, error)
	deleteByID       func(ctx context.Context, id uuid.UUID) error
	deleteByUserIDTx func(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

func (f *fakePosts) GetByPostID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return f.getByPostID(ctx, id)
}

func (f *fakePosts) List(ctx context.Context) ([]*Post, error) {
	return f.list(ctx)
}

func (f *fakePosts) Save(ctx context.Context, post *Post) (*Post, error) {
	return f.save(ctx, post)
}

func (f *fakePosts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return f.deleteByID(ctx, id)
}

func (f *fakePosts) DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	return f.deleteByUserIDTx(ctx, tx, userID)
}

type fakeRepoManager struct {
	users    Users
	profiles Profiles
	posts    Posts
}

func (f *fakeRepoManager) Validate() error { return nil }
func (f *fakeRepoManager) MustValidate()   {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepoManager) Users() Users       { return f.users }
func (f *fakeRepoManager) Profiles() Profiles { return f.profiles }
func (f *fakeRepoManager) Posts() Posts       { return f.posts }

func notFound() error {
	return repository.NewRecordNotFound()
}
