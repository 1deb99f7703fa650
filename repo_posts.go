package devlink

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Posts interface {
	repository.Repository[*Post]

	GetByPostID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetByPostIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Post, error)
	Save(ctx context.Context, post *Post) (*Post, error)
	SaveTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var (
	_ Posts                        = (*posts)(nil)
	_ repository.Repository[*Post] = (*posts)(nil)
)

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (a *posts) GetByPostID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return a.GetByPostIDTx(ctx, a.db, id)
}

func (a *posts) GetByPostIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *posts) List(ctx context.Context) ([]*Post, error) {
	return a.ListTx(ctx, a.db)
}

func (a *posts) ListTx(ctx context.Context, tx bun.IDB) ([]*Post, error) {
	records := []*Post{}
	err := tx.NewSelect().
		Model(&records).
		Order("date DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Save persists the post document. Like and comment mutations rewrite the
// whole row, the row is the unit of atomicity.
func (a *posts) Save(ctx context.Context, post *Post) (*Post, error) {
	return a.SaveTx(ctx, a.db, post)
}

func (a *posts) SaveTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
		return a.Repository.CreateTx(ctx, tx, post)
	}

	_, err := tx.NewUpdate().
		Model(post).
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return post, nil
}

func (a *posts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *posts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (a *posts) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return a.DeleteByUserIDTx(ctx, a.db, userID)
}

func (a *posts) DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}
