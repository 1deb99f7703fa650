package devlink

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ownerColumns limits the joined owner record to the public fields the API
// exposes next to a profile or post.
func ownerColumns(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Column("id", "name", "avatar")
}

type Profiles interface {
	repository.Repository[*Profile]

	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Profile, error)
	Save(ctx context.Context, profile *Profile) (*Profile, error)
	SaveTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profiles)(nil)
	_ repository.Repository[*Profile] = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (a *profiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return a.GetByUserIDTx(ctx, a.db, userID)
}

func (a *profiles) GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := tx.NewSelect().
		Model(record).
		Relation("User", ownerColumns).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *profiles) List(ctx context.Context) ([]*Profile, error) {
	return a.ListTx(ctx, a.db)
}

func (a *profiles) ListTx(ctx context.Context, tx bun.IDB) ([]*Profile, error) {
	records := []*Profile{}
	err := tx.NewSelect().
		Model(&records).
		Relation("User", ownerColumns).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Save persists the profile document, creating it on first write. List
// mutations go through here so every write replaces the whole row.
func (a *profiles) Save(ctx context.Context, profile *Profile) (*Profile, error) {
	return a.SaveTx(ctx, a.db, profile)
}

func (a *profiles) SaveTx(ctx context.Context, tx bun.IDB, profile *Profile) (*Profile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
		return a.Repository.CreateTx(ctx, tx, profile)
	}

	_, err := tx.NewUpdate().
		Model(profile).
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (a *profiles) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return a.DeleteByUserIDTx(ctx, a.db, userID)
}

func (a *profiles) DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Profile)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}
