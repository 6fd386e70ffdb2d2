package auth

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store contract. Email uniqueness is enforced by
// the users table constraint; this layer translates the driver's rejection
// into a conflict error. The generic repository stays an implementation
// detail: its GetByID takes select criteria, ours takes the raw path id.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users           = (*users)(nil)
	_ CredentialStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	email = strings.TrimSpace(email)

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id,
			})
	}

	record := &User{}
	err = tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	created, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return created, nil
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.TrimSpace(user.Email)
}
