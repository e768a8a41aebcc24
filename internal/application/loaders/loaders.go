package loaders

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the request-scoped batch loaders
type Loaders struct {
	UserLoader     *dataloader.Loader[string, *entities.User]
	TrainingLoader *dataloader.Loader[string, *entities.TrainingProgram]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(userRepo repositories.UserRepository, trainingRepo repositories.TrainingRepository) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.User] {
			users, err := userRepo.GetByIDs(ctx, keys)
			return collect(keys, users, err, func(u *entities.User) string { return u.ID }, "user not found")
		}),
		TrainingLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.TrainingProgram] {
			programs, err := trainingRepo.GetByIDs(ctx, keys)
			return collect(keys, programs, err, func(p *entities.TrainingProgram) string { return p.ID }, "training not found")
		}),
	}
}

func collect[V any](keys []string, values []V, err error, id func(V) string, notFound string) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))

	byID := make(map[string]V, len(values))
	if err == nil {
		for _, v := range values {
			byID[id(v)] = v
		}
	}

	for i, key := range keys {
		if err != nil {
			results[i] = &dataloader.Result[V]{Error: err}
		} else if v, ok := byID[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Error: apperrors.NewNotFoundError(notFound)}
		}
	}
	return results
}

// LoadFound resolves keys through the loader in one batch and keeps the
// values that exist, in key order. Missing keys are skipped; any other
// failure is returned.
func LoadFound[V any](ctx context.Context, loader *dataloader.Loader[string, V], keys []string) ([]V, error) {
	thunks := make([]dataloader.Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = loader.Load(ctx, key)
	}

	found := make([]V, 0, len(keys))
	for _, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		found = append(found, v)
	}
	return found, nil
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request so batching and
// memoization never outlive it
func Middleware(userRepo repositories.UserRepository, trainingRepo repositories.TrainingRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(userRepo, trainingRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
