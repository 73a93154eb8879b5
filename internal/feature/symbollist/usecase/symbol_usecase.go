// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"portfolio_backend/internal/feature/symbollist/domain/entity"
)

// SearchLimit is the maximum number of matches returned by a search.
const SearchLimit = 20

// SymbolUsecase provides search over the in-memory directory.
type SymbolUsecase struct {
	dir *entity.Directory
}

// NewSymbolUsecase creates a new SymbolUsecase over the given directory.
func NewSymbolUsecase(dir *entity.Directory) *SymbolUsecase {
	return &SymbolUsecase{dir: dir}
}

// Search returns up to SearchLimit symbols whose name or code contains query.
func (u *SymbolUsecase) Search(ctx context.Context, query string) ([]entity.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return u.dir.Search(query, SearchLimit), nil
}
