package components

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-pagebuilder/internal/identity"
)

// SeedResult summarises a Seed run.
type SeedResult struct {
	Created int
	Updated int
}

// Seed upserts defs into repo keyed by component type. Row ids are derived
// from the type so repeated seeding against fresh stores yields the same ids.
func Seed(ctx context.Context, repo DefinitionRepository, defs []*Definition, now func() time.Time) (SeedResult, error) {
	if now == nil {
		now = time.Now
	}
	var result SeedResult
	for _, def := range defs {
		if err := ValidateDefinition(def); err != nil {
			return result, err
		}
		record := cloneDefinition(def)
		record.Type = NormalizeType(record.Type)
		stamp := now().UTC()

		existing, err := repo.GetByType(ctx, record.Type)
		if err != nil {
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				return result, err
			}
			record.ID = identity.ComponentDefinitionUUID(record.Type)
			record.CreatedAt = stamp
			record.UpdatedAt = stamp
			if _, err := repo.Create(ctx, record); err != nil {
				return result, err
			}
			result.Created++
			continue
		}

		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = stamp
		if _, err := repo.Update(ctx, record); err != nil {
			return result, err
		}
		result.Updated++
	}
	return result, nil
}
