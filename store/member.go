package store

import (
	"context"

	"github.com/kevinaaaquil/library/backend/models"
)

func LoadMembers(ctx context.Context, s Store) ([]models.Member, string, error) {
	return Load[models.Member](ctx, s, Members)
}

func MembersWrite(members []models.Member, ifMatch string) (Write, error) {
	return NewWrite(Members, members, ifMatch)
}
