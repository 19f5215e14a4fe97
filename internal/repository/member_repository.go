package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/chamahub/chama-engine/internal/domain"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, memberID int64) (*domain.Member, error) {
	query := `
		SELECT id, chama_id, name, joined_at
		FROM members
		WHERE id = $1
	`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, memberID); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByChamaID(ctx context.Context, chamaID int64) ([]*domain.Member, error) {
	query := `
		SELECT id, chama_id, name, joined_at
		FROM members
		WHERE chama_id = $1
		ORDER BY joined_at, id
	`

	var members []*domain.Member
	if err := r.db.SelectContext(ctx, &members, query, chamaID); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) ExistsInChama(ctx context.Context, memberID, chamaID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1 AND chama_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, memberID, chamaID); err != nil {
		return false, err
	}

	return exists, nil
}
