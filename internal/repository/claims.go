package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
)

var (
	ErrAlreadyClaimed = errors.New("已经认领过该班次")
	ErrShiftFull      = errors.New("该班次的认领名额已满")
)

// ClaimShift 在一个事务内完成名额检查和插入。
// 先用 FOR UPDATE 锁住班次行，保证并发认领时不会超出 max_claims，
// 联合主键则兜底保证同一用户不会重复认领。
func (r *Repository) ClaimShift(userID int64, shiftID string) (*domain.ShiftClaim, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住班次行，没有对应的行则说明班次不存在
	var maxClaims int32
	query := `SELECT max_claims FROM shifts WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, shiftID).Scan(&maxClaims); err != nil {
		return nil, err
	}

	var alreadyClaimed bool
	query = `SELECT EXISTS (SELECT 1 FROM shift_claims WHERE user_id = $1 AND shift_id = $2)`
	if err := tx.QueryRowContext(ctx, query, userID, shiftID).Scan(&alreadyClaimed); err != nil {
		return nil, err
	}
	if alreadyClaimed {
		return nil, ErrAlreadyClaimed
	}

	var count int32
	query = `SELECT COUNT(*) FROM shift_claims WHERE shift_id = $1`
	if err := tx.QueryRowContext(ctx, query, shiftID).Scan(&count); err != nil {
		return nil, err
	}
	if count >= maxClaims {
		return nil, ErrShiftFull
	}

	claim := &domain.ShiftClaim{
		UserID:  userID,
		ShiftID: shiftID,
	}

	query = `
		INSERT INTO shift_claims (user_id, shift_id)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query, userID, shiftID).Scan(&claim.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_claims_pkey" {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return claim, nil
}

// RemoveClaim 删除认领记录，认领记录不存在时也视为成功
func (r *Repository) RemoveClaim(userID int64, shiftID string) error {
	query := `
		DELETE FROM shift_claims WHERE user_id = $1 AND shift_id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, userID, shiftID); err != nil {
		return err
	}

	return nil
}

// GetShiftClaims 返回某个班次的所有认领记录以及认领人的公开信息
func (r *Repository) GetShiftClaims(shiftID string) ([]*domain.ShiftClaimWithUser, error) {
	query := `
		SELECT sc.user_id, sc.shift_id, sc.created_at, u.full_name, u.email
		FROM shift_claims sc
		JOIN users u ON u.id = sc.user_id
		WHERE sc.shift_id = $1
		ORDER BY sc.created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]*domain.ShiftClaimWithUser, 0)
	for rows.Next() {
		claim := &domain.ShiftClaimWithUser{}
		dst := []any{&claim.UserID, &claim.ShiftID, &claim.CreatedAt, &claim.FullName, &claim.Email}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return claims, nil
}

// GetUserClaimedShifts 返回某个用户认领的一页班次以及其认领的班次总数，
// 按认领时间排序，保证各页拼起来正好是完整的集合
func (r *Repository) GetUserClaimedShifts(userID int64, page int, limit int) ([]*domain.ClaimedShift, int, error) {
	query := `
		SELECT
			s.id, s.name, s.start_time, s.end_time, s.max_claims, s.created_at,
			(SELECT COUNT(*) FROM shift_claims c WHERE c.shift_id = s.id) AS claims_count,
			sc.user_id, sc.shift_id, sc.created_at
		FROM shift_claims sc
		JOIN shifts s ON s.id = sc.shift_id
		WHERE sc.user_id = $1
		ORDER BY sc.created_at, sc.shift_id
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	claimedShifts := make([]*domain.ClaimedShift, 0)
	for rows.Next() {
		cs := &domain.ClaimedShift{}
		dst := []any{
			&cs.ID, &cs.Name, &cs.Start, &cs.End, &cs.MaxClaims, &cs.CreatedAt,
			&cs.ClaimsCount,
			&cs.Claim.UserID, &cs.Claim.ShiftID, &cs.Claim.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		claimedShifts = append(claimedShifts, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total := 0
	countQuery := `SELECT COUNT(*) FROM shift_claims WHERE user_id = $1`
	if err := r.dbpool.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return claimedShifts, total, nil
}
