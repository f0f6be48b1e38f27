package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
)

func (r *Repository) CreateShift(shift *domain.Shift) error {
	shift.ID = uuid.New().String()

	query := `
		INSERT INTO shifts (id, name, start_time, end_time, max_claims)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.ID, shift.Name, shift.Start, shift.End, shift.MaxClaims}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id string) (*domain.Shift, error) {
	query := `
		SELECT name, start_time, end_time, max_claims, created_at,
			(SELECT COUNT(*) FROM shift_claims sc WHERE sc.shift_id = s.id) AS claims_count
		FROM shifts s
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{&shift.Name, &shift.Start, &shift.End, &shift.MaxClaims, &shift.CreatedAt, &shift.ClaimsCount}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

// GetShifts 返回按开始时间升序排列的一页班次以及满足条件的班次总数
func (r *Repository) GetShifts(page int, limit int) ([]*domain.Shift, int, error) {
	query := `
		SELECT id, name, start_time, end_time, max_claims, created_at,
			(SELECT COUNT(*) FROM shift_claims sc WHERE sc.shift_id = s.id) AS claims_count
		FROM shifts s
		ORDER BY start_time
		LIMIT $1 OFFSET $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		dst := []any{&shift.ID, &shift.Name, &shift.Start, &shift.End, &shift.MaxClaims, &shift.CreatedAt, &shift.ClaimsCount}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total := 0
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM shifts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// GetShiftsWithinWindow 和 GetShifts 一样，但只返回开始时间落在 [from, to) 内的班次
func (r *Repository) GetShiftsWithinWindow(from time.Time, to time.Time, page int, limit int) ([]*domain.Shift, int, error) {
	query := `
		SELECT id, name, start_time, end_time, max_claims, created_at,
			(SELECT COUNT(*) FROM shift_claims sc WHERE sc.shift_id = s.id) AS claims_count
		FROM shifts s
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time
		LIMIT $3 OFFSET $4
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		dst := []any{&shift.ID, &shift.Name, &shift.Start, &shift.End, &shift.MaxClaims, &shift.CreatedAt, &shift.ClaimsCount}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total := 0
	countQuery := `SELECT COUNT(*) FROM shifts WHERE start_time >= $1 AND start_time < $2`
	if err := r.dbpool.QueryRowContext(ctx, countQuery, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// DeleteShift 删除班次，关联的认领记录由外键级联删除
func (r *Repository) DeleteShift(id string) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
