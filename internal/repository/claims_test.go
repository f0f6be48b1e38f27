package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/config"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// newTestRepository 连接 TEST_DATABASE_DSN 指定的数据库并清空相关表。
// 没有设置 TEST_DATABASE_DSN 时跳过集成测试
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过集成测试")
	}

	dbpool, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbpool.Close()
	})

	require.NoError(t, RunMigrations(dbpool))

	_, err = dbpool.Exec(`TRUNCATE shift_claims, shifts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, dbpool)
}

func createTestUser(t *testing.T, repo *Repository, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		FullName:     "测试用户" + username,
		Email:        username + "@example.com",
		Role:         domain.RoleMember,
	}
	require.NoError(t, repo.CreateUser(user))

	return user
}

func createTestShift(t *testing.T, repo *Repository, name string, start time.Time, maxClaims int32) *domain.Shift {
	t.Helper()

	shift := &domain.Shift{
		Name:      name,
		Start:     start,
		End:       start.Add(2 * time.Hour),
		MaxClaims: maxClaims,
	}
	require.NoError(t, repo.CreateShift(shift))

	return shift
}

func TestClaimShift_NotFound(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "zhangsan1")

	_, err := repo.ClaimShift(user.ID, uuid.New().String())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestClaimShift_Duplicate(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "zhangsan1")
	shift := createTestShift(t, repo, "白班", time.Now().Add(24*time.Hour), 5)

	claim, err := repo.ClaimShift(user.ID, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claim.UserID)
	assert.Equal(t, shift.ID, claim.ShiftID)
	assert.False(t, claim.CreatedAt.IsZero())

	// 第二次认领必须失败，且认领数量不变
	_, err = repo.ClaimShift(user.ID, shift.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	got, err := repo.GetShiftByID(shift.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ClaimsCount)
}

func TestClaimShift_CapacityScenario(t *testing.T) {
	repo := newTestRepository(t)
	userA := createTestUser(t, repo, "zhangsan1")
	userB := createTestUser(t, repo, "lisi2")
	shift := createTestShift(t, repo, "夜班", time.Now().Add(24*time.Hour), 1)

	// A 认领成功
	_, err := repo.ClaimShift(userA.ID, shift.ID)
	require.NoError(t, err)

	got, err := repo.GetShiftByID(shift.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ClaimsCount)

	// B 认领失败，名额已满
	_, err = repo.ClaimShift(userB.ID, shift.ID)
	assert.ErrorIs(t, err, ErrShiftFull)

	// A 取消认领后 B 可以认领
	require.NoError(t, repo.RemoveClaim(userA.ID, shift.ID))

	_, err = repo.ClaimShift(userB.ID, shift.ID)
	require.NoError(t, err)

	got, err = repo.GetShiftByID(shift.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ClaimsCount)
}

func TestRemoveClaim_Idempotent(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "zhangsan1")
	shift := createTestShift(t, repo, "白班", time.Now().Add(24*time.Hour), 1)

	// 认领记录不存在时删除也视为成功
	require.NoError(t, repo.RemoveClaim(user.ID, shift.ID))

	_, err := repo.ClaimShift(user.ID, shift.ID)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveClaim(user.ID, shift.ID))
	require.NoError(t, repo.RemoveClaim(user.ID, shift.ID))

	got, err := repo.GetShiftByID(shift.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.ClaimsCount)
}

// 并发认领只剩一个名额的班次，必须只有一个人成功
func TestClaimShift_Concurrent(t *testing.T) {
	repo := newTestRepository(t)
	shift := createTestShift(t, repo, "抢手的班次", time.Now().Add(24*time.Hour), 1)

	const n = 8
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = createTestUser(t, repo, fmt.Sprintf("user%d", i))
	}

	errs := make([]error, n)
	wg := sync.WaitGroup{}
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.ClaimShift(users[i].ID, shift.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrShiftFull), errors.Is(err, ErrAlreadyClaimed):
		default:
			t.Fatalf("出现预期之外的错误: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := repo.GetShiftByID(shift.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ClaimsCount)
}

func TestGetUserClaimedShifts_Pagination(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "zhangsan1")

	const total = 7
	for i := 0; i < total; i++ {
		shift := createTestShift(t, repo, fmt.Sprintf("班次%d", i), time.Now().Add(time.Duration(i+1)*time.Hour), 3)
		_, err := repo.ClaimShift(user.ID, shift.ID)
		require.NoError(t, err)
	}

	// 各页拼起来应该正好是完整的集合，没有重复
	seen := map[string]bool{}
	const limit = 3
	for page := 1; page <= 3; page++ {
		claimedShifts, gotTotal, err := repo.GetUserClaimedShifts(user.ID, page, limit)
		require.NoError(t, err)
		assert.Equal(t, total, gotTotal)

		for _, cs := range claimedShifts {
			assert.False(t, seen[cs.ID], "班次 %s 出现在多个分页中", cs.ID)
			seen[cs.ID] = true
			assert.Equal(t, user.ID, cs.Claim.UserID)
			assert.Equal(t, cs.ID, cs.Claim.ShiftID)
		}
	}
	assert.Len(t, seen, total)
}
