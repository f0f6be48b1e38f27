package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetShiftsWithinWindow(t *testing.T) {
	repo := newTestRepository(t)

	now := time.Now()
	past := createTestShift(t, repo, "已经开始的班次", now.Add(-time.Hour), 1)
	inWindow := createTestShift(t, repo, "一周内的班次", now.Add(3*24*time.Hour), 1)
	beyondWindow := createTestShift(t, repo, "一周后的班次", now.Add(8*24*time.Hour), 1)

	shifts, total, err := repo.GetShiftsWithinWindow(now, now.Add(7*24*time.Hour), 1, 10)
	require.NoError(t, err)

	// 窗口外的班次不能出现在普通用户的列表里
	assert.Equal(t, 1, total)
	require.Len(t, shifts, 1)
	assert.Equal(t, inWindow.ID, shifts[0].ID)

	// 不加窗口则能看到全部
	shifts, total, err = repo.GetShifts(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, shifts, 3)

	// 按开始时间升序
	assert.Equal(t, past.ID, shifts[0].ID)
	assert.Equal(t, inWindow.ID, shifts[1].ID)
	assert.Equal(t, beyondWindow.ID, shifts[2].ID)
}

func TestGetShifts_Pagination(t *testing.T) {
	repo := newTestRepository(t)

	const total = 25
	for i := 0; i < total; i++ {
		createTestShift(t, repo, fmt.Sprintf("班次%d", i), time.Now().Add(time.Duration(i)*time.Hour), 1)
	}

	seen := map[string]bool{}
	var prev time.Time
	const limit = 10
	for page := 1; page <= 3; page++ {
		shifts, gotTotal, err := repo.GetShifts(page, limit)
		require.NoError(t, err)
		assert.Equal(t, total, gotTotal)

		for _, shift := range shifts {
			assert.False(t, seen[shift.ID], "班次 %s 出现在多个分页中", shift.ID)
			seen[shift.ID] = true
			assert.False(t, shift.Start.Before(prev), "班次没有按开始时间升序排列")
			prev = shift.Start
		}
	}
	assert.Len(t, seen, total)

	// 超出范围的页是空的
	shifts, _, err := repo.GetShifts(4, limit)
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestDeleteShift_CascadesClaims(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "zhangsan1")
	shift := createTestShift(t, repo, "白班", time.Now().Add(24*time.Hour), 1)

	_, err := repo.ClaimShift(user.ID, shift.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteShift(shift.ID))

	// 认领记录应该被级联删除
	claimedShifts, total, err := repo.GetUserClaimedShifts(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, claimedShifts)
}
