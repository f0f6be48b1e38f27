package seed

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/claimly/backend/internal/config"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/repository"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/utils"
)

// SeedUsers 插入 n 个随机普通用户，返回成功插入的数量
func SeedUsers(repo *repository.Repository, cfg *config.Config, n int) int {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机用户", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入用户", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	return cnt
}

// SeedShifts 插入 n 个随机班次，开始时间分布在前后两周内
func SeedShifts(repo *repository.Repository, n int) int {
	cnt := 0
	for i := 0; i < n; i++ {
		start := time.Now().
			Add(-14 * 24 * time.Hour).
			Add(time.Duration(rand.Intn(28*24)) * time.Hour).
			Truncate(time.Hour)

		shift := &domain.Shift{
			Name:      "值班" + utils.GenerateRandomID(0, 4),
			Start:     start,
			End:       start.Add(time.Duration(rand.Intn(4)+1) * time.Hour),
			MaxClaims: int32(rand.Intn(5) + 1),
		}

		if err := repo.CreateShift(shift); err != nil {
			slog.Error("无法插入班次", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	return cnt
}

// SeedClaims 让每个用户随机认领至多 n 个班次。
// 认领走正常的认领事务，所以不会出现超出名额的数据
func SeedClaims(repo *repository.Repository, n int) int {
	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("无法获取所有用户", slog.String("error", err.Error()))
		return 0
	}

	shifts, _, err := repo.GetShifts(1, 1000)
	if err != nil {
		slog.Error("无法获取所有班次", slog.String("error", err.Error()))
		return 0
	}

	if len(shifts) == 0 {
		slog.Error("数据库中没有班次，请先插入班次")
		return 0
	}

	cnt := 0
	for _, user := range users {
		for i := 0; i < rand.Intn(n+1); i++ {
			shift := shifts[rand.Intn(len(shifts))]

			_, err := repo.ClaimShift(user.ID, shift.ID)
			switch {
			case err == nil:
				cnt++
			case errors.Is(err, repository.ErrAlreadyClaimed), errors.Is(err, repository.ErrShiftFull):
				// 随机认领撞上名额已满或者重复认领是正常现象，跳过即可
			default:
				slog.Error("无法插入认领记录", slog.String("error", err.Error()))
			}
		}
	}

	return cnt
}
