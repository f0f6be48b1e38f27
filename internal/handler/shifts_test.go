package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/config"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/domain"
	"github.com/sysu-ecnc-dev/claimly/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const testJWTSecret = "test-jwt-secret"

// newTestHandler 连接 TEST_DATABASE_DSN 指定的数据库并注册全部路由。
// 没有设置 TEST_DATABASE_DSN 时跳过集成测试
func newTestHandler(t *testing.T) *Handler {
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

	require.NoError(t, repository.RunMigrations(dbpool))

	_, err = dbpool.Exec(`TRUNCATE shift_claims, shifts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10
	cfg.JWT.Secret = testJWTSecret

	h, err := NewHandler(cfg, repository.NewRepository(cfg, dbpool), nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h
}

func createTestUser(t *testing.T, h *Handler, username string, role domain.Role) *domain.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     "测试用户" + username,
		Email:        username + "@example.com",
		Role:         role,
	}
	require.NoError(t, h.repository.CreateUser(user))

	return user
}

func signTestToken(t *testing.T, user *domain.User) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return ss
}

func createShiftRequestBody(t *testing.T) string {
	t.Helper()

	start := time.Now().Add(24 * time.Hour)
	body, err := json.Marshal(map[string]any{
		"name":      "白班",
		"start":     start.UnixMilli(),
		"end":       start.Add(2 * time.Hour).UnixMilli(),
		"maxClaims": 2,
	})
	require.NoError(t, err)

	return string(body)
}

// 普通用户不允许创建班次，而且不能留下任何班次记录
func TestCreateShift_MemberUnauthorized(t *testing.T) {
	h := newTestHandler(t)
	member := createTestUser(t, h, "zhangsan1", domain.RoleMember)

	req := httptest.NewRequest(http.MethodPost, "/shifts", strings.NewReader(createShiftRequestBody(t)))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, member))
	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)

	shifts, total, err := h.repository.GetShifts(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, shifts)
}

func TestCreateShift_NoToken(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/shifts", strings.NewReader(createShiftRequestBody(t)))
	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	shifts, total, err := h.repository.GetShifts(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, shifts)
}

func TestCreateShift_Admin(t *testing.T) {
	h := newTestHandler(t)
	admin := createTestUser(t, h, "admin1", domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/shifts", strings.NewReader(createShiftRequestBody(t)))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, admin))
	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	shifts, total, err := h.repository.GetShifts(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, shifts, 1)
	assert.Equal(t, "白班", shifts[0].Name)
}
