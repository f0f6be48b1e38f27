package handler

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// paginationParams 尽力解析 page 和 limit，
// 解析不出来或者不合法就退回默认值而不是报错
func paginationParams(r *http.Request) (page int, limit int) {
	page = defaultPage
	limit = defaultLimit

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		limit = v
	}

	return page, limit
}
