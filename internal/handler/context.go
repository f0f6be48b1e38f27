package handler

type ContextKey string

var (
	PrincipalCtxKey ContextKey = "principal"
	MyInfoCtxKey    ContextKey = "myInfo"
	ShiftCtxKey     ContextKey = "shift"
)
