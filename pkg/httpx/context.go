package httpx

type ctxKey string

// CtxKeyUserID carries the authenticated principal's id, set by the auth
// middleware and read back by per-user rate limiting.
const CtxKeyUserID ctxKey = "user_id"
