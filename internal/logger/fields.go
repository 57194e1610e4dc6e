package logger

import "go.uber.org/zap"

// Typed field helpers keep log keys consistent across the codebase.
// Token values are never logged; only metadata about them is.

func RequestID(id string) zap.Field { return zap.String("request_id", id) }

func Method(m string) zap.Field { return zap.String("method", m) }

func Path(p string) zap.Field { return zap.String("path", p) }

func Status(code int) zap.Field { return zap.Int("status", code) }

func Bytes(n int) zap.Field { return zap.Int("bytes", n) }

func DurationMs(ms int64) zap.Field { return zap.Int64("duration_ms", ms) }

func UserID(id string) zap.Field { return zap.String("user_id", id) }

func RealmID(id string) zap.Field { return zap.String("realm_id", id) }

func Err(err error) zap.Field { return zap.Error(err) }
