package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// Campos de negocio.

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func Username(v string) zap.Field { return zap.String("username", v) }

func Role(v string) zap.Field { return zap.String("role", v) }

func Resource(v string) zap.Field { return zap.String("resource", v) }

func EntryID(v string) zap.Field { return zap.String("entry_id", v) }

func Email(v string) zap.Field { return zap.String("email", v) }

// Err es un alias corto de zap.Error.
func Err(err error) zap.Field { return zap.Error(err) }
