package constants

import "github.com/go-playground/validator/v10"

// Validate is the shared validator instance used by DTO checks.
var Validate = validator.New(validator.WithRequiredStructEnabled())

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	RequestStart ContextKey = "request-start"
)
