package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. APP_ENV=development gives the
// human readable console encoder, anything else the JSON production one.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
