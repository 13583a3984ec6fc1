package exoarchive

import (
	"github.com/ajitpratap0/astropipe/pkg/catalog"
	"github.com/ajitpratap0/astropipe/pkg/logger"
	"go.uber.org/zap"
)

func init() {
	if err := catalog.RegisterSource("exoarchive", New); err != nil {
		logger.Error("failed to register exoarchive source", zap.Error(err))
	}
}
