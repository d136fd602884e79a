package space

import (
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/config"
	"go.uber.org/zap"
)

// Context carries what a space needs from its host. It is built once and
// passed to New.
type Context struct {
	Log    *zap.Logger
	Models asset.Provider
	Config config.Config
}
