package nearshare

import (
	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/platform"
)

// Register installs the Near Share application factory under AppID, so any
// session's StartChannelRequest for it constructs a fresh per-channel App
// bound to handler (spec.md §6: "The Near Share application registers
// itself under its well-known id").
func Register(factories *channel.FactoryRegistry, handler platform.Handler, loggerFactory logging.LoggerFactory) {
	factories.Register(AppID, func(appName string) (channel.Application, error) {
		return New(appName, handler, loggerFactory), nil
	})
}
