package internal

import (
	"github.com/projectbureau/bureau-backend/internal/handler"
	"github.com/projectbureau/bureau-backend/pkg/logutils"
)

// registerManagers instantiates every registered manager.
func registerManagers(config *handler.RegisterConfig) []handler.Manager {
	var managers []handler.Manager
	for _, register := range handler.Registers {
		manager := register(config)
		managers = append(managers, manager)
		logutils.Log.Infof("Registered manager: %s", manager.GetName())
	}
	return managers
}
