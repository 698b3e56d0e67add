package app

import (
	"github.com/vk/agentgrid/internal/registry"
	"github.com/vk/agentgrid/modules/docs"
	"github.com/vk/agentgrid/modules/relay"
	"github.com/vk/agentgrid/modules/research"
	"github.com/vk/agentgrid/modules/triage"
)

// coreModules is the definitive list of all agent provider modules that are
// compiled into the agentgrid binary.
var coreModules = []registry.Module{
	&docs.Module{},
	&research.Module{},
	&triage.Module{},
	&relay.Module{},
}
