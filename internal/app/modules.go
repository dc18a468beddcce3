package app

import (
	"github.com/vk/picklerun/internal/adapter"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/modules/ctxsteps"
	"github.com/vk/picklerun/modules/httpcap"
	"github.com/vk/picklerun/modules/httpsteps"
	"github.com/vk/picklerun/modules/kvsteps"
	"github.com/vk/picklerun/modules/memstore"
)

// coreModules lists the step packs compiled into the default runner binary.
var coreModules = []registry.Module{
	&kvsteps.Module{},
	&httpsteps.Module{},
	&ctxsteps.Module{},
}

// coreAdapters lists the capability adapters compiled into the default
// runner binary.
var coreAdapters = []adapter.Provider{
	&memstore.Module{},
	&httpcap.Module{},
}
