package app

import (
	"github.com/vk/assetgraph/internal/registry"
	"github.com/vk/assetgraph/modules/exporter"
	"github.com/vk/assetgraph/modules/grouping"
	"github.com/vk/assetgraph/modules/keywordfilter"
	"github.com/vk/assetgraph/modules/loader"
	"github.com/vk/assetgraph/modules/packagebuilder"
	"github.com/vk/assetgraph/modules/packager"
	"github.com/vk/assetgraph/modules/prefabricator"
	"github.com/vk/assetgraph/modules/samples"
	"github.com/vk/assetgraph/modules/scriptfilter"
	"github.com/vk/assetgraph/modules/settings"
)

// coreModules is the definitive list of all modules that are compiled into
// the assetgraph binary.
var coreModules = []registry.Module{
	&loader.Module{},
	&keywordfilter.Module{},
	&scriptfilter.Module{},
	&settings.Module{},
	&grouping.Module{},
	&prefabricator.Module{},
	&packager.Module{},
	&packagebuilder.Module{},
	&exporter.Module{},
	&samples.Module{},
}
