// Package samples registers the built-in scripts usable from FilterByScript
// and prefabricator nodes.
package samples

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/registry"
	"github.com/vk/assetgraph/modules/prefabricator"
	"github.com/vk/assetgraph/modules/scriptfilter"
)

// Script type names.
const (
	TextureOrOtherType        = "TextureOrOther"
	ManifestPrefabricatorType = "ManifestPrefabricator"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sample scripts.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterScript(TextureOrOtherType, func() any { return &TextureOrOther{} })
	r.RegisterScript(ManifestPrefabricatorType, func() any { return &ManifestPrefabricator{} })
}

var textureExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".tga": true, ".psd": true, ".bmp": true}

// TextureOrOther splits assets into image textures and everything else.
type TextureOrOther struct{}

var _ scriptfilter.Script = (*TextureOrOther)(nil)

func (*TextureOrOther) Labels() []string { return []string{"texture", "other"} }

func (*TextureOrOther) Match(label, p string) bool {
	isTexture := textureExts[strings.ToLower(path.Ext(p))]
	switch label {
	case "texture":
		return isTexture
	case "other":
		return !isTexture
	}
	return false
}

// ManifestPrefabricator writes a manifest.json per group listing its
// source assets.
type ManifestPrefabricator struct{}

var _ prefabricator.Script = (*ManifestPrefabricator)(nil)

type manifest struct {
	Group  string   `json:"group"`
	Assets []string `json:"assets"`
}

func (*ManifestPrefabricator) Estimate(string, []asset.Unit) []string {
	return []string{"manifest.json"}
}

func (*ManifestPrefabricator) Build(_ context.Context, groupKey string, sources []prefabricator.Source, _ string, w io.Writer) error {
	m := manifest{Group: groupKey, Assets: make([]string, 0, len(sources))}
	for _, s := range sources {
		m.Assets = append(m.Assets, s.Path)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
