package graph

import (
	"github.com/vk/assetgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Attribute names of kind-specific node fields.
const (
	AttrLoadPath         = "load_path"
	AttrExportPath       = "export_path"
	AttrScriptType       = "script_type"
	AttrKeywords         = "keywords"
	AttrKeyTypes         = "keytypes"
	AttrImporterPackages = "importer_packages"
	AttrModifierPackages = "modifier_packages"
	AttrGroupingKeyword  = "grouping_keyword"
	AttrNameTemplate     = "package_name_template"
	AttrUseOutput        = "package_use_output"
	AttrEnabledOptions   = "enabled_package_options"
)

// DecodePayload builds the typed payload for kind from raw attributes.
// Missing or malformed attributes decode to empty containers.
func DecodePayload(kind node.Kind, attrs map[string]cty.Value) node.Payload {
	switch kind {
	case node.KindLoader:
		return node.LoaderConfig{LoadPath: stringMap(attrs[AttrLoadPath])}
	case node.KindExporter:
		return node.ExporterConfig{ExportPath: stringMap(attrs[AttrExportPath])}
	case node.KindFilterByScript, node.KindPrefabricatorScript, node.KindPrefabricatorGUI:
		return node.ScriptConfig{NodeKind: kind, ScriptType: str(attrs[AttrScriptType])}
	case node.KindFilterByKeyword:
		return node.KeywordFilterConfig{
			Keywords: stringList(attrs[AttrKeywords]),
			KeyTypes: stringList(attrs[AttrKeyTypes]),
		}
	case node.KindImportSetting:
		return node.ImportSettingConfig{ImporterPackages: stringMap(attrs[AttrImporterPackages])}
	case node.KindModifier:
		return node.ModifierConfig{ModifierPackages: stringMap(attrs[AttrModifierPackages])}
	case node.KindGrouping:
		return node.GroupingConfig{GroupingKeyword: stringMap(attrs[AttrGroupingKeyword])}
	case node.KindPackager:
		return node.PackagerConfig{
			NameTemplate: stringMap(attrs[AttrNameTemplate]),
			UseOutput:    stringMap(attrs[AttrUseOutput]),
		}
	case node.KindPackageBuilder:
		return node.PackageBuilderConfig{EnabledOptions: stringListMap(attrs[AttrEnabledOptions])}
	}
	return nil
}

func usable(v cty.Value) bool {
	return v != cty.NilVal && !v.IsNull() && v.IsWhollyKnown()
}

func str(v cty.Value) string {
	if !usable(v) {
		return ""
	}
	cv, err := convert.Convert(v, cty.String)
	if err != nil || cv.IsNull() {
		return ""
	}
	return cv.AsString()
}

func stringList(v cty.Value) []string {
	out := []string{}
	if !usable(v) {
		return out
	}
	cv, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return out
	}
	var list []string
	if err := gocty.FromCtyValue(cv, &list); err != nil {
		return out
	}
	return append(out, list...)
}

func stringMap(v cty.Value) map[string]string {
	out := map[string]string{}
	if !usable(v) {
		return out
	}
	cv, err := convert.Convert(v, cty.Map(cty.String))
	if err != nil {
		return out
	}
	var m map[string]string
	if err := gocty.FromCtyValue(cv, &m); err != nil {
		return out
	}
	for k, s := range m {
		out[k] = s
	}
	return out
}

func stringListMap(v cty.Value) map[string][]string {
	out := map[string][]string{}
	if !usable(v) {
		return out
	}
	cv, err := convert.Convert(v, cty.Map(cty.List(cty.String)))
	if err != nil {
		return out
	}
	var m map[string][]string
	if err := gocty.FromCtyValue(cv, &m); err != nil {
		return out
	}
	for k, list := range m {
		out[k] = append([]string{}, list...)
	}
	return out
}
