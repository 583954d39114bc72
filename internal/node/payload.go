package node

// Payload is the kind-specific configuration of a node. Exactly one payload
// type exists per Kind.
type Payload interface {
	Kind() Kind
}

// LoaderConfig lists the directory to load from per variant.
type LoaderConfig struct {
	LoadPath map[string]string
}

// ExporterConfig lists the export directory per variant.
type ExporterConfig struct {
	ExportPath map[string]string
}

// ScriptConfig names a registered script type. It is shared by script
// filters and both prefabricator kinds.
type ScriptConfig struct {
	NodeKind   Kind
	ScriptType string
}

// KeywordFilterConfig holds parallel keyword and type lists. Each keyword
// becomes one output label.
type KeywordFilterConfig struct {
	Keywords []string
	KeyTypes []string
}

// ImportSettingConfig marks the variants that carry importer settings.
type ImportSettingConfig struct {
	ImporterPackages map[string]string
}

// ModifierConfig marks the variants that carry modifier settings.
type ModifierConfig struct {
	ModifierPackages map[string]string
}

// GroupingConfig holds the grouping pattern per variant.
type GroupingConfig struct {
	GroupingKeyword map[string]string
}

// PackagerConfig holds the package name template per variant and whether
// generated outputs are packaged.
type PackagerConfig struct {
	NameTemplate map[string]string
	UseOutput    map[string]string
}

// PackageBuilderConfig holds the enabled build options per variant.
type PackageBuilderConfig struct {
	EnabledOptions map[string][]string
}

func (LoaderConfig) Kind() Kind         { return KindLoader }
func (ExporterConfig) Kind() Kind       { return KindExporter }
func (c ScriptConfig) Kind() Kind       { return c.NodeKind }
func (KeywordFilterConfig) Kind() Kind  { return KindFilterByKeyword }
func (ImportSettingConfig) Kind() Kind  { return KindImportSetting }
func (ModifierConfig) Kind() Kind       { return KindModifier }
func (GroupingConfig) Kind() Kind       { return KindGrouping }
func (PackagerConfig) Kind() Kind       { return KindPackager }
func (PackageBuilderConfig) Kind() Kind { return KindPackageBuilder }
