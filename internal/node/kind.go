package node

import (
	"fmt"
	"slices"
)

// Kind identifies the processing role of a node.
type Kind int

const (
	KindUnknown Kind = iota
	KindLoader
	KindExporter
	KindFilterByScript
	KindFilterByKeyword
	KindPrefabricatorScript
	KindPrefabricatorGUI
	KindImportSetting
	KindModifier
	KindGrouping
	KindPackager
	KindPackageBuilder
)

var kindNames = map[Kind]string{
	KindLoader:              "Loader",
	KindExporter:            "Exporter",
	KindFilterByScript:      "FilterByScript",
	KindFilterByKeyword:     "FilterByKeyword",
	KindPrefabricatorScript: "PrefabricatorScript",
	KindPrefabricatorGUI:    "PrefabricatorGUI",
	KindImportSetting:       "ImportSetting",
	KindModifier:            "Modifier",
	KindGrouping:            "Grouping",
	KindPackager:            "Packager",
	KindPackageBuilder:      "PackageBuilder",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindLoader; k <= KindPackageBuilder; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind maps a kind name from a graph description to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unrecognized node kind %q", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsFilter reports whether the node's output labels are derived by its
// executor rather than fixed.
func (k Kind) IsFilter() bool {
	return k == KindFilterByScript || k == KindFilterByKeyword
}

// IsScripted reports whether the node delegates to a registered script type.
func (k Kind) IsScripted() bool {
	switch k {
	case KindFilterByScript, KindPrefabricatorScript, KindPrefabricatorGUI:
		return true
	}
	return false
}

// builderChildren are the only kinds allowed downstream of a PackageBuilder.
var builderChildren = []Kind{
	KindFilterByScript,
	KindFilterByKeyword,
	KindGrouping,
	KindExporter,
}

// OrderError reports an illegal parent/child pairing of node kinds.
type OrderError struct {
	ParentID   string
	ParentKind Kind
	ChildID    string
	ChildKind  Kind
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("node %q (%s) cannot feed node %q (%s)", e.ParentID, e.ParentKind, e.ChildID, e.ChildKind)
}

// CheckOrder asserts that parent may be connected upstream of child.
// A PackageBuilder only accepts a Packager as its parent, and only filters,
// groupings and exporters may consume a PackageBuilder's output.
func CheckOrder(parent, child *Record) error {
	fail := func() error {
		return &OrderError{ParentID: parent.ID, ParentKind: parent.Kind, ChildID: child.ID, ChildKind: child.Kind}
	}
	if child.Kind == KindPackageBuilder && parent.Kind != KindPackager {
		return fail()
	}
	if parent.Kind == KindPackageBuilder && !slices.Contains(builderChildren, child.Kind) {
		return fail()
	}
	return nil
}
