// Package grouping implements the Grouping node. Its keyword is a pattern
// with a single "*" wildcard; the text the wildcard captures in an asset path
// becomes the asset's group key.
package grouping

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Wildcard marks the captured part of a grouping keyword.
const Wildcard = "*"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Grouping executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindGrouping, New)
}

// Grouper is the executor of one Grouping node.
type Grouper struct {
	keyword string
	pattern *regexp.Regexp
	root    string
}

// New builds the grouper for rec from the keyword of the active variant.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.GroupingConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	keyword, err := executor.Setting(env, rec, "grouping_keyword", cfg.GroupingKeyword)
	if err != nil {
		return nil, err
	}
	pattern, err := Compile(keyword)
	if err != nil {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "grouping_keyword", Err: err}
	}
	return &Grouper{keyword: keyword, pattern: pattern, root: env.ProjectRoot}, nil
}

// Compile turns a grouping keyword into a regular expression whose first
// submatch is the group key. Only the first wildcard captures; later ones
// match anything.
func Compile(keyword string) (*regexp.Regexp, error) {
	if !strings.Contains(keyword, Wildcard) {
		return nil, fmt.Errorf("keyword %q has no %q wildcard", keyword, Wildcard)
	}
	parts := strings.Split(keyword, Wildcard)
	var b strings.Builder
	for i, part := range parts {
		if i == 1 && part == "" && len(parts) == 2 {
			b.WriteString("(.*)")
		} else if i == 1 {
			b.WriteString("(.*?)")
		} else if i > 1 {
			b.WriteString(".*?")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	return regexp.Compile(b.String())
}

func (g *Grouper) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	g.group(ctx, in, out)
	return nil
}

func (g *Grouper) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	g.group(ctx, in, out)
	return nil
}

// group regroups every input unit by its captured key. Units the keyword
// does not match are dropped.
func (g *Grouper) group(ctx context.Context, in executor.Input, out executor.OutputFunc) {
	logger := ctxlog.FromContext(ctx)
	groups := asset.Groups{}
	for _, key := range in.Groups.Keys() {
		for _, u := range in.Groups[key] {
			p := u.Path(g.root)
			m := g.pattern.FindStringSubmatch(p)
			if m == nil {
				logger.Debug("Asset does not match grouping keyword.", "path", p, "keyword", g.keyword)
				continue
			}
			groups[m[1]] = append(groups[m[1]], u)
		}
	}
	if len(groups) == 0 {
		groups = asset.Empty()
	}
	out(in.NodeID, in.Label, groups, nil)
}
