// Package keywordfilter implements the FilterByKeyword node. Each configured
// keyword becomes one output label carrying the input assets whose path
// contains the keyword and whose extension matches the keyword's type.
package keywordfilter

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// AnyType matches assets of every type.
const AnyType = "*"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the FilterByKeyword executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindFilterByKeyword, New)
}

type rule struct {
	keyword string
	keytype string
}

// Filter is the executor of one FilterByKeyword node.
type Filter struct {
	rules []rule
	root  string
}

// New builds the filter for rec.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.KeywordFilterConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	f := &Filter{root: env.ProjectRoot}
	for i, kw := range cfg.Keywords {
		r := rule{keyword: kw, keytype: AnyType}
		if i < len(cfg.KeyTypes) && cfg.KeyTypes[i] != "" {
			r.keytype = cfg.KeyTypes[i]
		}
		f.rules = append(f.rules, r)
	}
	return f, nil
}

func (f *Filter) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	f.filter(ctx, in, out)
	return nil
}

func (f *Filter) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	f.filter(ctx, in, out)
	return nil
}

// filter emits every keyword label, including those that matched nothing.
func (f *Filter) filter(ctx context.Context, in executor.Input, out executor.OutputFunc) {
	logger := ctxlog.FromContext(ctx)
	for _, r := range f.rules {
		groups := asset.Groups{}
		for _, key := range in.Groups.Keys() {
			matched := []asset.Unit{}
			for _, u := range in.Groups[key] {
				p := u.Path(f.root)
				if matchKeyword(r.keyword, p) && matchType(r.keytype, p) {
					matched = append(matched, u)
				}
			}
			groups[groupName(key, r.keyword)] = matched
		}
		logger.Debug("Keyword filter applied.", "keyword", r.keyword, "keytype", r.keytype, "matched", groups.Count())
		out(in.NodeID, r.keyword, groups, nil)
	}
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

func matchKeyword(keyword, p string) bool {
	if isGlob(keyword) {
		ok, err := path.Match(keyword, path.Base(p))
		return err == nil && ok
	}
	return strings.Contains(p, keyword)
}

func matchType(keytype, p string) bool {
	if keytype == AnyType {
		return true
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	return strings.EqualFold(ext, strings.TrimPrefix(keytype, "."))
}

// groupName renames the default group after the keyword, so "*.png" yields
// a "png" group. Named groups keep their key.
func groupName(key, keyword string) string {
	if key != asset.DefaultGroup {
		return key
	}
	if stem := strings.Trim(keyword, "*.?"); stem != "" {
		return stem
	}
	return key
}
