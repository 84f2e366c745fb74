package discovery

import (
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
)

// GroupKey identifies the artwork a unit is a fraction of.
type GroupKey struct {
	PolicyID string
	BaseName string
	Title    string
}

// KeyFor derives the group key of u. The asset name is decoded best-effort
// (the preview title stands in when it is not UTF-8) and a trailing
// "_<digits>" fraction suffix is stripped.
func KeyFor(u string, p *model.AssetPreview) GroupKey {
	canonical := unit.Unit(unit.Normalize(u))
	name, ok := canonical.AssetName()
	if !ok || name == "" {
		name = p.Title
	}
	return GroupKey{
		PolicyID: canonical.PolicyID(),
		BaseName: unit.BaseName(name),
		Title:    p.Title,
	}
}

// Collection accumulates grouped previews in first-discovery order. It is
// not safe for concurrent use.
type Collection struct {
	index  map[GroupKey]int
	groups []*model.AssetPreview
}

// Merge adds p under key. A new key starts a group seeded with a copy of p;
// an existing group only gains p's units. It reports whether a group was
// created.
func (c *Collection) Merge(key GroupKey, p *model.AssetPreview) bool {
	if c.index == nil {
		c.index = make(map[GroupKey]int)
	}
	if i, ok := c.index[key]; ok {
		for _, u := range p.Units {
			c.groups[i].AddUnit(u)
		}
		return false
	}
	seed := *p
	seed.Units = nil
	for _, u := range p.Units {
		seed.AddUnit(u)
	}
	c.index[key] = len(c.groups)
	c.groups = append(c.groups, &seed)
	return true
}

// Len returns the number of groups.
func (c *Collection) Len() int { return len(c.groups) }

// Previews returns the groups in the order they were created.
func (c *Collection) Previews() []model.AssetPreview {
	out := make([]model.AssetPreview, 0, len(c.groups))
	for _, g := range c.groups {
		p := *g
		p.Units = append([]string(nil), g.Units...)
		out = append(out, p)
	}
	return out
}
