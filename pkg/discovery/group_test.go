package discovery

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
)

func TestKeyFor(t *testing.T) {
	p := &model.AssetPreview{Title: "Dune"}
	k1 := KeyFor(policy+unit.EncodeName("Dune_1"), p)
	k2 := KeyFor(policy+".Dune_22", p)
	if k1 != k2 {
		t.Fatalf("fractions must share a key: %+v vs %+v", k1, k2)
	}
	if k1.BaseName != "Dune" || k1.PolicyID != policy {
		t.Fatalf("unexpected key %+v", k1)
	}

	// non-UTF-8 name falls back to the title
	k3 := KeyFor(policy+"ff00", p)
	if k3.BaseName != "Dune" {
		t.Fatalf("expected title fallback, got %+v", k3)
	}
}

func TestCollection_MergeKeepsSeed(t *testing.T) {
	var c Collection
	key := GroupKey{PolicyID: policy, BaseName: "Dune", Title: "Dune"}
	first := &model.AssetPreview{AssetID: "a", Title: "Dune", Artist: "Ama", Units: []string{"a"}}
	second := &model.AssetPreview{AssetID: "b", Title: "Dune", Artist: "Someone else", Units: []string{"b", "a"}}

	if !c.Merge(key, first) {
		t.Fatal("first merge should create a group")
	}
	if c.Merge(key, second) {
		t.Fatal("second merge should join the group")
	}
	got := c.Previews()
	if len(got) != 1 || got[0].Artist != "Ama" || got[0].AssetID != "a" {
		t.Fatalf("seed overwritten: %+v", got)
	}
	if len(got[0].Units) != 2 || got[0].Units[0] != "a" || got[0].Units[1] != "b" {
		t.Fatalf("unexpected units %v", got[0].Units)
	}
	if len(first.Units) != 1 {
		t.Fatal("merge must not mutate its input")
	}
}

func TestCollection_Properties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	// units are drawn from a small pool so merges collide
	unitsGen := gen.SliceOf(gen.IntRange(0, 9))
	keysGen := gen.SliceOf(gen.IntRange(0, 3))

	properties.Property("every merged unit is kept exactly once", prop.ForAll(
		func(keys []int, units []int) bool {
			var c Collection
			want := map[string]bool{}
			for i, u := range units {
				k := 0
				if len(keys) > 0 {
					k = keys[i%len(keys)]
				}
				id := string(rune('a' + u))
				want[id] = true
				c.Merge(GroupKey{BaseName: string(rune('A' + k))}, &model.AssetPreview{Units: []string{id}})
			}
			seen := map[string]int{}
			for _, g := range c.Previews() {
				local := map[string]bool{}
				for _, u := range g.Units {
					if local[u] {
						return false
					}
					local[u] = true
					seen[u]++
				}
			}
			for u := range want {
				if seen[u] == 0 {
					return false
				}
			}
			return len(seen) == len(want)
		},
		keysGen, unitsGen,
	))

	properties.Property("merging the same preview twice is a no-op", prop.ForAll(
		func(units []int) bool {
			p := &model.AssetPreview{Title: "t"}
			for _, u := range units {
				p.AddUnit(string(rune('a' + u)))
			}
			key := GroupKey{Title: "t"}
			var once, twice Collection
			once.Merge(key, p)
			twice.Merge(key, p)
			twice.Merge(key, p)
			a, b := once.Previews(), twice.Previews()
			if len(a) != 1 || len(b) != 1 || len(a[0].Units) != len(b[0].Units) {
				return false
			}
			for i := range a[0].Units {
				if a[0].Units[i] != b[0].Units[i] {
					return false
				}
			}
			return true
		},
		unitsGen,
	))

	properties.Property("group count never exceeds distinct keys", prop.ForAll(
		func(keys []int) bool {
			var c Collection
			distinct := map[int]bool{}
			for _, k := range keys {
				distinct[k] = true
				c.Merge(GroupKey{BaseName: string(rune('A' + k))}, &model.AssetPreview{})
			}
			return c.Len() == len(distinct)
		},
		keysGen,
	))

	properties.TestingRun(t)
}
