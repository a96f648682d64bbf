package repo

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rindex/rindex/checksum"
	"github.com/rindex/rindex/internal/util"
)

var (
	// ErrInvalidConfig wraps every schema error in a repository config
	ErrInvalidConfig = errors.New("invalid repository config")

	// ErrMappingCycle is returned when bind/overlay targets depend on each
	// other in a cycle
	ErrMappingCycle = errors.New("cycle detected in path mappings")
)

// DataMode selects where the content of a path comes from
type DataMode int

const (
	// DataPlain paths are indexed from their own content
	DataPlain DataMode = iota
	// DataBind paths use the exact content of their target
	DataBind
	// DataOverlay paths may modify or add to their target's content
	DataOverlay
	// DataIgnore paths are not indexed
	DataIgnore
)

func (m DataMode) String() string {
	switch m {
	case DataPlain:
		return "plain"
	case DataBind:
		return "bind"
	case DataOverlay:
		return "overlay"
	case DataIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("DataMode(%d)", int(m))
	}
}

// PathConfig is the effective configuration of one repository path.
// Paths inherit it from their nearest configured ancestor.
type PathConfig struct {
	Data DataMode
	// Target is the repository-relative, slash-separated bind or overlay
	// target. Empty unless Data is DataBind or DataOverlay.
	Target string
	// Standalone > 0 means the path gets its own index document. It
	// decreases by one per level below the path it was set on.
	Standalone int

	SaveSize    bool
	SaveMtime   bool
	SaveMtimeNS bool
	// Checksums maps algorithm name to whether it is recorded
	Checksums map[string]bool
	// Location is used to render modification times, UTC unless a
	// timezone is configured
	Location *time.Location
}

// DefaultPathConfig is the configuration of a repository root before any
// options are applied
func DefaultPathConfig() PathConfig {
	return PathConfig{
		Data:       DataPlain,
		Standalone: 1,
		SaveSize:   true,
		SaveMtime:  true,
		Checksums:  map[string]bool{checksum.SHA256: true},
		Location:   time.UTC,
	}
}

// Calc derives the configuration of a path rel components below c
func (c PathConfig) Calc(rel []string) PathConfig {
	out := c
	out.Checksums = maps.Clone(c.Checksums)
	if c.Target != "" && len(rel) > 0 {
		out.Target = path.Join(c.Target, path.Join(rel...))
	}
	out.Standalone = max(c.Standalone-len(rel), 0)
	return out
}

// EnabledChecksums returns the names of the recorded checksums, sorted
func (c PathConfig) EnabledChecksums() []string {
	var names []string
	for name, on := range c.Checksums {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Config is a parsed repository configuration
type Config struct {
	tree  *configTree
	paths []string
}

// LoadConfig reads and parses the repository config at path
func LoadConfig(path string, reg *checksum.Registry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a TOML document mapping repository-relative paths to
// option tables. Checksum options are validated against reg.
func ParseConfig(data []byte, reg *checksum.Registry) (*Config, error) {
	logger := util.GetLogger("RepoConfig")

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	type pathOpts struct {
		parts []string
		opts  map[string]any
	}
	byKey := make(map[string]pathOpts, len(raw))
	original := make(map[string]string, len(raw))
	for key, val := range raw {
		parts, err := sanitizePath(key)
		if err != nil {
			return nil, err
		}
		norm := path.Join(append([]string{"."}, parts...)...)
		if prev, dup := original[norm]; dup {
			return nil, fmt.Errorf("%w: path conflict: %q and %q", ErrInvalidConfig, key, prev)
		}
		original[norm] = key
		opts, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: config of %q is not a table", ErrInvalidConfig, key)
		}
		byKey[norm] = pathOpts{parts: parts, opts: opts}
	}

	keys := slices.SortedFunc(maps.Keys(byKey), func(a, b string) int {
		return slices.Compare(byKey[a].parts, byKey[b].parts)
	})

	tree := newConfigTree()
	root := DefaultPathConfig()
	tree.val = &root
	for _, key := range keys {
		po := byKey[key]
		depth, parent := tree.nearest(po.parts)
		cfg := parent.val.Calc(po.parts[depth:])
		if err := cfg.apply(po.opts, reg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, original[key], err)
		}
		tree.at(po.parts).val = &cfg
	}
	if tree.val.Standalone <= 0 {
		return nil, fmt.Errorf("%w: the root must be standalone", ErrInvalidConfig)
	}

	c := &Config{tree: tree, paths: keys}
	if err := c.resolveMappings(); err != nil {
		return nil, err
	}
	logger.Debug().Int("paths", len(keys)).Msg("Repository config parsed")
	return c, nil
}

// Lookup returns the effective configuration of a slash-separated
// repository-relative path; "" and "." denote the root
func (c *Config) Lookup(rel string) PathConfig {
	parts := splitRel(rel)
	depth, node := c.tree.nearest(parts)
	return node.val.Calc(parts[depth:])
}

// Paths returns the explicitly configured paths in tree order
func (c *Config) Paths() []string {
	return slices.Clone(c.paths)
}

// resolveMappings rewrites every bind/overlay target so that it no longer
// points into another bound path. Targets are resolved in dependency order;
// a cycle among them is an error.
func (c *Config) resolveMappings() error {
	idx := make(map[string]int, len(c.paths))
	for i, p := range c.paths {
		idx[p] = i
	}
	deg := make([]int, len(c.paths))
	next := make([][]int, len(c.paths))
	for i, p := range c.paths {
		cfg := c.tree.at(splitRel(p)).val
		if cfg.Target == "" {
			continue
		}
		parts := splitRel(cfg.Target)
		depth, _ := c.tree.nearest(parts)
		// an unconfigured root has no target and needs no ordering
		if dest, ok := idx[path.Join(append([]string{"."}, parts[:depth]...)...)]; ok {
			next[dest] = append(next[dest], i)
			deg[i]++
		}
	}

	order := make([]int, 0, len(c.paths))
	for i, d := range deg {
		if d == 0 {
			order = append(order, i)
		}
	}
	for p := 0; p < len(order); p++ {
		for _, t := range next[order[p]] {
			deg[t]--
			if deg[t] == 0 {
				order = append(order, t)
			}
		}
	}
	if len(order) != len(c.paths) {
		return ErrMappingCycle
	}

	for _, i := range order {
		cfg := c.tree.at(splitRel(c.paths[i])).val
		if cfg.Target == "" {
			continue
		}
		parts := splitRel(cfg.Target)
		depth, dest := c.tree.nearest(parts)
		base := path.Join(parts[:depth]...)
		if dest.val.Data == DataBind {
			base = dest.val.Target
		}
		cfg.Target = path.Join(base, path.Join(parts[depth:]...))
		if cfg.Target == "" {
			cfg.Target = "."
		}
	}
	return nil
}

// apply merges one option table into c
func (c *PathConfig) apply(opts map[string]any, reg *checksum.Registry) error {
	for key, val := range opts {
		switch key {
		case "data":
			if err := c.applyData(val); err != nil {
				return err
			}
		case "standalone":
			switch v := val.(type) {
			case bool:
				c.Standalone = 0
				if v {
					c.Standalone = 1
				}
			case int64:
				if v < 0 {
					return fmt.Errorf("option standalone must not be negative")
				}
				c.Standalone = int(v)
			default:
				return fmt.Errorf("option standalone must be a bool or an integer")
			}
		case "timezone":
			name, ok := val.(string)
			if !ok {
				return fmt.Errorf("option timezone must be a string")
			}
			loc, err := time.LoadLocation(name)
			if err != nil {
				return fmt.Errorf("option timezone: %w", err)
			}
			c.Location = loc
		case "save_size", "save_mtime", "save_mtime_ns":
			on, ok := val.(bool)
			if !ok {
				return fmt.Errorf("option %s must be a bool", key)
			}
			switch key {
			case "save_size":
				c.SaveSize = on
			case "save_mtime":
				c.SaveMtime = on
			default:
				c.SaveMtimeNS = on
			}
		default:
			algo, isSave := strings.CutPrefix(key, "save_")
			if !isSave {
				return fmt.Errorf("unrecognized option: %s", key)
			}
			if _, err := reg.Get(algo); err != nil {
				return fmt.Errorf("unrecognized option: %s", key)
			}
			on, ok := val.(bool)
			if !ok {
				return fmt.Errorf("option %s must be a bool", key)
			}
			c.Checksums[algo] = on
		}
	}
	return nil
}

func (c *PathConfig) applyData(val any) error {
	tbl, ok := val.(map[string]any)
	if !ok || len(tbl) != 1 {
		return fmt.Errorf("option data must contain exactly one of plain, bind, overlay, ignore")
	}
	c.Data, c.Target = DataPlain, ""
	for mode, v := range tbl {
		switch mode {
		case "plain", "ignore":
			if on, ok := v.(bool); !ok || !on {
				return fmt.Errorf("data.%s must be true", mode)
			}
			if mode == "ignore" {
				c.Data = DataIgnore
			}
		case "bind", "overlay":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("data.%s must be a path", mode)
			}
			parts, err := sanitizePath(s)
			if err != nil {
				return err
			}
			c.Data, c.Target = DataBind, path.Join(append([]string{"."}, parts...)...)
			if mode == "overlay" {
				c.Data = DataOverlay
			}
		default:
			return fmt.Errorf("unknown data mode: %s", mode)
		}
	}
	return nil
}

// sanitizePath splits a repository-relative path. Absolute paths and "."
// or ".." components are rejected; "." alone is the root.
func sanitizePath(p string) ([]string, error) {
	if p == "." {
		return nil, nil
	}
	if p == "" || strings.HasPrefix(p, "/") {
		return nil, fmt.Errorf("%w: path %q must be relative", ErrInvalidConfig, p)
	}
	var parts []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "":
			continue
		case ".", "..":
			return nil, fmt.Errorf("%w: path %q cannot contain %q", ErrInvalidConfig, p, s)
		}
		parts = append(parts, s)
	}
	return parts, nil
}

// splitRel splits an already clean relative path
func splitRel(rel string) []string {
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}
