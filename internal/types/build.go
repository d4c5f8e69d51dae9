package types

// BuildOptions are the construction parameters supplied by an adapter.
// Both policies must be set explicitly; there is no implicit default.
type BuildOptions struct {
	RootID          string          `yaml:"root_id"`
	OrphanPolicy    OrphanPolicy    `yaml:"orphan_policy"`
	DuplicatePolicy DuplicatePolicy `yaml:"duplicate_policy"`
	SynthesizeRoot  bool            `yaml:"synthesize_root"`
}

// Diagnostics collects the non-fatal findings of a build.
type Diagnostics struct {
	Records         int      `yaml:"records"`
	Orphans         []string `yaml:"orphans,omitempty"`
	Reparented      []string `yaml:"reparented,omitempty"`
	Disconnected    []string `yaml:"disconnected,omitempty"`
	Overwritten     []string `yaml:"overwritten,omitempty"`
	SynthesizedRoot bool     `yaml:"synthesized_root"`
}

func (d Diagnostics) Clean() bool {
	return len(d.Orphans) == 0 &&
		len(d.Reparented) == 0 &&
		len(d.Disconnected) == 0 &&
		len(d.Overwritten) == 0 &&
		!d.SynthesizedRoot
}

type Stats struct {
	Nodes    int            `yaml:"nodes"`
	Leaves   int            `yaml:"leaves"`
	MaxDepth int            `yaml:"max_depth"`
	Ranks    map[string]int `yaml:"ranks"`
}

// BuildReport is the persisted summary of a build.
type BuildReport struct {
	Provider    ProviderKind `yaml:"provider"`
	Input       string       `yaml:"input"`
	Options     BuildOptions `yaml:"options"`
	Diagnostics Diagnostics  `yaml:"diagnostics"`
	Stats       Stats        `yaml:"stats"`
	CreatedAt   string       `yaml:"created_at"`
}
