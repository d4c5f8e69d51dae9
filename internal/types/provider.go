package types

// ProviderProfile describes how a provider is fetched and which build
// options suit its data. Options are suggestions surfaced to the caller;
// explicit options always win.
type ProviderProfile struct {
	Kind        ProviderKind `yaml:"kind"`
	Description string       `yaml:"description"`
	RootID      string       `yaml:"root_id,omitempty"`
	URLs        []string     `yaml:"urls,omitempty"`
	Options     BuildOptions `yaml:"options"`
}
