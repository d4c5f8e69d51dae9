package types

// Record is one raw tuple produced by a record source. ParentID is empty
// only for the record declaring the root.
type Record struct {
	ID       string
	ParentID string
	Name     string
	Rank     string
}

// Node is a member of a built tree. ParentID is empty only for the root.
type Node struct {
	ID       string `yaml:"id" json:"id"`
	ParentID string `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	Name     string `yaml:"name" json:"name"`
	Rank     string `yaml:"rank" json:"rank"`
}

func (n Node) Record() Record {
	return Record(n)
}
