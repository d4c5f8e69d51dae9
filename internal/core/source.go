package core

import (
	"context"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

// StaticSource serves an in-memory record slice.
type StaticSource struct {
	Root  string
	Items []types.Record
}

func NewStaticSource(root string, records []types.Record) StaticSource {
	return StaticSource{Root: root, Items: records}
}

func (s StaticSource) RootID() string {
	return s.Root
}

func (s StaticSource) Records(ctx context.Context, yield func(types.Record) error) error {
	for _, rec := range s.Items {
		if err := yield(rec); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.RecordSource = StaticSource{}
