// Package artifact persists the trained delay-risk model. Each Store call
// replaces the previous artifact wholesale; no history is kept.
package artifact

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
)

// Store defines durable, atomic persistence of the single latest artifact.
type Store interface {
	Store(ctx context.Context, a *ml.Artifact) error
	Load(ctx context.Context) (*ml.Artifact, error)
	LastModified(ctx context.Context) (time.Time, error)
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store implementation selected by backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	}
	return nil, errors.Newf("unknown artifact backend %q", backend)
}

func encode(a *ml.Artifact) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "refusing to store incomplete artifact")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling artifact")
	}
	return data, nil
}

func decode(data []byte) (*ml.Artifact, error) {
	var a ml.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(err, "parsing artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "stored artifact is invalid")
	}
	return &a, nil
}
