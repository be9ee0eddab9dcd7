// backend-go/internal/artifact/fs_store.go
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/demandiq/backend-go/internal/domain"
	"github.com/demandiq/backend-go/internal/forecast"
)

// Store persists trained artifacts keyed by (location, category). A
// write always fully replaces the prior artifact for the key; Load
// reports absence through ok=false because a missing artifact is an
// expected state, not a failure.
type Store interface {
	Store(ctx context.Context, artifact *forecast.Artifact) error
	Load(ctx context.Context, key domain.SeriesKey) (*forecast.Artifact, bool, error)
	Delete(ctx context.Context, key domain.SeriesKey) error
}

// FSStore keeps one model payload and one metadata payload per key in a
// single directory, named deterministically from the key so repeated
// runs address the same files. Writes go to a temp file and are
// committed with an atomic rename, so a concurrent reader sees either
// the old artifact or the new one, never a torn mix. Two concurrent
// trainers for the same key still race; the last rename wins.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

// metadata is everything except the model payload: the scaler statistics
// and the canonical column order the model was trained against.
type metadata struct {
	Key       domain.SeriesKey `json:"key"`
	Columns   []string         `json:"columns"`
	Scaler    *forecast.Scaler `json:"scaler"`
	TrainedAt time.Time        `json:"trained_at"`
}

func (s *FSStore) modelPath(key domain.SeriesKey) string {
	return filepath.Join(s.dir, fmt.Sprintf("gbt_%d_%d.json", key.LocationID, key.CategoryID))
}

func (s *FSStore) metaPath(key domain.SeriesKey) string {
	return filepath.Join(s.dir, fmt.Sprintf("gbt_meta_%d_%d.json", key.LocationID, key.CategoryID))
}

func (s *FSStore) Store(ctx context.Context, artifact *forecast.Artifact) error {
	meta := metadata{
		Key:       artifact.Key,
		Columns:   artifact.Columns,
		Scaler:    artifact.Scaler,
		TrainedAt: artifact.TrainedAt,
	}

	if err := writeJSONAtomic(s.modelPath(artifact.Key), artifact.Model); err != nil {
		return fmt.Errorf("store model payload: %w", err)
	}
	if err := writeJSONAtomic(s.metaPath(artifact.Key), meta); err != nil {
		return fmt.Errorf("store artifact metadata: %w", err)
	}
	return nil
}

func (s *FSStore) Load(ctx context.Context, key domain.SeriesKey) (*forecast.Artifact, bool, error) {
	modelRaw, err := os.ReadFile(s.modelPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read model payload: %w", err)
	}

	metaRaw, err := os.ReadFile(s.metaPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read artifact metadata: %w", err)
	}

	var model forecast.GBTModel
	if err := json.Unmarshal(modelRaw, &model); err != nil {
		return nil, false, fmt.Errorf("decode model payload: %w", err)
	}
	var meta metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, false, fmt.Errorf("decode artifact metadata: %w", err)
	}

	return &forecast.Artifact{
		Key:       meta.Key,
		Columns:   meta.Columns,
		Scaler:    meta.Scaler,
		Model:     &model,
		TrainedAt: meta.TrainedAt,
	}, true, nil
}

func (s *FSStore) Delete(ctx context.Context, key domain.SeriesKey) error {
	for _, path := range []string{s.modelPath(key), s.metaPath(key)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Store = (*FSStore)(nil)
var _ forecast.ArtifactSink = (*FSStore)(nil)
var _ forecast.ArtifactSource = (*FSStore)(nil)
