package rotation

import (
	"fmt"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

// BucketStore is the slice of S3 the rotation needs. Implemented by the s3
// connector client.
type BucketStore interface {
	ListBucketNames() ([]string, error)
	Exists(bucket string) (bool, error)
	Create(bucket string) error
	EnableVersioning(bucket string) error
	Tag(bucket string, tags map[string]string) error
	Empty(bucket string) error
	Delete(bucket string) error
}

// Manager rotates the lambda deployment buckets of one project/environment.
type Manager struct {
	Project     string
	Environment string
	Retention   int

	store  BucketStore
	logger logging.LogManager
}

func NewManager(store BucketStore, project, environment string) *Manager {
	return &Manager{
		Project:     project,
		Environment: environment,
		Retention:   DefaultRetention,
		store:       store,
		logger:      logging.GetLogManager(),
	}
}

// Latest returns the highest-ordinal existing bucket, or ok=false when the
// project has none yet.
func (m *Manager) Latest() (BucketName, bool, error) {
	names, err := m.store.ListBucketNames()
	if err != nil {
		return BucketName{}, false, err
	}
	latest, ok := Latest(names, m.Project, m.Environment)
	return latest, ok, nil
}

// Next returns the bucket name the next rotation would create.
func (m *Manager) Next() (BucketName, error) {
	names, err := m.store.ListBucketNames()
	if err != nil {
		return BucketName{}, err
	}
	return ProposeNext(names, m.Project, m.Environment)
}

// CreateNext creates the next bucket in the sequence: versioned, tagged, and
// reused rather than recreated when it already exists.
func (m *Manager) CreateNext() (BucketName, bool, error) {
	next, err := m.Next()
	if err != nil {
		return BucketName{}, false, err
	}
	name := next.String()

	exists, err := m.store.Exists(name)
	if err != nil {
		return BucketName{}, false, fmt.Errorf("head-checking %s: %w", name, err)
	}
	if exists {
		m.logger.Info("Bucket already exists, using it", "bucket", name)
		return next, false, nil
	}

	m.logger.Info("Creating bucket", "bucket", name)
	if err := m.store.Create(name); err != nil {
		return BucketName{}, false, fmt.Errorf("creating %s: %w", name, err)
	}
	if err := m.store.EnableVersioning(name); err != nil {
		return BucketName{}, false, fmt.Errorf("enabling versioning on %s: %w", name, err)
	}
	err = m.store.Tag(name, map[string]string{
		"Project":     m.Project,
		"Environment": m.Environment,
		"Purpose":     "lambda-deployment",
		"ManagedBy":   "bucket-rotation",
	})
	if err != nil {
		return BucketName{}, false, fmt.Errorf("tagging %s: %w", name, err)
	}

	return next, true, nil
}

// RotateAndCreate creates the next bucket and then cleans up expired ones.
// When the bucket already existed nothing rotated, so cleanup is skipped.
func (m *Manager) RotateAndCreate() (BucketName, []string, error) {
	created, fresh, err := m.CreateNext()
	if err != nil {
		return BucketName{}, nil, err
	}
	if !fresh {
		return created, nil, nil
	}
	deleted, err := m.Cleanup()
	return created, deleted, err
}

// Cleanup empties and deletes buckets beyond the retention window, newest
// kept. A failing bucket is logged and skipped so one stuck bucket cannot
// block the whole rotation.
func (m *Manager) Cleanup() ([]string, error) {
	names, err := m.store.ListBucketNames()
	if err != nil {
		return nil, err
	}

	expired := Expired(names, m.Project, m.Environment, m.Retention)
	if len(expired) == 0 {
		m.logger.Info("Nothing to clean up", "retention", m.Retention)
		return nil, nil
	}

	var deleted []string
	for _, bucket := range expired {
		name := bucket.String()
		m.logger.Info("Deleting old bucket", "bucket", name)
		if err := m.store.Empty(name); err != nil {
			m.logger.Warn("Could not empty bucket, skipping", "bucket", name, "err", err)
			continue
		}
		if err := m.store.Delete(name); err != nil {
			m.logger.Warn("Could not delete bucket, skipping", "bucket", name, "err", err)
			continue
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
