package journal

import "github.com/starford/postmigrate/internal/models"

// Journal defines the migration journal operations. Consumers depend on this
// interface; the migrator runs without one when no journal path is set.
type Journal interface {
	Record(o models.Outcome) error
	Get(filename string) (*models.Outcome, error)
	List(status models.Status, limit, offset int) ([]models.Outcome, int, error)
	Search(query string, limit int) ([]models.Outcome, error)
	Checksums() (map[string]string, error)
	Delete(filename string) error
	Close() error
}

// Verify *DB satisfies Journal at compile time.
var _ Journal = (*DB)(nil)
