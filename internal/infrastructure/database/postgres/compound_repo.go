package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
)

// querier is the slice of the pgx pool the repository needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CompoundRepository reads the compound dataset and descriptor statistics
// from PostgreSQL. It is read-only; the exploration service never writes.
type CompoundRepository struct {
	db  querier
	log logging.Logger
}

// NewCompoundRepository constructs a ready-to-use CompoundRepository.
func NewCompoundRepository(db querier, log logging.Logger) *CompoundRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CompoundRepository{db: db, log: log.Named("compound_repo")}
}

// ListCompounds loads the full dataset ordered by name. Descriptor and
// endpoint maps are stored as JSONB columns.
func (r *CompoundRepository) ListCompounds(ctx context.Context) ([]ctypes.Compound, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, descriptors, doses, endpoints, smiles, inchi
		FROM compounds
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query compounds")
	}
	defer rows.Close()

	var out []ctypes.Compound
	for rows.Next() {
		var (
			c           ctypes.Compound
			descriptors []byte
			endpoints   []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &descriptors, &c.Doses, &endpoints, &c.SMILES, &c.InChI); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan compound row")
		}
		if err := decodeCompoundColumns(&c, descriptors, endpoints); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "compound row iteration failed")
	}

	r.log.Debug("loaded compounds from database", logging.Int("count", len(out)))
	return out, nil
}

// DescriptorStats loads the per-descriptor population statistics.
func (r *CompoundRepository) DescriptorStats(ctx context.Context) (ctypes.StatsMap, error) {
	rows, err := r.db.Query(ctx, `
		SELECT key, min, mean, max, count
		FROM descriptor_stats`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query descriptor stats")
	}
	defer rows.Close()

	out := make(ctypes.StatsMap)
	for rows.Next() {
		var (
			key string
			st  ctypes.DescriptorStats
		)
		if err := rows.Scan(&key, &st.Min, &st.Mean, &st.Max, &st.Count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan descriptor stats row")
		}
		out[ctypes.DescriptorKey(key)] = st
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "descriptor stats iteration failed")
	}
	return out, nil
}

// decodeCompoundColumns unmarshals the two JSONB columns into the record.
func decodeCompoundColumns(c *ctypes.Compound, descriptors, endpoints []byte) error {
	if len(descriptors) > 0 {
		if err := json.Unmarshal(descriptors, &c.Descriptors); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetMalformed, "malformed descriptors column").
				WithDetail(c.Name)
		}
	}
	if len(endpoints) > 0 {
		if err := json.Unmarshal(endpoints, &c.Endpoints); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetMalformed, "malformed endpoints column").
				WithDetail(c.Name)
		}
	}
	return nil
}
