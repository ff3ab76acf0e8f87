package postgres

import (
	"context"
	"fmt"

	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"

	"gorm.io/gorm"
)

// numberFormats maps a sequence to its database sequence and display prefix.
var numberFormats = map[string]struct {
	seq    string
	prefix string
}{
	ports.OrderNumbers: {seq: "order_number_seq", prefix: "ORD"},
	ports.RouteNumbers: {seq: "route_number_seq", prefix: "RT"},
}

// SequenceNumberGenerator issues human readable numbers such as ORD-000042
// from PostgreSQL sequences. Numbers are never reused, even when the
// transaction that drew one rolls back.
type SequenceNumberGenerator struct {
	db *gorm.DB
}

func NewSequenceNumberGenerator(db *gorm.DB) *SequenceNumberGenerator {
	return &SequenceNumberGenerator{db: db}
}

func (g *SequenceNumberGenerator) Next(ctx context.Context, sequence string) (string, error) {
	format, ok := numberFormats[sequence]
	if !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("unknown sequence %q", sequence))
	}

	var n int64
	if err := g.db.WithContext(ctx).Raw("SELECT nextval(?::regclass)", format.seq).Scan(&n).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%06d", format.prefix, n), nil
}
