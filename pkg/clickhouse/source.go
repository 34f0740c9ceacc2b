package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"adreport/pkg/logger"
	"adreport/pkg/source"
	"adreport/pkg/utils/dateutils"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// AnalyticsSource answers analytics reports from an exported events table
type AnalyticsSource struct {
	db         Querier
	table      string
	propertyID string
}

var _ source.AnalyticsSource = (*AnalyticsSource)(nil)

// NewAnalyticsSource creates an analytics source over table
func NewAnalyticsSource(db Querier, resolver *TableNameResolver, table, propertyID string) (*AnalyticsSource, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	return &AnalyticsSource{db: db, table: resolver.ResolveQueryTarget(table), propertyID: propertyID}, nil
}

// RunReport aggregates the table by dimensions over start..end
func (s *AnalyticsSource) RunReport(ctx context.Context, dimensions, metrics []string, start, end string, limit int) ([]source.Row, error) {
	query, err := buildAnalyticsQuery(s.table, s.propertyID, dimensions, metrics, start, end, limit)
	if err != nil {
		return nil, err
	}
	return runQuery(ctx, s.db, s.table, query)
}

// AdsSource runs SQL produced by SQLBuilder
type AdsSource struct {
	db Querier
}

var _ source.AdsSource = (*AdsSource)(nil)

// NewAdsSource creates an ads source
func NewAdsSource(db Querier) *AdsSource {
	return &AdsSource{db: db}
}

// RunQuery runs query, retrying once with fallback when it fails
func (s *AdsSource) RunQuery(ctx context.Context, query, fallback string) ([]source.Row, error) {
	return source.QueryWithFallback(ctx, query, fallback, func(ctx context.Context, q string) ([]source.Row, error) {
		return runQuery(ctx, s.db, "", q)
	})
}

func runQuery(ctx context.Context, db Querier, table, query string) ([]source.Row, error) {
	began := time.Now()
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, WrapError("query", table, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, WrapError("scan", table, err)
	}

	logger.FromContext(ctx).Debug("Warehouse query finished",
		zap.String("provider", "clickhouse"),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(began)))
	return out, nil
}

// rowIterator is the part of driver.Rows needed to read generic rows
type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	ColumnTypes() []driver.ColumnType
	Err() error
}

// scanRows reads every row into a source.Row keyed by column name
func scanRows(rows rowIterator) ([]source.Row, error) {
	types := rows.ColumnTypes()
	out := make([]source.Row, 0)
	for rows.Next() {
		dest := make([]any, len(types))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(source.Row, len(types))
		for i, ct := range types {
			row[ct.Name()] = normalizeValue(reflect.ValueOf(dest[i]).Elem())
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeValue maps driver values onto the int64 / float64 / string shapes
// the analysis layer expects. Nullable columns arrive as pointers.
func normalizeValue(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return dateutils.FormatDate(t)
	}
	// decimals and big ints, String may sit on the pointer receiver
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return source.Coerce(s.String())
	}
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return source.Coerce(s.String())
		}
	}
	return v.Interface()
}
