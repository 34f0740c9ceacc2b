package clickhouse

import (
	"fmt"
	"strings"

	"adreport/pkg/config"
)

// TableNameResolver maps configured table names onto the cluster layout.
// With a cluster configured, reads go to the _distributed table so every
// shard is covered.
type TableNameResolver struct {
	cluster string
}

// NewTableNameResolver creates a resolver for the configured cluster
func NewTableNameResolver(cfg *config.ClickHouseConfig) *TableNameResolver {
	r := &TableNameResolver{}
	if cfg != nil {
		r.cluster = cfg.Cluster
	}
	return r
}

// IsClusterEnabled reports whether a cluster name is set
func (r *TableNameResolver) IsClusterEnabled() bool {
	return r != nil && r.cluster != ""
}

// ResolveQueryTarget returns the table to read from. Names already carrying
// a _distributed or _local suffix, or a database qualifier, pass through.
func (r *TableNameResolver) ResolveQueryTarget(table string) string {
	if !r.IsClusterEnabled() {
		return table
	}
	if strings.HasSuffix(table, "_distributed") || strings.HasSuffix(table, "_local") {
		return table
	}
	return table + "_distributed"
}

// ValidateTableName checks a table name, optionally database qualified
func ValidateTableName(table string) error {
	if table == "" {
		return fmt.Errorf("%w: table name cannot be empty", ErrInvalidTableName)
	}
	for _, part := range strings.Split(table, ".") {
		if err := validateIdentifier(part); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTableName, err)
		}
	}
	return nil
}

func validateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	if len(name) > 64 {
		return fmt.Errorf("identifier too long (max 64 characters): %s", name)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return fmt.Errorf("identifier contains invalid character '%c': %s", char, name)
		}
	}
	if name[0] >= '0' && name[0] <= '9' {
		return fmt.Errorf("identifier cannot start with a number: %s", name)
	}
	return nil
}
