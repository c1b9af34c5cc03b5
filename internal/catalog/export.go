package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// QueryDef is one stored query in an export document.
type QueryDef struct {
	Name     string `yaml:"name"`
	SQL      string `yaml:"sql"`
	Resolved bool   `yaml:"resolved,omitempty"`
}

// QueryFile is the YAML document written by ExportQueries and read back by
// the LOAD statement.
type QueryFile struct {
	Database string     `yaml:"database,omitempty"`
	Queries  []QueryDef `yaml:"queries"`
}

// Definitions lists the stored queries in name order.
func (db *Database) Definitions() []QueryDef {
	names := db.QueryNames()
	defs := make([]QueryDef, 0, len(names))
	for _, name := range names {
		q := db.queries[name]
		defs = append(defs, QueryDef{Name: name, SQL: q.SQL(), Resolved: q.Resolved()})
	}
	return defs
}

func (db *Database) ExportQueries(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(QueryFile{Database: db.name, Queries: db.Definitions()}); err != nil {
		return fmt.Errorf("catalog: encode queries: %w", err)
	}
	return enc.Close()
}

func DecodeQueries(r io.Reader) (*QueryFile, error) {
	var f QueryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("catalog: decode queries: %w", err)
	}
	return &f, nil
}
