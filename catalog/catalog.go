// Package catalog registers persisted results under queryable table
// names, backed by a boltdb file. It stands in for the metastore a SQL
// layer would consult to find the parquet files behind a table.
package catalog

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var tablesBucket = []byte("tables")

// Entry describes one registered table.
type Entry struct {
	Table     string    `json:"table"`
	Files     []string  `json:"files"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog is a durable table registry.
type Catalog struct {
	db *bolt.DB
}

// Open opens (or creates) the catalog db at filename.
func Open(filename string) (*Catalog, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog db '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tablesBucket)
		return errors.Wrap(err, "creating tables bucket")
	})
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// Register records entry under its table name, replacing any previous
// registration of that name.
func (c *Catalog) Register(entry Entry) error {
	if entry.Table == "" {
		return errors.New("entry has no table name")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshaling entry")
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(tx.Bucket(tablesBucket).Put([]byte(entry.Table), val), "registering %s", entry.Table)
	})
}

// Lookup returns the entry registered under table. found is false if
// no such table is registered.
func (c *Catalog) Lookup(table string) (entry Entry, found bool, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(tablesBucket).Get([]byte(table))
		if val == nil {
			return nil
		}
		found = true
		return errors.Wrapf(json.Unmarshal(val, &entry), "unmarshaling entry for %s", table)
	})
	return entry, found, err
}

// Tables lists the registered table names in key order.
func (c *Catalog) Tables() ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tablesBucket).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, errors.Wrap(err, "listing tables")
}

// Close syncs and closes the underlying db.
func (c *Catalog) Close() error {
	if err := c.db.Sync(); err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return c.db.Close()
}
