// Package catalog is the relational side of title deletion: it loads titles,
// snapshots their actor associations, counts the references an actor still
// has per title kind, and removes title and actor rows. Reads of whole titles
// go through the optional Redis cache; anything that feeds a reference count
// always reads the database.
package catalog
