// Package types defines the Directory and Table interfaces, the schema
// descriptors for the phone directory, records, change notifications, and
// the store error taxonomy shared by every backend.
package types
