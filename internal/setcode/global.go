package setcode

import "sync/atomic"

var current atomic.Pointer[Table]

// Current returns the process-wide table, Empty until something is stored.
func Current() *Table {
	if t := current.Load(); t != nil {
		return t
	}
	return Empty
}

// Store replaces the process-wide table.
func Store(t *Table) {
	if t == nil {
		t = Empty
	}
	current.Store(t)
}

// Reload loads paths and swaps the result in. On error the old table stays.
func Reload(paths ...string) error {
	t, err := Load(paths...)
	if err != nil {
		return err
	}
	Store(t)
	return nil
}

// ReloadFromString swaps in a table built from configuration text.
func ReloadFromString(text string) {
	Store(FromString(text))
}
