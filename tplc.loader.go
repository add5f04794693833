package tplc

import (
	"sort"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// LoaderDriver is a factory for loaders. Drivers register themselves
// during init().
type LoaderDriver interface {
	// Open creates a loader. The connection string is driver-specific.
	Open(connectionString string) (Loader, error)
}

// Loader driver registry
var (
	loaderDriversMu sync.RWMutex
	loaderDrivers   = make(map[string]LoaderDriver)
)

// RegisterLoaderDriver registers a loader driver by name.
// Panics if a driver with the same name is already registered.
func RegisterLoaderDriver(name string, driver LoaderDriver) {
	loaderDriversMu.Lock()
	defer loaderDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilLoaderDriver)
	}
	if _, exists := loaderDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	loaderDrivers[name] = driver
}

// OpenLoader opens a loader using the named driver.
//
// Example:
//
//	loader, err := tplc.OpenLoader("memory", "")
//	loader, err := tplc.OpenLoader("file", "/path/to/templates")
//	loader, err := tplc.OpenLoader("postgres", "postgres://localhost/app?sslmode=disable")
func OpenLoader(driverName, connectionString string) (Loader, error) {
	loaderDriversMu.RLock()
	driver, ok := loaderDrivers[driverName]
	loaderDriversMu.RUnlock()

	if !ok {
		return nil, cuserr.NewNotFoundError(MetaKeyDriver, ErrMsgLoaderDriverNotFound).
			WithMetadata(MetaKeyDriver, driverName)
	}
	return driver.Open(connectionString)
}

// ListLoaderDrivers returns the names of all registered loader drivers, sorted.
func ListLoaderDrivers() []string {
	loaderDriversMu.RLock()
	defer loaderDriversMu.RUnlock()

	names := make([]string, 0, len(loaderDrivers))
	for name := range loaderDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader driver names
const (
	LoaderDriverMemory   = "memory"
	LoaderDriverFile     = "file"
	LoaderDriverPostgres = "postgres"
)

// Loader driver error message constants
const (
	ErrMsgNilLoaderDriver         = "loader driver is nil"
	ErrMsgDriverAlreadyRegistered = "loader driver already registered"
	ErrMsgLoaderDriverNotFound    = "loader driver not found"
	MetaKeyDriver                 = "driver"
)
