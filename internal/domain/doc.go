// Package domain holds the core types and repository interfaces shared
// across the service. It has no dependencies on transport or storage.
package domain
