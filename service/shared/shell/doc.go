// Package shell holds the infrastructure shared by all feature slices of the library service:
// the command and query contracts, retry with exponential backoff for concurrency conflicts,
// and the observability helpers used by the observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
