// Package store defines the persistence interfaces and shared store errors
// used by the service layer, independent of any concrete database backend.
package store
