// Package api contains the HTTP handlers, request/response models and
// error mapping for the REST surface. Handlers stay thin: decode, validate,
// call a service or store, translate errors, encode.
package api
