// Package batch runs one tool operation over several ids and reports the
// per-id outcome in a single JSON document, so a partial failure does not
// hide the results that succeeded.
package batch
