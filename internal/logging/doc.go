// Package logging centralizes slog construction and structured field
// conventions for mediacat.
//
// New builds a console or JSON logger from config values. The Attr helpers and
// Field* constants keep key names consistent across packages, and WithContext
// threads run-scoped correlation fields (run id, phase) into any logger.
package logging
