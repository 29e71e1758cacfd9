// Package core provides the validation and cleaning engine for uploaded datasets.
//
// This package holds all domain logic independent of any UI or transport layer.
// It can be used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Dataset: an immutable table of tagged cells ([Value]) loaded from CSV or
//     XLSX by [LoadFile]. Row identity is the positional index.
//   - Checks: five column checks ([CheckKind]). [InvalidRows] is the single
//     predicate source; [Validate], [ExtractInvalid] and [RemoveInvalid] are
//     views over it, so counts, samples, exports and deletions always agree.
//   - Session: one user's Home, Preview, Results, Cleaned workflow. Actions on
//     the wrong page return a [*StateError] naming the page to recover to.
//   - Service: the entry point the web layer calls to parse uploads under a
//     concurrency limit ([ParseLimiter]) and to reach the [SessionStore].
//
// # Checks
//
//	res, err := core.Validate(ds, "score", core.NumericFormat)
//	// res.InvalidCount, res.Sample (first 10 invalid cells)
//
//	bad, err := core.ExtractInvalid(ds, "score", core.NumericFormat)
//	clean, err := core.RemoveInvalid(ds, "score", core.NumericFormat)
//	// clean.Before == clean.After + clean.Deleted
//
// # Uploads
//
// CSV uploads are decoded on the fly (BOM removal, UTF-16 detection, invalid
// UTF-8 replacement) before parsing. Loading is all-or-nothing: a parse error
// leaves the session's current dataset in place.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL004: Validation errors (column, check, nothing to clean)
//   - FILE001-FILE006: File errors (size, format, empty)
//   - SES001-SES003: Session errors (no dataset, expired, wrong page)
//   - UPL001-UPL003: Upload errors (busy, cancelled, timeout)
//   - RATE001: Rate limit exceeded
package core
