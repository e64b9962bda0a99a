// Package unified defines the unified data model: keys, runtime
// metadata, polymorphic records, and derived summaries.
//
// A unified data object is one user-facing data transfer (clipboard
// content, a drag payload) made of a Runtime record and zero or more
// typed Records. Objects are addressed by a Key of the form
// udmf://{intention}/{bundleName}/{groupID}.
package unified
