// Package httpserver exposes the unified data store over a JSON HTTP
// API: put, get, summary, update, delete, list, sync, clear, plus a
// health endpoint.
package httpserver
