// Package handler implements the HTTP request handler for the redirect
// service. It serves the welcome page at the root path, resolves every other
// path against the mapping table, and answers with a temporary redirect or
// the not-found page.
package handler
