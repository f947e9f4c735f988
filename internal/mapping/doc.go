// Package mapping implements the redirect resolution engine. A Table holds
// the immutable set of standard (exact) mappings and ordered, pre-compiled
// pattern mappings built once at startup; Resolve turns a request path into
// a redirect target or a not-found outcome. Tables are never mutated after
// construction and are safe for concurrent use without locking.
package mapping
