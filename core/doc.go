// Package core contains the canonical domain contracts for the private-cloud
// agent: credentials, tokens, service catalogs, request descriptors, and the
// error taxonomy. Transport, identity, and session packages depend on core;
// core must not depend on any of them.
package core
