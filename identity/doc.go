// Package identity implements the two incompatible token-issuance protocols
// the agent speaks: the legacy v2 protocol, where token, expiry, and catalog
// all arrive in the JSON body, and the v3 protocol, where the token value
// arrives in a response header and the body carries expiry plus catalog.
// Both normalize into core.Token and core.ServiceCatalog.
package identity
