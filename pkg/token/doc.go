// Package token provides the bearer tokens that guard the side listener.
//
// A token is 32 random bytes, Base64 RawURL encoded. Only its SHA-256 hash
// (64 hex characters) is kept in configuration; requests are checked by
// hashing the presented token and comparing in constant time.
package token
