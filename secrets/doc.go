// Package secrets resolves secret references used by deployment profiles.
//
// A reference is one of:
//
//	literal                                     used as is
//	env:NAME                                    value of environment variable NAME
//	file:/path/to/file                          file contents, trailing newline trimmed
//	vault://host:port/mount/path?field=name     field of a KV v2 secret in HashiCorp Vault
//
// Vault references authenticate with the token in VAULT_TOKEN. The query
// parameter scheme=http selects plain HTTP, which is only meant for local
// development servers.
package secrets
