// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides, usually command-line flags
//  2. Environment variables (RESPKV_ prefix), including any exported from
//     dotenv files named with WithEnvFiles
//  3. A YAML configuration file
//  4. Defaults already present in the target struct
//
// Environment variable names map to keys by lower-casing and turning a
// double underscore into a dot, so single underscores survive inside key
// names: RESPKV_SERVER__REDIS__READ_CHUNK_SIZE sets
// server.redis.read_chunk_size.
//
// Watcher reports changes to the configuration file so the server can
// re-read it at runtime.
package confloader
