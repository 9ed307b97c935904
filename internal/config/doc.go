// SPDX-License-Identifier: MPL-2.0

// Package config handles the global project registry using Viper over TOML.
//
// The registry file, meta.toml, lives under the RMM root ($RMM_ROOT if set,
// ~/data/adb/.rmm otherwise) and records the developer identity, the tool
// version that last wrote it, an optional access token, and the id->path map
// of every known project. It is loaded fresh at the start of each command
// and saved at the end; nothing is cached across invocations. Saves go
// through a temporary file and an atomic rename so a crash mid-write never
// corrupts the existing registry.
package config
