// SPDX-License-Identifier: MPL-2.0

// Package rmmfile defines the on-disk manifests of an rmm module project
// and their codecs.
//
// A project directory is identified by its marker manifest, rmmproject.toml,
// which holds the ProjectDescriptor (identity, version bookkeeping, authors,
// dependencies, scripts). Local build tuning lives apart from the identity in
// .rmmp/Rmake.toml, decoded into a BuildSpec and validated against an
// embedded CUE schema. The device runtime reads a third file, module.prop,
// which this package keeps in lockstep with the descriptor.
package rmmfile
