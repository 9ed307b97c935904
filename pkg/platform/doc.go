// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the platform-specific concerns of the build
// orchestrator, such as which shell dispatches lifecycle hooks on the
// current operating system.
package platform
