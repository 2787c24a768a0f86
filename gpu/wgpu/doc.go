// Copyright 2026 The duelgame Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package wgpu provides the hardware-accelerated device backend on top of the
// wgpu HAL's Vulkan implementation.
//
// Importing the package registers the backend:
//
//	import _ "github.com/duelgame/shell/gpu/wgpu"
//
// The backend registers at a higher priority than the built-in software
// fallback, so shell.DefaultDevice prefers it whenever a Vulkan driver is
// present. Build with the nogpu tag to exclude it entirely.
//
// Window handles must implement RawWindow to be bound to a hardware surface.
package wgpu
