// SPDX-License-Identifier: MPL-2.0

// Package variadic declares a command the generator must reject.
package variadic

type Handler struct{}

func (h *Handler) CmdEcho(words ...string) {}
