// SPDX-License-Identifier: MIT

// Package wire defines the coordinator ↔ stakeholder protocol.
//
// Messages form a closed set: every type in this package implements the
// sealed Message interface and nothing else can. On the stream each message
// is one JSON line:
//
//	{"type":"continue","body":{"round":3,"seeds":[[0,2,1],[1,0,2]]}}
//
// Direction of travel:
//
//	stakeholder → coordinator: Hello (once), Result, Withdraw
//	coordinator → stakeholder: Init (round 0), Continue (rounds > 0),
//	                           RequestResult, Stop
//
// Conn wraps a net.Conn. Receive maps a closed or reset stream to
// ErrChannelClosed and an unknown tag or malformed body to
// ErrProtocolViolation, so callers can tell a dead peer from a confused one.
package wire
