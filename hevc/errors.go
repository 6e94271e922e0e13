/*
DESCRIPTION
  errors.go defines the typed error taxonomy used throughout the parser and
  writer, matching the four-way classification of the source implementation.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hevc implements an HEVC (H.265) Annex-B bitstream syntax parser
// and writer: parameter set and slice header decoding, the derivation
// engine that fills in values implied by those structures, and lowering of
// parsed state into hardware-decode descriptors.
package hevc

import (
	"errors"
	"fmt"

	"github.com/ausocean/hevc/bits"
)

// Kind classifies why parsing or writing failed.
type Kind int

const (
	// InvalidStream means the bitstream violated a range constraint or
	// structural invariant (a malformed syntax element).
	InvalidStream Kind = iota
	// UnsupportedStream means the bitstream is well-formed but uses a
	// feature this parser deliberately does not implement (multilayer, 3D,
	// screen-content extensions, interlaced sources).
	UnsupportedStream
	// EndOfStream means a read ran past the end of the available bits.
	EndOfStream
	// MissingParameterSet means a slice or parameter set referenced an id
	// that has not been parsed.
	MissingParameterSet
)

func (k Kind) String() string {
	switch k {
	case InvalidStream:
		return "invalid stream"
	case UnsupportedStream:
		return "unsupported stream"
	case EndOfStream:
		return "end of stream"
	case MissingParameterSet:
		return "missing parameter set"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every parsing operation in this
// package; the writers do not return errors. Field names the syntax
// element or derived value that failed, for diagnostics; it is not meant to
// be matched on.
type Error struct {
	Kind  Kind
	Field string
	Err   error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hevc: %s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("hevc: %s: %s", e.Kind, e.Field)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, field string, err error) *Error {
	return &Error{Kind: k, Field: field, Err: err}
}

func invalid(field string, err error) *Error {
	if errors.Is(err, bits.ErrStreamExhausted) {
		return newErr(EndOfStream, field, err)
	}
	return newErr(InvalidStream, field, err)
}

func unsupported(field string) *Error {
	return newErr(UnsupportedStream, field, nil)
}

func missingParamSet(field string) *Error {
	return newErr(MissingParameterSet, field, nil)
}
