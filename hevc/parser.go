/*
DESCRIPTION
  parser.go is the package's entry point: it drives NAL unit framing,
  dispatches each unit to the matching syntax parser, keeps the
  id-indexed parameter-set tables a decode session needs, and tracks POC
  across the sequence of slices it sees.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hevc

import (
	"github.com/ausocean/hevc/internal/logging"
	"github.com/ausocean/hevc/nal"
)

// Log is the package-wide logger for parse-time field decisions and
// recoverable/fatal conditions. Callers that want output should assign it
// before use, e.g. hevc.Log = logging.New().
var Log logging.Logger = logging.Noop()

// Unit is one decoded NAL unit's result: the framing info, and whichever
// of VPS/SPS/PPS/SliceHeader this unit carried (at most one is non-nil).
// PicParams and QMatrix are populated only for slice NAL units, once the
// referenced parameter sets are available.
type Unit struct {
	Header nal.Header

	VPS          *VPS
	SPS          *SPS
	PPS          *PPS
	SliceHeader  *SliceHeader
	POC          int32

	PicParams    *PicParams
	QMatrix      *QMatrix
	SliceControl SliceControl
}

// Parser decodes a sequence of HEVC NAL units, keeping the parameter-set
// and POC-tracking state that later NAL units in the same session depend
// on. Two independent streams must each use their own Parser; a Parser
// carries no state that is safe to share across goroutines.
type Parser struct {
	vpsTable map[uint8]*VPS
	spsTable map[uint8]*SPS
	ppsTable map[uint8]*PPS

	poc POCTracker

	priorSliceHeader *SliceHeader
	havePicture      bool
}

// NewParser returns a Parser with empty parameter-set tables.
func NewParser() *Parser {
	return &Parser{
		vpsTable: make(map[uint8]*VPS),
		spsTable: make(map[uint8]*SPS),
		ppsTable: make(map[uint8]*PPS),
	}
}

// Parse splits data into NAL units and decodes each one in turn, in the
// order they appear. data is assumed to hold whole NAL units; this
// package does not reassemble NAL units split across calls.
func (p *Parser) Parse(data []byte) ([]Unit, error) {
	nalUnits, err := nal.Split(data)
	if err != nil {
		return nil, invalid("nal split", err)
	}

	units := make([]Unit, 0, len(nalUnits))
	for _, nu := range nalUnits {
		u, err := p.parseOne(nu)
		if err != nil {
			return units, err
		}
		units = append(units, u)
	}
	return units, nil
}

func (p *Parser) parseOne(nu nal.Unit) (Unit, error) {
	u := Unit{Header: nu.Header}

	switch {
	case nu.Type == nal.TypeVPS:
		vps, err := ParseVPS(nu.RBSP)
		if err != nil {
			Log.Error("vps parse failed", "err", err)
			return u, err
		}
		Log.Debug("parsed vps", "id", vps.ID)
		p.vpsTable[vps.ID] = vps
		u.VPS = vps

	case nu.Type == nal.TypeSPS:
		sps, err := ParseSPS(nu.RBSP)
		if err != nil {
			Log.Error("sps parse failed", "err", err)
			return u, err
		}
		if _, ok := p.vpsTable[sps.VideoParameterSetID]; !ok {
			Log.Warning("sps references unknown vps", "sps_id", sps.ID, "vps_id", sps.VideoParameterSetID)
			return u, missingParamSet("vps")
		}
		Log.Debug("parsed sps", "id", sps.ID, "vps_id", sps.VideoParameterSetID)
		p.spsTable[sps.ID] = sps
		u.SPS = sps

	case nu.Type == nal.TypePPS:
		pps, err := ParsePPS(nu.RBSP)
		if err != nil {
			Log.Error("pps parse failed", "err", err)
			return u, err
		}
		if _, ok := p.spsTable[pps.SeqParameterSetID]; !ok {
			Log.Warning("pps references unknown sps", "pps_id", pps.ID, "sps_id", pps.SeqParameterSetID)
			return u, missingParamSet("sps")
		}
		Log.Debug("parsed pps", "id", pps.ID, "sps_id", pps.SeqParameterSetID)
		p.ppsTable[pps.ID] = pps
		u.PPS = pps

	case nu.Type == nal.TypeAUD, nu.Type == nal.TypeEOS, nu.Type == nal.TypeEOB, nu.Type == nal.TypeFD:
		// Framing-only units; nothing to decode.

	case nu.Type == nal.TypePrefixSEI, nu.Type == nal.TypeSuffixSEI:
		// SEI payload parsing is out of scope; the unit is still framed.

	case nu.IsVCL():
		sh, pps, sps, err := p.parseSlice(nu)
		if err != nil {
			Log.Error("slice header parse failed", "err", err)
			return u, err
		}
		u.SliceHeader = sh
		isIDR := nu.IsIDR()
		u.POC = p.poc.Next(int32(sh.Body.SlicePicOrderCntLsb), MaxPicOrderCntLsb(sps.Log2MaxPicOrderCntLsbMinus4), isIDR, sh.IsBSlice())
		Log.Debug("parsed slice", "nal_type", nu.Type, "pps_id", sh.PPSID, "poc", u.POC)

		u.PicParams = LowerPicParams(sps, pps, sh)
		u.QMatrix = LowerQMatrix(sps, pps)
		u.SliceControl = LowerSliceControl(nu.StartCodeLen, len(nu.RBSP)+nu.EPBCount)

	default:
		Log.Warning("unrecognized non-VCL NAL type", "type", nu.Type)
		return u, unsupported("unrecognized non-VCL NAL type")
	}

	return u, nil
}

// parseSlice resolves the PPS/SPS a slice NAL references, parses its
// header, and maintains the per-picture dependent-slice inheritance chain.
func (p *Parser) parseSlice(nu nal.Unit) (*SliceHeader, *PPS, *SPS, error) {
	getPPS := func(id uint8) (*PPS, bool) { pps, ok := p.ppsTable[id]; return pps, ok }
	getSPS := func(id uint8) (*SPS, bool) { sps, ok := p.spsTable[id]; return sps, ok }

	sh, err := ParseSliceHeader(nu.RBSP, nu.Type, nu.LayerID, getPPS, getSPS, p.priorChain())
	if err != nil {
		return nil, nil, nil, err
	}

	pps := p.ppsTable[sh.PPSID]
	sps := p.spsTable[pps.SeqParameterSetID]

	if sh.FirstSliceSegmentInPicFlag {
		p.havePicture = true
	}
	p.priorSliceHeader = sh

	return sh, pps, sps, nil
}

// priorChain returns the most recently parsed slice header, which a
// dependent segment inherits from, or nil if no first slice segment of a
// picture has been parsed yet.
func (p *Parser) priorChain() *SliceHeader {
	if !p.havePicture {
		return nil
	}
	return p.priorSliceHeader
}
