/*
DESCRIPTION
  ptl.go parses the profile_tier_level() syntax structure shared by the
  video and sequence parameter sets.

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

import "github.com/ausocean/hevc/bits"

const maxSubLayers = 8

// ProfileTierLevel corresponds to the general and sub-layer profile_tier_
// level() fields of 7.3.3. Sub-layer PTL content is discarded once parsed
// bit-accurately; only the presence flags are retained.
type ProfileTierLevel struct {
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralProgressiveSourceFlag     bool
	GeneralInterlacedSourceFlag      bool
	GeneralNonPackedConstraintFlag   bool
	GeneralFrameOnlyConstraintFlag   bool
	GeneralLevelIDC                  uint8

	SubLayerProfilePresentFlag [maxSubLayers]bool
	SubLayerLevelPresentFlag   [maxSubLayers]bool
}

// parseProfileTierLevel parses profile_tier_level(profilePresentFlag,
// maxNumSubLayersMinus1) per 7.3.3. profilePresentFlag is always true for
// the general PTL in both VPS and SPS call sites this parser supports.
func parseProfileTierLevel(r *fieldReader, maxNumSubLayersMinus1 int) (*ProfileTierLevel, error) {
	p := &ProfileTierLevel{}

	p.GeneralProfileSpace = uint8(r.u(2))
	p.GeneralTierFlag = r.flag()
	p.GeneralProfileIDC = uint8(r.u(5))
	p.GeneralProfileCompatibilityFlags = uint32(r.u(32))
	p.GeneralProgressiveSourceFlag = r.flag()
	p.GeneralInterlacedSourceFlag = r.flag()
	p.GeneralNonPackedConstraintFlag = r.flag()
	p.GeneralFrameOnlyConstraintFlag = r.flag()
	r.skip(43) // general_reserved_zero_43bits
	r.skip(1)  // general_reserved_zero_bit / general_inbld_flag, ignored
	p.GeneralLevelIDC = uint8(r.u(8))
	if err := r.err(); err != nil {
		return nil, invalid("profile_tier_level", err)
	}

	if p.GeneralProfileSpace != 0 {
		return nil, unsupported("general_profile_space")
	}
	if p.GeneralProfileIDC > 11 {
		return nil, invalid("general_profile_idc", nil)
	}
	if p.GeneralInterlacedSourceFlag {
		return nil, unsupported("general_interlaced_source_flag")
	}

	for i := 0; i < maxNumSubLayersMinus1; i++ {
		p.SubLayerProfilePresentFlag[i] = r.flag()
		p.SubLayerLevelPresentFlag[i] = r.flag()
	}
	if err := r.err(); err != nil {
		return nil, invalid("sub_layer_present_flags", err)
	}

	if maxNumSubLayersMinus1 > 0 {
		for i := maxNumSubLayersMinus1; i < 8; i++ {
			r.skip(2) // reserved_zero_2bits
		}
	}

	for i := 0; i < maxNumSubLayersMinus1; i++ {
		if p.SubLayerProfilePresentFlag[i] {
			if err := skipSubLayerProfile(r); err != nil {
				return nil, invalid("sub_layer_profile", err)
			}
		}
		if p.SubLayerLevelPresentFlag[i] {
			r.skip(8) // sub_layer_level_idc
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("sub_layer_profile_tier_level", err)
	}

	return p, nil
}

// skipSubLayerProfile consumes a sub-layer profile record bit-accurately
// without retaining its content, mirroring the source's decision to parse
// but discard these fields.
func skipSubLayerProfile(r *fieldReader) error {
	r.skip(2)  // sub_layer_profile_space
	r.skip(1)  // sub_layer_tier_flag
	r.skip(5)  // sub_layer_profile_idc
	r.skip(32) // sub_layer_profile_compatibility_flag[32]
	r.skip(4)  // progressive/interlaced/non_packed/frame_only source flags
	r.skip(43) // sub_layer_reserved_zero_43bits
	r.skip(1)  // sub_layer_reserved_zero_bit
	return r.err()
}

// writeProfileTierLevel mirrors parseProfileTierLevel for the syntax writer.
func writeProfileTierLevel(bw *bits.BitWriter, p *ProfileTierLevel, maxNumSubLayersMinus1 int) {
	bw.PutBits(2, uint64(p.GeneralProfileSpace))
	bw.PutFlag(p.GeneralTierFlag)
	bw.PutBits(5, uint64(p.GeneralProfileIDC))
	bw.PutBits(32, uint64(p.GeneralProfileCompatibilityFlags))
	bw.PutFlag(p.GeneralProgressiveSourceFlag)
	bw.PutFlag(p.GeneralInterlacedSourceFlag)
	bw.PutFlag(p.GeneralNonPackedConstraintFlag)
	bw.PutFlag(p.GeneralFrameOnlyConstraintFlag)
	bw.PutBits(43, 0)
	bw.PutBits(1, 0)
	bw.PutBits(8, uint64(p.GeneralLevelIDC))

	for i := 0; i < maxNumSubLayersMinus1; i++ {
		bw.PutFlag(p.SubLayerProfilePresentFlag[i])
		bw.PutFlag(p.SubLayerLevelPresentFlag[i])
	}
	if maxNumSubLayersMinus1 > 0 {
		for i := maxNumSubLayersMinus1; i < 8; i++ {
			bw.PutBits(2, 0)
		}
	}
	for i := 0; i < maxNumSubLayersMinus1; i++ {
		if p.SubLayerProfilePresentFlag[i] {
			bw.PutBits(2, 0)
			bw.PutFlag(false)
			bw.PutBits(5, 0)
			bw.PutBits(32, 0)
			bw.PutBits(4, 0)
			bw.PutBits(43, 0)
			bw.PutBits(1, 0)
		}
		if p.SubLayerLevelPresentFlag[i] {
			bw.PutBits(8, 0)
		}
	}
}
