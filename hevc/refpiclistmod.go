/*
DESCRIPTION
  refpiclistmod.go parses and writes ref_pic_lists_modification(), the
  explicit reference picture list reordering syntax structure.

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

// RefPicListsModification corresponds to ref_pic_lists_modification() in
// 7.3.6.2.
type RefPicListsModification struct {
	RefPicListModificationFlagL0 bool
	ListEntryL0                 []uint32
	RefPicListModificationFlagL1 bool
	ListEntryL1                 []uint32
}

// parseRefPicListsModification parses ref_pic_lists_modification() given
// NumPicTotalCurr and the active reference counts.
func parseRefPicListsModification(r *fieldReader, numPicTotalCurr int, numRefIdxL0ActiveMinus1, numRefIdxL1ActiveMinus1 int, isBSlice bool) (*RefPicListsModification, error) {
	m := &RefPicListsModification{}
	if numPicTotalCurr <= 1 {
		return m, nil
	}

	entryBits := bitLen(uint64(numPicTotalCurr - 1))
	if entryBits == 0 {
		entryBits = 1
	}

	m.RefPicListModificationFlagL0 = r.flag()
	if m.RefPicListModificationFlagL0 {
		m.ListEntryL0 = make([]uint32, numRefIdxL0ActiveMinus1+1)
		for i := range m.ListEntryL0 {
			m.ListEntryL0[i] = uint32(r.u(entryBits))
		}
	}
	if isBSlice {
		m.RefPicListModificationFlagL1 = r.flag()
		if m.RefPicListModificationFlagL1 {
			m.ListEntryL1 = make([]uint32, numRefIdxL1ActiveMinus1+1)
			for i := range m.ListEntryL1 {
				m.ListEntryL1[i] = uint32(r.u(entryBits))
			}
		}
	}
	if err := r.err(); err != nil {
		return nil, invalid("ref_pic_lists_modification", err)
	}
	return m, nil
}

// writeRefPicListsModification mirrors parseRefPicListsModification.
func writeRefPicListsModification(bw *bits.BitWriter, m *RefPicListsModification, numPicTotalCurr int, isBSlice bool) {
	if numPicTotalCurr <= 1 {
		return
	}
	entryBits := bitLen(uint64(numPicTotalCurr - 1))
	if entryBits == 0 {
		entryBits = 1
	}

	bw.PutFlag(m.RefPicListModificationFlagL0)
	if m.RefPicListModificationFlagL0 {
		for _, e := range m.ListEntryL0 {
			bw.PutBits(entryBits, uint64(e))
		}
	}
	if isBSlice {
		bw.PutFlag(m.RefPicListModificationFlagL1)
		if m.RefPicListModificationFlagL1 {
			for _, e := range m.ListEntryL1 {
				bw.PutBits(entryBits, uint64(e))
			}
		}
	}
}
