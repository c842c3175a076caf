package history

// InstrTimeline is one instruction's stage-occupancy record across the run,
// per spec.md §4.3's timeline reconstruction.
type InstrTimeline struct {
	Disasm  string
	PCPlus1 uint16

	IFCycle     uint64
	IDCycles    []uint64
	EXCycles    []uint64
	MEMCycles   []uint64
	WBCycle     uint64
	HasWB       bool
	StalledAtID []uint64 // subset of IDCycles where the hazard unit asserted a stall
}

type occupantKey struct {
	disasm  string
	pcPlus1 uint16
}

// Timeline walks a chronological checkpoint list and reconstructs, per
// instruction instance, the cycle it was fetched, the (possibly repeated —
// a stall holds an instruction at the IF/ID boundary across several
// cycles) cycles it occupied ID/EX/MEM, and the cycle it retired in WB.
//
// Instances are identified by (disasm, pc_plus1) as they flow from one
// latch to the next. Re-fetching an instruction while an earlier instance
// with the same key is still open (a tight loop back to the same address)
// starts a new row, and from then on every occupancy under that key,
// including the earlier instance's remaining stages, is recorded on the
// newer row.
func Timeline(checkpoints []Snapshot) []*InstrTimeline {
	open := map[occupantKey]*InstrTimeline{}
	var out []*InstrTimeline

	for c := 1; c < len(checkpoints); c++ {
		pre := checkpoints[c-1]
		post := checkpoints[c]
		stalled := post.Result != nil && post.Result.Stalled

		if post.IFID.Valid && post.IFID != pre.IFID {
			k := occupantKey{post.IFID.Disasm, post.IFID.PCPlus1}
			t := &InstrTimeline{Disasm: post.IFID.Disasm, PCPlus1: post.IFID.PCPlus1, IFCycle: uint64(c)}
			open[k] = t
			out = append(out, t)
		}

		if pre.IFID.Valid {
			k := occupantKey{pre.IFID.Disasm, pre.IFID.PCPlus1}
			if t, ok := open[k]; ok {
				t.IDCycles = append(t.IDCycles, uint64(c))
				if stalled {
					t.StalledAtID = append(t.StalledAtID, uint64(c))
				}
			}
		}

		if pre.IDEX.Valid {
			k := occupantKey{pre.IDEX.Disasm, pre.IDEX.PCPlus1}
			if t, ok := open[k]; ok {
				t.EXCycles = append(t.EXCycles, uint64(c))
			}
		}

		if pre.EXMEM.Valid {
			k := occupantKey{pre.EXMEM.Disasm, pre.EXMEM.PCPlus1}
			if t, ok := open[k]; ok {
				t.MEMCycles = append(t.MEMCycles, uint64(c))
			}
		}

		if pre.MEMWB.Valid {
			k := occupantKey{pre.MEMWB.Disasm, pre.MEMWB.PCPlus1}
			if t, ok := open[k]; ok && !t.HasWB {
				t.HasWB = true
				t.WBCycle = uint64(c)
				delete(open, k)
			}
		}
	}

	return out
}
