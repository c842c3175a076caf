package facade

import (
	"pipeline16/cpu"
	"pipeline16/history"
)

// LatchView is one pipeline latch's display shape, per spec.md §6's "each
// latch view has {valid, disasm, …stage-specific fields}".
type LatchView struct {
	Valid    bool   `json:"valid"`
	Disasm   string `json:"disasm"`
	PCPlus1  uint16 `json:"pc_plus_1,omitempty"`
	Instr    uint16 `json:"instr,omitempty"`
	RsVal    uint16 `json:"rs_val,omitempty"`
	RtVal    uint16 `json:"rt_val,omitempty"`
	Imm      uint16 `json:"imm,omitempty"`
	WriteReg uint16 `json:"write_reg,omitempty"`

	ALUResult uint16 `json:"alu_result,omitempty"`
	MemData   uint16 `json:"mem_data,omitempty"`
}

func ifidView(l cpu.IFIDLatch) LatchView {
	return LatchView{Valid: l.Valid, Disasm: l.Disasm, PCPlus1: l.PCPlus1, Instr: l.Instr}
}

func idexView(l cpu.IDEXLatch) LatchView {
	return LatchView{
		Valid: l.Valid, Disasm: l.Disasm, PCPlus1: l.PCPlus1,
		RsVal: l.RsVal, RtVal: l.RtVal, Imm: l.Imm, WriteReg: l.WriteReg,
	}
}

func exmemView(l cpu.EXMEMLatch) LatchView {
	return LatchView{
		Valid: l.Valid, Disasm: l.Disasm, PCPlus1: l.PCPlus1,
		ALUResult: l.ALUResult, RtVal: l.RtVal, WriteReg: l.WriteReg,
	}
}

func memwbView(l cpu.MEMWBLatch) LatchView {
	return LatchView{
		Valid: l.Valid, Disasm: l.Disasm, PCPlus1: l.PCPlus1,
		ALUResult: l.ALUResult, MemData: l.MemData, WriteReg: l.WriteReg,
	}
}

// ForwardView is one forward entry, per spec.md §6: "{source, reg, value}".
type ForwardView struct {
	Source string `json:"source"`
	Reg    string `json:"reg"`
	Value  int    `json:"value"`
}

func forwardView(f *cpu.ForwardEvent) *ForwardView {
	if f == nil {
		return nil
	}
	return &ForwardView{Source: f.Source, Reg: regName(f.Reg), Value: int(f.Value)}
}

func regName(r uint16) string {
	const names = "01234567"
	if int(r) < len(names) {
		return "$r" + string(names[r])
	}
	return "$r?"
}

// StallInfo reports the hazard unit's verdict for the cycle just stepped.
type StallInfo struct {
	Reason string `json:"reason"`
}

// ControlHazardView is one taken control transfer, per spec.md §6:
// "{type, target_address}".
type ControlHazardView struct {
	Type          string `json:"type"`
	TargetAddress uint16 `json:"target_address"`
}

func controlHazardView(c *cpu.ControlHazardEvent) *ControlHazardView {
	if c == nil {
		return nil
	}
	return &ControlHazardView{Type: c.Kind.String(), TargetAddress: c.TargetAddress}
}

// MemoryWarningView is a non-fatal read-before-write report, per spec.md
// §6: "{type, address}".
type MemoryWarningView struct {
	Type    string `json:"type"`
	Address uint16 `json:"address"`
}

func memoryWarningView(w *cpu.MemoryWarning) *MemoryWarningView {
	if w == nil {
		return nil
	}
	return &MemoryWarningView{Type: w.Type, Address: w.Address}
}

// Performance is the derived-rate view of spec.md §6's performance object.
type Performance struct {
	Cycles       uint64  `json:"cycles"`
	Instructions uint64  `json:"instructions"`
	CPI          float64 `json:"cpi"`
	StallRate    float64 `json:"stall_rate"`
	ForwardRate  float64 `json:"forward_rate"`
	FlushCount   uint64  `json:"flush_count"`
}

func performanceView(c cpu.PerfCounters) Performance {
	return Performance{
		Cycles:       c.Cycles,
		Instructions: c.InstructionsRetired,
		CPI:          c.CPI(),
		StallRate:    c.StallRate(),
		ForwardRate:  c.ForwardRate(),
		FlushCount:   c.Flushes,
	}
}

// StallRecord is one cycle-indexed stall occurrence, for stall_history.
type StallRecord struct {
	Cycle  uint64 `json:"cycle"`
	Reason string `json:"reason"`
}

// ForwardRecord is one cycle-indexed forward occurrence, for
// forward_history.
type ForwardRecord struct {
	Cycle uint64      `json:"cycle"`
	ForwardView
}

// InstrTimelineView is one instruction's stage-occupancy record, for
// pipeline_history (spec.md §4.3's timeline reconstruction).
type InstrTimelineView struct {
	Disasm      string   `json:"disasm"`
	IFCycle     uint64   `json:"if_cycle"`
	IDCycles    []uint64 `json:"id_cycles"`
	EXCycles    []uint64 `json:"ex_cycles"`
	MEMCycles   []uint64 `json:"mem_cycles"`
	WBCycle     uint64   `json:"wb_cycle,omitempty"`
	HasWB       bool     `json:"has_wb"`
	StalledAtID []uint64 `json:"stalled_at_id,omitempty"`
}

func timelineView(tl []*history.InstrTimeline) []InstrTimelineView {
	out := make([]InstrTimelineView, len(tl))
	for i, t := range tl {
		out[i] = InstrTimelineView{
			Disasm:      t.Disasm,
			IFCycle:     t.IFCycle,
			IDCycles:    t.IDCycles,
			EXCycles:    t.EXCycles,
			MEMCycles:   t.MEMCycles,
			WBCycle:     t.WBCycle,
			HasWB:       t.HasWB,
			StalledAtID: t.StalledAtID,
		}
	}
	return out
}

// MachineCodeEntry is one assembled instruction's listing row, per spec.md
// §6's assemble() machine_code entries.
type MachineCodeEntry struct {
	Address uint16 `json:"address"`
	Hex     string `json:"hex"`
	Binary  string `json:"binary"`
	Source  string `json:"source"`
	Disasm  string `json:"disasm"`
}

// CPUState is the JSON-shaped snapshot returned by every facade operation,
// per spec.md §6's cpu_state schema.
type CPUState struct {
	PC         uint16            `json:"pc"`
	Cycle      uint64            `json:"cycle"`
	Registers  [8]uint16         `json:"registers"`
	DataMemory map[uint16]uint16 `json:"data_memory"`

	IFID  LatchView `json:"IF_ID"`
	IDEX  LatchView `json:"ID_EX"`
	EXMEM LatchView `json:"EX_MEM"`
	MEMWB LatchView `json:"MEM_WB"`

	ForwardA *ForwardView `json:"forward_a"`
	ForwardB *ForwardView `json:"forward_b"`

	IsStalling    bool               `json:"is_stalling"`
	StallInfo     *StallInfo         `json:"stall_info"`
	ControlHazard *ControlHazardView `json:"control_hazard"`
	FlushOccurred bool               `json:"flush_occurred"`
	MemoryWarning *MemoryWarningView `json:"memory_warning"`

	PipelineHistory []InstrTimelineView `json:"pipeline_history"`
	StallHistory    []StallRecord       `json:"stall_history"`
	ForwardHistory  []ForwardRecord     `json:"forward_history"`

	Performance Performance `json:"performance"`
}
