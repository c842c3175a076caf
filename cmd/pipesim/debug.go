package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"pipeline16/facade"
)

// debugModel is the bubbletea model for the interactive stepper, grounded
// on the teacher's cpu/debugger.go model: one long-lived struct holding the
// session, the last rendered state, and any terminal error.
type debugModel struct {
	session *facade.Session
	view    facade.CPUState
	running bool
	err     error
}

func runDebugger(source string) error {
	session := facade.NewSession()
	_, view, err := session.Assemble(source)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	m, err := tea.NewProgram(debugModel{session: session, view: view, running: true}).Run()
	if err != nil {
		return err
	}
	final := m.(debugModel)
	if final.err != nil {
		fmt.Println("Error:", final.err)
	}
	return nil
}

func (m debugModel) Init() tea.Cmd {
	return nil
}

// Update steps the pipeline forward on space/j, steps back on k/b, and
// quits on q, mirroring the teacher's " "/"j" tick and "q" quit bindings.
func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			if !m.running {
				return m, nil
			}
			running, view, err := m.session.Step()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.running = running
			m.view = view

		case "k", "b":
			view, err := m.session.StepBack()
			if err != nil {
				return m, nil // NoHistory: ignore, stay put
			}
			m.running = true
			m.view = view

		case "r":
			view, err := m.session.Reset()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.running = true
			m.view = view
		}
	}
	return m, nil
}

var (
	stageStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	stallStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

func (m debugModel) latchPanel(title string, v facade.LatchView) string {
	body := fmt.Sprintf("%s\nvalid: %v\n%s", title, v.Valid, v.Disasm)
	return stageStyle.Render(body)
}

func (m debugModel) registerPanel() string {
	var b strings.Builder
	b.WriteString("registers\n")
	for i, v := range m.view.Registers {
		fmt.Fprintf(&b, "r%d=%-6d", i, v)
		if i%4 == 3 {
			b.WriteString("\n")
		}
	}
	return stageStyle.Render(b.String())
}

func (m debugModel) statusPanel() string {
	s := fmt.Sprintf("pc: %04x\ncycle: %d\nrunning: %v", m.view.PC, m.view.Cycle, m.running)
	if m.view.IsStalling && m.view.StallInfo != nil {
		s += "\n" + stallStyle.Render("stall: "+m.view.StallInfo.Reason)
	}
	if m.view.FlushOccurred {
		s += "\n" + stallStyle.Render("flush")
	}
	if m.view.MemoryWarning != nil {
		s += fmt.Sprintf("\nwarning: %s @%d", m.view.MemoryWarning.Type, m.view.MemoryWarning.Address)
	}
	p := m.view.Performance
	s += fmt.Sprintf("\ncpi: %.2f  stall_rate: %.2f  forward_rate: %.2f", p.CPI, p.StallRate, p.ForwardRate)
	return stageStyle.Render(s)
}

// View renders the pipeline's current latches, register file, and status
// as joined lipgloss panels, the same layout shape as the teacher's
// pageTable()/status() join, generalized from one 6502 page table to five
// pipeline stages.
func (m debugModel) View() string {
	stages := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.latchPanel("IF/ID", m.view.IFID),
		m.latchPanel("ID/EX", m.view.IDEX),
		m.latchPanel("EX/MEM", m.view.EXMEM),
		m.latchPanel("MEM/WB", m.view.MEMWB),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.registerPanel(), m.statusPanel())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		top,
		stages,
		"",
		spew.Sdump(m.view.ForwardA),
		"space/j: step   k/b: step back   r: reset   q: quit",
	)
}
