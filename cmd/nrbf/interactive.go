package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/driedpampas/nrbf-parser/interleaved"
	"github.com/driedpampas/nrbf-parser/nrbf"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type recordLine struct {
	summary string
	detail  string
}

type inspectorModel struct {
	err      error
	filename string
	size     int
	records  []recordLine
	selected int
	detail   viewport.Model
	width    int
	height   int
	loaded   bool
}

type streamLoadedMsg struct {
	err     error
	size    int
	records []recordLine
}

func newInspectorModel(filename string) *inspectorModel {
	return &inspectorModel{
		filename: filename,
		detail:   viewport.New(0, 0),
	}
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.loadStream
}

func (m *inspectorModel) loadStream() tea.Msg {
	data, err := readStream(m.filename)
	if err != nil {
		return streamLoadedMsg{err: err}
	}
	msg, err := nrbf.DecodeMessage(bytes.NewReader(data))
	if err != nil {
		return streamLoadedMsg{err: err}
	}

	lines := make([]recordLine, len(msg.Records))
	for i, rec := range msg.Records {
		lines[i] = recordLine{
			summary: recordSummary(i, rec),
			detail:  recordDetail(rec),
		}
	}
	return streamLoadedMsg{size: len(data), records: lines}
}

func recordSummary(index int, rec nrbf.Record) string {
	s := fmt.Sprintf("#%-3d %s", index, rec.Type())
	switch r := rec.(type) {
	case *nrbf.ClassWithMembersAndTypes:
		s += fmt.Sprintf("  id=%d %s", r.ClassInfo.ObjectID, r.ClassInfo.Name)
	case *nrbf.SystemClassWithMembersAndTypes:
		s += fmt.Sprintf("  id=%d %s", r.ClassInfo.ObjectID, r.ClassInfo.Name)
	case *nrbf.SystemClassWithMembers:
		s += fmt.Sprintf("  id=%d %s", r.ClassInfo.ObjectID, r.ClassInfo.Name)
	case *nrbf.ClassWithMembers:
		s += fmt.Sprintf("  id=%d %s", r.ClassInfo.ObjectID, r.ClassInfo.Name)
	case *nrbf.ClassWithID:
		s += fmt.Sprintf("  id=%d meta=%d", r.ObjectID, r.MetadataID)
	case *nrbf.BinaryObjectString:
		s += fmt.Sprintf("  id=%d %q", r.ObjectID, truncate(r.Value, 32))
	case *nrbf.BinaryLibrary:
		s += fmt.Sprintf("  id=%d %s", r.LibraryID, r.LibraryName)
	case *nrbf.BinaryArray:
		s += fmt.Sprintf("  id=%d %s rank=%d", r.ObjectID, r.ArrayType, r.Rank)
	case *nrbf.ArraySingleObject:
		s += fmt.Sprintf("  id=%d len=%d", r.ObjectID, r.Length)
	case *nrbf.ArraySinglePrimitive:
		s += fmt.Sprintf("  id=%d len=%d %s", r.ObjectID, r.Length, r.ElementType)
	case *nrbf.ArraySingleString:
		s += fmt.Sprintf("  id=%d len=%d", r.ObjectID, r.Length)
	case *nrbf.MemberReference:
		s += fmt.Sprintf("  ref=%d", r.IDRef)
	}
	return s
}

func recordDetail(rec nrbf.Record) string {
	out, err := interleaved.MarshalIndent([]nrbf.Record{rec}, "", "  ")
	if err != nil {
		return fmt.Sprintf("(%v)", err)
	}
	return string(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case streamLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.records = msg.records
		m.size = msg.size
		m.loaded = true
		m.syncDetail()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width/2 - 2
		m.detail.Height = msg.Height - 5
		m.syncDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.syncDetail()
			}
		case "down", "j":
			if m.selected < len(m.records)-1 {
				m.selected++
				m.syncDetail()
			}
		case "pgup":
			m.detail.HalfViewUp()
		case "pgdown":
			m.detail.HalfViewDown()
		}
	}
	return m, nil
}

func (m *inspectorModel) syncDetail() {
	if m.selected < len(m.records) {
		m.detail.SetContent(m.records[m.selected].detail)
		m.detail.GotoTop()
	}
}

func (m *inspectorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}
	if !m.loaded {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d bytes  %d records", m.filename, m.size, len(m.records))))
	b.WriteString("\n\n")

	listWidth := m.width / 2
	if listWidth < 40 {
		listWidth = 40
	}
	listHeight := m.height - 5
	if listHeight < 1 {
		listHeight = len(m.records)
	}

	// Keep the cursor visible by windowing the record list.
	start := 0
	if m.selected >= listHeight {
		start = m.selected - listHeight + 1
	}
	end := start + listHeight
	if end > len(m.records) {
		end = len(m.records)
	}

	var list []string
	for i := start; i < end; i++ {
		line := m.records[i].summary
		if i == m.selected {
			list = append(list, selectedStyle.Render("> "+line))
		} else {
			list = append(list, recordStyle.Render("  "+line))
		}
	}

	left := lipgloss.NewStyle().Width(listWidth).Render(strings.Join(list, "\n"))
	right := idStyle.Render(m.detail.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down: select  pgup/pgdown: scroll detail  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectorModel(filename), tea.WithAltScreen())
	model, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := model.(*inspectorModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
