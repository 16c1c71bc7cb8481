package main

import (
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/blacktop/go-rasteroid"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// fileItem represents a file in the list
type fileItem struct {
	name string
	info fs.DirEntry
}

func (f fileItem) FilterValue() string { return f.name }
func (f fileItem) Title() string       { return f.name }
func (f fileItem) Description() string {
	if f.info.IsDir() {
		return "Directory"
	}
	if isImage(f.name) {
		return "Image file"
	}
	return "File"
}

const (
	thumbWidth  = 12
	thumbHeight = 6
)

type model struct {
	list     list.Model
	viewport viewport.Model
	encoder  rasteroid.InlineEncoder
	wi       *rasteroid.Wininfo

	cache      map[string]image.Image
	current    image.Image
	selected   string
	imageError error
	// overlay holds escape sequences drawn over the preview panel
	overlay string

	width  int
	height int

	// Kitty unicode placeholders: the image travels inside the text layout
	inlineMode bool
	gridView   bool
}

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#F25D94")
	accentColor    = lipgloss.Color("#04B575")
	textColor      = lipgloss.Color("#FAFAFA")
	mutedColor     = lipgloss.Color("#626262")
	errorColor     = lipgloss.Color("#FF5F87")

	// Title bar style
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	// Panel border styles
	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(1)

	// File list styles
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(textColor)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(textColor).
				Background(primaryColor).
				Bold(true)

	// Legend styles
	legendStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(lipgloss.Color("#1A1A1A")).
			PaddingLeft(1).
			PaddingRight(1).
			MarginTop(1)

	legendKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Info style for non-image files
	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

func initialModel(enc rasteroid.InlineEncoder, wi *rasteroid.Wininfo) model {
	files, err := os.ReadDir(".")
	if err != nil {
		log.Fatal(err)
	}

	// Filter out directories and .DS_Store files and create list items
	var items []list.Item
	for _, file := range files {
		if file.Name() == ".DS_Store" {
			continue
		}
		if !file.IsDir() {
			items = append(items, fileItem{
				name: file.Name(),
				info: file,
			})
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	// Customize the list delegate for our styling
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle.Foreground(mutedColor)
	delegate.Styles.NormalTitle = itemStyle
	delegate.Styles.NormalDesc = itemStyle.Foreground(mutedColor)
	l.SetDelegate(delegate)

	return model{
		list:     l,
		viewport: viewport.New(0, 0),
		encoder:  enc,
		wi:       wi,
		cache:    make(map[string]image.Image),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.encoder == rasteroid.Kitty {
				var b strings.Builder
				rasteroid.KittyDelete(&b, m.wi, 0)
				fmt.Print(b.String())
			}
			return m, tea.Quit
		case "v":
			// Toggle placeholder mode (Kitty only)
			if m.encoder == rasteroid.Kitty {
				m.inlineMode = !m.inlineMode
			}
		case "g":
			m.gridView = !m.gridView
		default:
			// Let the list handle all other key events (navigation, etc.)
			m.list, cmd = m.list.Update(msg)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Account for title, borders, and legend
		availableHeight := msg.Height - 6
		m.viewport.Width = (msg.Width / 2) - 4
		m.viewport.Height = availableHeight

		leftPanelWidth := (msg.Width / 2) - 4
		m.list.SetWidth(leftPanelWidth)
		m.list.SetHeight(availableHeight - 2) // Account for borders
	}

	m.current, m.imageError = nil, nil
	m.selected = ""
	if item, ok := m.list.SelectedItem().(fileItem); ok {
		m.selected = item.name
		if isImage(item.name) {
			m.current, m.imageError = m.load(item.name)
		}
	}
	m.refresh()
	return m, cmd
}

// load decodes a file once and caches it.
func (m model) load(name string) (image.Image, error) {
	if img, ok := m.cache[name]; ok {
		return img, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	m.cache[name] = img
	return img, nil
}

// refresh recomputes the preview panel for the current selection and size.
func (m *model) refresh() {
	m.overlay = ""
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		return
	}
	switch {
	case m.gridView:
		m.viewport.SetContent(m.renderGrid())
	case m.imageError != nil:
		m.viewport.SetContent(errorStyle.Render("Error: " + m.imageError.Error()))
	case m.current != nil:
		out, err := m.renderPreview()
		if err != nil {
			m.viewport.SetContent(errorStyle.Render("Failed to render image: " + err.Error()))
			return
		}
		if m.encoder == rasteroid.Ascii || m.inlineMode {
			// half blocks and placeholders are plain text cells
			m.viewport.SetContent(out)
			return
		}
		m.viewport.SetContent("")
		m.overlay = out
	case m.selected != "":
		ext := filepath.Ext(m.selected)
		info := fmt.Sprintf("File: %s\nType: %s\n\nNot an image.", m.selected, ext)
		m.viewport.SetContent(infoStyle.Render(info))
	default:
		m.viewport.SetContent("No files in this directory.")
	}
}

func (m *model) renderPreview() (string, error) {
	wi := *m.wi
	wi.NeedsInline = m.inlineMode
	img := rasteroid.New(m.current).
		Encoder(m.encoder).
		Wininfo(&wi).
		Width(fmt.Sprintf("%dc", m.viewport.Width)).
		Height(fmt.Sprintf("%dc", m.viewport.Height))
	if m.encoder != rasteroid.Ascii && !m.inlineMode {
		// Title(1) + Margin(1) + Panel Border(1) + Panel Padding(1) = 4
		// Left Panel Width + Spacing(1) + Panel Border(1) + Panel Padding(1)
		img = img.At(m.width/2+3, 4)
	}
	out, err := img.Render()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// renderGrid draws half block thumbnails of every image in the directory.
func (m *model) renderGrid() string {
	columns := max(m.viewport.Width/(thumbWidth+2), 1)
	g := rasteroid.NewGallery(columns, thumbWidth, thumbHeight)
	for _, it := range m.list.Items() {
		item, ok := it.(fileItem)
		if !ok || !isImage(item.name) {
			continue
		}
		img, err := m.load(item.name)
		if err != nil {
			continue
		}
		g.Add(img)
	}
	if g.Len() == 0 {
		return infoStyle.Render("No images in this directory.")
	}
	var b strings.Builder
	if err := g.Render(&b, rasteroid.Ascii, m.wi); err != nil {
		return errorStyle.Render("Error: " + err.Error())
	}
	return b.String()
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Title bar
	title := fmt.Sprintf("Gallery - %d files [%s]", len(m.list.Items()), m.encoder)
	if m.inlineMode {
		title += " [PLACEHOLDERS]"
	}
	if m.gridView {
		title += " [GRID VIEW]"
	}
	b.WriteString(titleStyle.Width(m.width).Render(title))
	b.WriteString("\n")

	// Calculate panel dimensions
	leftPanelWidth := m.width/2 - 2
	rightPanelWidth := m.width/2 - 2
	panelHeight := m.height - 6 // Account for title and legend

	leftPanel := panelBorderStyle.
		Width(leftPanelWidth).
		Height(panelHeight).
		Render(m.list.View())

	rightPanel := panelBorderStyle.
		Width(rightPanelWidth).
		Height(panelHeight).
		Render(m.viewport.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	b.WriteString(panels)

	// Graphics are drawn over the empty preview panel after the text UI
	if m.overlay != "" {
		if m.encoder == rasteroid.Kitty {
			rasteroid.KittyDelete(&b, m.wi, 0)
		}
		b.WriteString("\033[s")
		b.WriteString(m.overlay)
		b.WriteString("\033[u")
	}

	// Navigation legend
	legend := []string{
		legendKeyStyle.Render("↑/k") + " up",
		legendKeyStyle.Render("↓/j") + " down",
		legendKeyStyle.Render("pgup/pgdn") + " page up/down",
		legendKeyStyle.Render("home/end") + " top/bottom",
	}
	if m.encoder == rasteroid.Kitty {
		legend = append(legend, legendKeyStyle.Render("v")+" placeholders")
	}
	legend = append(legend, legendKeyStyle.Render("g")+" grid")
	legend = append(legend, legendKeyStyle.Render("q/esc")+" quit")

	legendText := "Navigation: " + strings.Join(legend, " • ")
	b.WriteString("\n")
	b.WriteString(legendStyle.Width(m.width).Render(legendText))

	return b.String()
}

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.Chdir(dir); err != nil {
		log.Fatal(err)
	}

	env := rasteroid.NewEnvIdentifiers()
	enc := rasteroid.AutoDetect(false, false, false, false, env)
	wi := rasteroid.GetWininfo()
	if wi.IsTmux {
		if err := rasteroid.EnableTmuxPassthrough(); err != nil {
			log.Printf("tmux passthrough: %v", err)
		}
	}

	p := tea.NewProgram(initialModel(enc, wi), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func isImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp":
		return true
	default:
		return false
	}
}
