package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/anim"
	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/config"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/gesture"
	"github.com/matzehuels/corkboard/pkg/minimap"
	"github.com/matzehuels/corkboard/pkg/render"
	"github.com/matzehuels/corkboard/pkg/session"
	"github.com/matzehuels/corkboard/pkg/stack"
	"github.com/matzehuels/corkboard/pkg/store"
)

// A terminal cell stands for cellWidth × cellHeight canvas pixels at zoom 1.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	boardTop   = 1 // header line
	footerRows = 1

	tickInterval  = 50 * time.Millisecond
	panCells      = 4
	zoomStep      = 1.1
	deleteTimeout = 5 * time.Second

	minimapCols = 18
	minimapRows = 9
)

var (
	colorNoteText = lipgloss.Color("235")
	colorPreview  = lipgloss.Color("124")
	colorShadow   = lipgloss.Color("58")
	colorMinimap  = lipgloss.Color("236")
)

const boardHelp = "drag notes · click to open · +/- zoom · 0 reset · n rename · x delete · q quit"

type tickMsg time.Time

type boardModelOptions struct {
	Board  string
	Config config.Config
	Source store.ItemSource
	// Store deletes notes; nil disables x.
	Store  store.Store
	Writer board.Writer
	State  session.StateStore
	Clock  anim.Clock
	Logger *log.Logger
	Ctx    context.Context
}

// pointer tracks the mouse between press and release. A press lands either on
// a note (item) or on the canvas (pan).
type pointer struct {
	down           bool
	onItem         bool
	item           int64
	pan            bool
	moved          bool
	startX, startY int
	lastX, lastY   int
}

// boardModel is the bubbletea model behind `corkboard view`. The session is
// created on the first WindowSizeMsg so the viewport matches the terminal.
type boardModel struct {
	opts  boardModelOptions
	clock anim.Clock

	sess          *session.Session
	width, height int
	ptr           pointer
	lastCanvasTap time.Time

	opened   *session.Target
	status   string
	renaming string
	input    []rune

	err error
}

func newBoardModel(opts boardModelOptions) *boardModel {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &boardModel{opts: opts, clock: clock}
}

func (m *boardModel) Init() tea.Cmd { return m.tick() }

func (m *boardModel) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.sess == nil {
			if err := m.start(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	case tickMsg:
		m.onTick()
		return m, m.tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		if m.sess != nil {
			m.handleMouse(msg)
		}
	}
	return m, nil
}

func (m *boardModel) boardRows() int { return max(m.height-boardTop-footerRows, 1) }

func (m *boardModel) start() error {
	cfg := m.opts.Config
	cfg.Board.ViewportWidth = float64(max(m.width, 1)) * cellWidth
	cfg.Board.ViewportHeight = float64(m.boardRows()) * cellHeight

	s, err := session.New(m.opts.Board, session.Options{
		Config: &cfg,
		Source: m.opts.Source,
		Writer: m.opts.Writer,
		Open:   m.onOpen,
		State:  m.opts.State,
		Clock:  m.clock,
		Logger: m.opts.Logger,
	})
	if err != nil {
		return err
	}
	if err := s.Load(m.opts.Ctx); err != nil {
		return err
	}
	m.sess = s
	m.status = fmt.Sprintf("loaded %d notes", len(s.Items()))
	return nil
}

func (m *boardModel) onTick() {
	if m.sess == nil || m.ptr.down {
		return
	}
	if m.sess.ResyncDue(m.clock()) {
		m.resync()
	}
}

func (m *boardModel) resync() {
	err := m.sess.Resync(m.opts.Ctx)
	switch {
	case errors.Is(err, session.ErrBusy):
	case err != nil:
		m.status = "reload failed: " + corkerrors.UserMessage(err)
	default:
		m.status = fmt.Sprintf("reloaded %d notes", len(m.sess.Items()))
	}
}

func (m *boardModel) onOpen(t session.Target) {
	m.opened = &t
	if t.Kind == session.TargetStack {
		name := t.Stack.Name
		if name == "" {
			name = "unnamed stack"
		}
		m.status = fmt.Sprintf("opened %s (%d notes)", name, len(t.Items))
		return
	}
	if len(t.Items) > 0 {
		m.status = "opened " + render.Label(t.Items[0])
	}
}

// =============================================================================
// Keys
// =============================================================================

func (m *boardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.renaming != "" {
		m.handleRenameKey(msg)
		return nil
	}
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	}
	if m.sess == nil {
		return nil
	}

	c := m.sess.Canvas()
	switch msg.String() {
	case "left", "h":
		c.PanBy(panCells*cellWidth, 0)
	case "right", "l":
		c.PanBy(-panCells*cellWidth, 0)
	case "up", "k":
		c.PanBy(0, panCells*cellHeight)
	case "down", "j":
		c.PanBy(0, -panCells*cellHeight)
	case "+", "=":
		m.zoom(zoomStep, m.center())
	case "-", "_":
		m.zoom(1/zoomStep, m.center())
	case "0":
		c.DoubleTap()
	case "r":
		m.resync()
	case "n":
		m.startRename()
	case "x", "delete":
		m.deleteOpened()
	}
	return nil
}

func (m *boardModel) handleRenameKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.renaming = ""
		m.status = "rename cancelled"
	case tea.KeyEnter:
		id, name := m.renaming, strings.TrimSpace(string(m.input))
		m.renaming = ""
		prompt := stack.RenamerFunc(func(context.Context, string) (string, bool, error) {
			return name, true, nil
		})
		if err := m.sess.RenameWith(m.opts.Ctx, id, prompt); err != nil {
			m.status = "rename failed: " + corkerrors.UserMessage(err)
			return
		}
		if m.opened != nil && m.opened.Stack.ID == id {
			m.opened.Stack.Name = name
		}
		m.status = fmt.Sprintf("stack renamed to %q", name)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
}

func (m *boardModel) startRename() {
	if m.opened == nil || m.opened.Kind != session.TargetStack {
		m.status = "click a stack to open it first"
		return
	}
	if _, ok := m.sess.StackCenter(m.opened.Stack.ID); !ok {
		m.opened = nil
		m.status = "that stack is gone"
		return
	}
	m.renaming = m.opened.Stack.ID
	m.input = []rune(m.opened.Stack.Name)
}

func (m *boardModel) deleteOpened() {
	if m.opened == nil || m.opened.Kind != session.TargetItem || len(m.opened.Items) == 0 {
		m.status = "click a note to open it first"
		return
	}
	if m.opts.Store == nil {
		m.status = "this board is read-only"
		return
	}
	id := m.opened.Items[0].ID

	ctx, cancel := context.WithTimeout(m.opts.Ctx, deleteTimeout)
	defer cancel()
	if err := m.opts.Store.DeleteItem(ctx, m.opts.Board, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		m.status = "delete failed: " + corkerrors.UserMessage(err)
		return
	}
	if err := m.sess.Delete(id); err != nil && !errors.Is(err, session.ErrUnknownItem) {
		m.status = "delete failed: " + err.Error()
		return
	}
	m.opened = nil
	m.status = fmt.Sprintf("deleted note %d", id)
}

func (m *boardModel) zoom(factor float64, focus board.Vec) {
	if !m.sess.Canvas().PinchBy(factor, focus) {
		m.status = "zoom is locked while a note is dragged"
	}
}

func (m *boardModel) center() board.Vec {
	return board.Vec{
		X: float64(m.width) * cellWidth / 2,
		Y: float64(m.boardRows()) * cellHeight / 2,
	}
}

// =============================================================================
// Mouse
// =============================================================================

func (m *boardModel) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Action == tea.MouseActionPress {
			m.zoom(zoomStep, m.toPixels(msg.X, msg.Y))
		}
		return
	case tea.MouseButtonWheelDown:
		if msg.Action == tea.MouseActionPress {
			m.zoom(1/zoomStep, m.toPixels(msg.X, msg.Y))
		}
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.pointerDown(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		if m.ptr.down {
			m.pointerMove(msg.X, msg.Y)
		}
	case tea.MouseActionRelease:
		if m.ptr.down {
			m.pointerUp()
		}
	}
}

func (m *boardModel) pointerDown(x, y int) {
	if y < boardTop || y >= boardTop+m.boardRows() {
		return
	}
	m.ptr = pointer{down: true, startX: x, startY: y, lastX: x, lastY: y}

	if id, ok := m.hit(x, y); ok {
		out, err := m.sess.Press(id)
		switch {
		case err != nil:
			m.status = err.Error()
			m.ptr = pointer{}
		case out.Kind != gesture.OutcomeNone:
			// Pinned notes resolve on press.
			m.ptr = pointer{}
		default:
			m.ptr.onItem, m.ptr.item = true, id
		}
		return
	}
	m.ptr.pan = m.sess.PanBegin()
	if !m.ptr.pan {
		m.ptr = pointer{}
	}
}

func (m *boardModel) pointerMove(x, y int) {
	dx := float64(x-m.ptr.lastX) * cellWidth
	dy := float64(y-m.ptr.lastY) * cellHeight
	if dx == 0 && dy == 0 {
		return
	}
	m.ptr.lastX, m.ptr.lastY = x, y
	m.ptr.moved = true

	switch {
	case m.ptr.onItem:
		m.sess.Move(m.ptr.item, dx, dy)
	case m.ptr.pan:
		c := m.sess.Canvas()
		c.PanMove(float64(x-m.ptr.startX)*cellWidth, float64(y-m.ptr.startY)*cellHeight)
	}
}

func (m *boardModel) pointerUp() {
	p := m.ptr
	m.ptr = pointer{}
	switch {
	case p.onItem:
		m.sess.Release(p.item)
	case p.pan:
		m.sess.Canvas().PanEnd()
		if !p.moved {
			m.canvasTap()
		}
	}
}

// canvasTap resets the view on the second click inside the tap window.
func (m *boardModel) canvasTap() {
	now := m.clock()
	window := m.sess.Config().Gesture.TapWindow
	if !m.lastCanvasTap.IsZero() && now.Sub(m.lastCanvasTap) <= window {
		m.lastCanvasTap = time.Time{}
		m.sess.Canvas().DoubleTap()
		return
	}
	m.lastCanvasTap = now
}

// hit returns the topmost note under the cell at (x, y).
func (m *boardModel) hit(x, y int) (int64, bool) {
	p := m.sess.Canvas().Transform().ToCanvas(m.toPixels(x, y))
	size := m.sess.Config().Board.Item()
	items := m.sess.Items()
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if p.Left >= it.Position.Left && p.Left < it.Position.Left+size.Width &&
			p.Top >= it.Position.Top && p.Top < it.Position.Top+size.Height {
			return it.ID, true
		}
	}
	return 0, false
}

// toPixels maps the center of a terminal cell to viewport pixels.
func (m *boardModel) toPixels(x, y int) board.Vec {
	return board.Vec{
		X: (float64(x) + 0.5) * cellWidth,
		Y: (float64(y-boardTop) + 0.5) * cellHeight,
	}
}

// =============================================================================
// View
// =============================================================================

func (m *boardModel) View() string {
	if m.err != nil {
		return ""
	}
	if m.sess == nil {
		return StyleDim.Render("Loading board...")
	}

	g := newGrid(m.width, m.boardRows())
	m.paintBoard(g)
	if v, ok := m.sess.Minimap(m.clock()); ok {
		paintMinimap(g, v)
	}

	line := lipgloss.NewStyle().MaxWidth(max(m.width, 1))
	var b strings.Builder
	b.WriteString(line.Render(m.header()))
	b.WriteString("\n")
	b.WriteString(g.String())
	b.WriteString("\n")
	b.WriteString(line.Render(m.footer()))
	return b.String()
}

func (m *boardModel) header() string {
	zoom := fmt.Sprintf("%.0f%%", m.sess.Canvas().Scale()*100)
	counts := fmt.Sprintf("%d notes · %d stacks · %s", len(m.sess.Items()), len(m.sess.Stacks()), zoom)
	return StyleTitle.Render(appName) + " " + StyleValue.Render(m.opts.Board) + "  " + StyleDim.Render(counts)
}

func (m *boardModel) footer() string {
	if m.renaming != "" {
		return StyleTitle.Render("Stack name: ") + StyleValue.Render(string(m.input)) + "▏" +
			StyleDim.Render("  enter to save · esc to cancel")
	}
	if m.status == "" {
		return StyleDim.Render(boardHelp)
	}
	return statusIcons[statusInfo] + " " + m.status + "  " + StyleDim.Render(boardHelp)
}

func (m *boardModel) paintBoard(g *grid) {
	t := m.sess.Canvas().Transform()
	dims := m.sess.Dimensions()
	size := m.sess.Config().Board.Item()

	cork := cellStyle{bg: colorCork}
	g.fill(cellRect(t.ToScreen(board.Position{}), t.ToScreen(board.Position{Top: dims.Height, Left: dims.Width})), ' ', cork)

	active, _ := m.sess.Active()
	preview := m.sess.Preview()
	for _, it := range m.sess.Items() {
		r := cellRect(t.ToScreen(it.Position), t.ToScreen(it.Position.Add(board.Vec{X: size.Width, Y: size.Height})))

		if v, ok := m.sess.Visual(it.ID); ok && v.Scale.Value() > 1 {
			g.fill(r.shift(1, 1), '░', cellStyle{fg: colorShadow, bg: colorCork})
		}

		st := cellStyle{fg: colorNoteText, bg: lipgloss.Color(render.Color(it.Color))}
		if it.ID == active {
			st.bold = true
		}
		if slices.Contains(preview, it.ID) {
			st.fg, st.bold = colorPreview, true
		}
		g.fill(r, ' ', st)

		label := render.Label(it)
		if _, stacked := m.sess.StackOf(it.ID); stacked {
			label = "≡ " + label
		}
		if it.Pinned {
			label = "● " + label
		}
		g.text(r.x0, r.y0, label, r.x1-r.x0, st)
	}

	for _, s := range m.sess.Stacks() {
		if s.Name == "" {
			continue
		}
		c, ok := m.sess.StackCenter(s.ID)
		if !ok {
			continue
		}
		r := cellRect(t.ToScreen(c), t.ToScreen(c))
		g.text(r.x0, r.y0-1, "["+s.Name+"]", len(s.Name)+2, cellStyle{fg: colorWhite, bg: colorCork, bold: true})
	}
}

func paintMinimap(g *grid, v minimap.View) {
	x0 := g.w - minimapCols - 1
	if x0 < 0 || g.h < minimapRows || v.Diameter <= 0 {
		return
	}
	frame := cellStyle{fg: colorGray, bg: colorMinimap}
	g.fill(rect{x0, 0, x0 + minimapCols, minimapRows}, ' ', frame)
	for x := x0 + 1; x < x0+minimapCols-1; x++ {
		g.set(x, 0, '─', frame)
		g.set(x, minimapRows-1, '─', frame)
	}
	for y := 1; y < minimapRows-1; y++ {
		g.set(x0, y, '│', frame)
		g.set(x0+minimapCols-1, y, '│', frame)
	}
	g.set(x0, 0, '╭', frame)
	g.set(x0+minimapCols-1, 0, '╮', frame)
	g.set(x0, minimapRows-1, '╰', frame)
	g.set(x0+minimapCols-1, minimapRows-1, '╯', frame)

	plot := func(p minimap.Point) (int, int) {
		x := x0 + 1 + int(p.X/v.Diameter*float64(minimapCols-2))
		y := 1 + int(p.Y/v.Diameter*float64(minimapRows-2))
		return min(max(x, x0+1), x0+minimapCols-2), min(max(y, 1), minimapRows-2)
	}
	for _, mk := range v.Markers {
		x, y := plot(mk.Point)
		g.set(x, y, '•', cellStyle{fg: lipgloss.Color(render.Color(mk.Color)), bg: colorMinimap})
	}
	if v.Dense {
		g.text(x0+2, minimapRows/2, "dense", minimapCols-4, frame)
	}
	x, y := plot(v.Indicator)
	g.set(x, y, '◎', cellStyle{fg: colorCyan, bg: colorMinimap, bold: true})
}

// =============================================================================
// Cell grid
// =============================================================================

type cellStyle struct {
	fg, bg lipgloss.Color
	bold   bool
}

func (s cellStyle) render(text string) string {
	st := lipgloss.NewStyle()
	if s.fg != "" {
		st = st.Foreground(s.fg)
	}
	if s.bg != "" {
		st = st.Background(s.bg)
	}
	if s.bold {
		st = st.Bold(true)
	}
	return st.Render(text)
}

// rect is a half-open range of cells.
type rect struct {
	x0, y0, x1, y1 int
}

func (r rect) shift(dx, dy int) rect {
	return rect{r.x0 + dx, r.y0 + dy, r.x1 + dx, r.y1 + dy}
}

// cellRect covers the screen pixels between tl and br with at least one cell.
func cellRect(tl, br board.Vec) rect {
	r := rect{
		x0: int(math.Floor(tl.X / cellWidth)),
		y0: int(math.Floor(tl.Y / cellHeight)),
		x1: int(math.Ceil(br.X / cellWidth)),
		y1: int(math.Ceil(br.Y / cellHeight)),
	}
	r.x1 = max(r.x1, r.x0+1)
	r.y1 = max(r.y1, r.y0+1)
	return r
}

type grid struct {
	w, h  int
	runes [][]rune
	style [][]cellStyle
}

func newGrid(w, h int) *grid {
	g := &grid{w: max(w, 0), h: max(h, 0)}
	g.runes = make([][]rune, g.h)
	g.style = make([][]cellStyle, g.h)
	for y := range g.h {
		g.runes[y] = []rune(strings.Repeat(" ", g.w))
		g.style[y] = make([]cellStyle, g.w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, st cellStyle) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.style[y][x] = st
}

func (g *grid) fill(r rect, ch rune, st cellStyle) {
	for y := max(r.y0, 0); y < min(r.y1, g.h); y++ {
		for x := max(r.x0, 0); x < min(r.x1, g.w); x++ {
			g.set(x, y, ch, st)
		}
	}
}

// text writes s at (x, y), cut to limit cells.
func (g *grid) text(x, y int, s string, limit int, st cellStyle) {
	for i, r := range []rune(s) {
		if i >= limit {
			return
		}
		g.set(x+i, y, r, st)
	}
}

// String renders the grid, styling runs of equal cells together.
func (g *grid) String() string {
	lines := make([]string, g.h)
	for y := range g.h {
		if g.w == 0 {
			continue
		}
		var b strings.Builder
		start := 0
		for x := 1; x <= g.w; x++ {
			if x == g.w || g.style[y][x] != g.style[y][start] {
				b.WriteString(g.style[y][start].render(string(g.runes[y][start:x])))
				start = x
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
