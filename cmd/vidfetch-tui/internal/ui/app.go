// Package ui provides the terminal user interface for the vidfetch TUI.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/vidfetch/cmd/vidfetch-tui/internal/config"
	"github.com/iconidentify/vidfetch/pkg/client"
)

// App is the main TUI application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	cfg    *config.Config
	client *client.Client
	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	mainFlex   *tview.Flex
	header     *tview.TextView
	footer     *tview.TextView
	statusBar  *tview.TextView
	urlInput   *tview.InputField
	infoView   *tview.TextView
	formatsTbl *tview.Table
	sitesView  *tview.TextView
	helpView   *tview.TextView

	// State
	mu       sync.Mutex
	current  string
	info     *client.VideoInfo
	inFlight bool
}

// NewApp creates a new TUI application.
func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		cfg:    cfg,
		client: client.NewClient(cfg.Server, cfg.Timeout),
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI()
	return a, nil
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(fmt.Sprintf("\n[white::b]vidfetch[white] | Server: [green]%s[white] | Saving to: [green]%s", a.cfg.Server, a.cfg.SaveDir))
	a.header.SetBackgroundColor(tcell.ColorDarkBlue)

	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Enter[white]:Analyze/Download [yellow]Tab[white]:Switch focus [yellow]s[white]:Sites [yellow]?[white]:Help [yellow]Esc[white]:Back [yellow]q[white]:Quit")
	a.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.urlInput = tview.NewInputField().
		SetLabel(" URL: ").
		SetFieldWidth(0)
	a.urlInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			a.analyze(strings.TrimSpace(a.urlInput.GetText()))
		case tcell.KeyTab:
			a.app.SetFocus(a.formatsTbl)
		}
	})

	a.infoView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.infoView.SetBorder(true).SetTitle(" Media ")

	a.formatsTbl = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.formatsTbl.SetBorder(true).SetTitle(" Formats - Press Enter to download ")
	a.formatsTbl.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorDarkCyan))
	a.setFormatHeaders()
	a.formatsTbl.SetSelectedFunc(func(row, _ int) {
		a.mu.Lock()
		id, ok := formatAt(a.info, row)
		a.mu.Unlock()
		if ok {
			a.download(id)
		}
	})
	a.formatsTbl.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab || event.Key() == tcell.KeyBacktab {
			a.app.SetFocus(a.urlInput)
			return nil
		}
		return event
	})

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.urlInput, 1, 0, true).
		AddItem(a.infoView, 4, 0, false).
		AddItem(a.formatsTbl, 0, 1, false)

	a.sitesView = tview.NewTextView().SetDynamicColors(true)
	a.sitesView.SetBorder(true).SetTitle(" Supported sites ")

	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetText(helpText)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	a.pages.AddPage("main", body, true, true)
	a.pages.AddPage("sites", a.sitesView, true, false)
	a.pages.AddPage("help", a.helpView, true, false)

	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	a.app.SetInputCapture(a.handleGlobalKeys)
	a.app.SetRoot(a.mainFlex, true)
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	// Don't intercept when typing in the URL field
	if a.app.GetFocus() == a.urlInput {
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.formatsTbl)
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case 's', 'S':
			a.showSites()
			return nil
		case '?':
			a.pages.SwitchToPage("help")
			return nil
		case '/':
			a.showMain()
			a.app.SetFocus(a.urlInput)
			return nil
		case 'q', 'Q':
			a.Stop()
			return nil
		}
	case tcell.KeyEscape:
		a.showMain()
		return nil
	}

	return event
}

func (a *App) showMain() {
	a.pages.SwitchToPage("main")
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.checkServer()
	return a.app.Run()
}

// Stop stops the TUI application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// updateStatusBar updates the status bar from any goroutine.
func (a *App) updateStatusBar(msg string) {
	a.app.QueueUpdateDraw(func() {
		a.setStatus(msg)
	})
}

// setStatus updates the status bar; only call it from the event loop.
func (a *App) setStatus(msg string) {
	a.statusBar.SetText(fmt.Sprintf(" %s | %s", msg, time.Now().Format("15:04:05")))
}

// begin marks a request in flight; it reports false if one already is.
func (a *App) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight {
		return false
	}
	a.inFlight = true
	return true
}

func (a *App) end() {
	a.mu.Lock()
	a.inFlight = false
	a.mu.Unlock()
}

func (a *App) checkServer() {
	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	h, err := a.client.Health(ctx)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Server unreachable: %v", err))
		return
	}
	a.updateStatusBar(fmt.Sprintf("[green]Connected to %s %s", h.Service, h.Version))
}

func (a *App) analyze(url string) {
	if url == "" {
		a.setStatus("[yellow]Enter a URL first")
		return
	}
	if !a.begin() {
		a.setStatus("[yellow]Busy, please wait")
		return
	}

	a.setStatus("Analyzing " + tviewEscape(url) + "...")
	go func() {
		defer a.end()

		info, err := a.client.Analyze(a.ctx, url)
		if err != nil {
			a.updateStatusBar(fmt.Sprintf("[red]Analyze failed: %s", tviewEscape(err.Error())))
			return
		}

		a.mu.Lock()
		a.current = url
		a.info = info
		a.mu.Unlock()

		a.app.QueueUpdateDraw(func() {
			a.infoView.SetText(summary(info))
			a.fillFormats(info.Formats)
			a.app.SetFocus(a.formatsTbl)
		})
		a.updateStatusBar(fmt.Sprintf("[green]%d format(s) available", len(info.Formats)))
	}()
}

func (a *App) download(formatID string) {
	a.mu.Lock()
	url := a.current
	a.mu.Unlock()
	if url == "" {
		return
	}
	if !a.begin() {
		a.setStatus("[yellow]Busy, please wait")
		return
	}

	a.setStatus(fmt.Sprintf("Downloading format %s...", tviewEscape(formatID)))
	go func() {
		defer a.end()

		d, err := a.client.Download(a.ctx, url, formatID)
		if err != nil {
			a.updateStatusBar(fmt.Sprintf("[red]Download failed: %s", tviewEscape(err.Error())))
			return
		}

		path, n, err := a.client.Save(a.ctx, d, a.cfg.SaveDir)
		if err != nil {
			a.updateStatusBar(fmt.Sprintf("[red]Save failed: %s", tviewEscape(err.Error())))
			return
		}
		a.updateStatusBar(fmt.Sprintf("[green]Saved %s (%s)", tviewEscape(path), humanize.Bytes(uint64(n))))
	}()
}

func (a *App) showSites() {
	a.pages.SwitchToPage("sites")
	a.sitesView.SetText("Loading...")

	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
		defer cancel()

		sites, err := a.client.SupportedSites(ctx)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.sitesView.SetText(fmt.Sprintf("[red]%s", tviewEscape(err.Error())))
				return
			}
			var b strings.Builder
			for _, s := range sites {
				fmt.Fprintf(&b, " [yellow]%-14s[white] %s\n", tviewEscape(s.Name), s.Domain)
			}
			a.sitesView.SetText(b.String())
		})
	}()
}

func (a *App) setFormatHeaders() {
	for i, h := range formatHeaders {
		a.formatsTbl.SetCell(0, i, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}
}

func (a *App) fillFormats(formats []client.Format) {
	a.formatsTbl.Clear()
	a.setFormatHeaders()

	for i, f := range formats {
		color := rowColor(f)
		for col, text := range formatRow(f) {
			a.formatsTbl.SetCell(i+1, col, tview.NewTableCell(tviewEscape(text)).
				SetTextColor(color).
				SetExpansion(1))
		}
	}
	if len(formats) > 0 {
		a.formatsTbl.Select(1, 0)
	}
}

func tviewEscape(s string) string {
	return tview.Escape(s)
}

const helpText = `
 [yellow]Workflow[white]
   1. Type or paste a media URL and press Enter to list formats.
   2. Pick a format in the table and press Enter to download it.
   3. The file is fetched from the server into the save directory.

 [yellow]Keys[white]
   Tab / Shift+Tab   switch between URL field and formats
   /                 jump to the URL field
   s                 supported sites
   ?                 this help
   Esc               back to the main view
   q                 quit

 [yellow]Environment[white]
   VIDFETCH_SERVER    server base URL (default http://localhost:5000)
   VIDFETCH_SAVE_DIR  directory for saved files (default .)
   VIDFETCH_TIMEOUT   per-request timeout (default 15m)
`
