// Package ui renders the live bandwidth dashboard. It only ever
// reads engine snapshots; all monitoring state stays in the engine.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/nozo-moto/nbmon/internal/collector"
	"github.com/nozo-moto/nbmon/internal/config"
	"github.com/nozo-moto/nbmon/internal/engine"
	"github.com/nozo-moto/nbmon/internal/netinfo"
	"github.com/nozo-moto/nbmon/pkg/format"
	"github.com/nozo-moto/nbmon/pkg/types"
)

const (
	latencyInterval = 10 * time.Second
	sparkWidth      = 80
	// Headroom above the observed peak so the tallest bar never
	// flattens against the ceiling.
	scaleHeadroom = 1.1
)

type Dashboard struct {
	app      *tview.Application
	monitor  *engine.Monitor
	prober   *collector.LatencyProber
	publicIP *netinfo.PublicIP
	cfg      *config.Config
	log      *logrus.Entry

	headerView   *tview.TextView
	downloadView *tview.TextView
	uploadView   *tview.TextView
	statusView   *tview.TextView
	latencyView  *tview.TextView
	helpView     *tview.TextView

	mu         sync.RWMutex
	ifaces     []types.InterfaceDescriptor
	current    int
	lastResult types.CycleResult
	latency    []collector.LatencyResult
	publicAddr string
	maxRx      float64
	maxTx      float64

	pollNow chan struct{}
}

func NewDashboard(monitor *engine.Monitor, cfg *config.Config, logger *logrus.Logger) *Dashboard {
	d := &Dashboard{
		app:      tview.NewApplication(),
		monitor:  monitor,
		cfg:      cfg,
		log:      logger.WithField("component", "ui"),
		pollNow:  make(chan struct{}, 1),
		publicIP: netinfo.NewPublicIP(),
	}
	if len(cfg.LatencyTargets) > 0 {
		d.prober = collector.NewLatencyProber(cfg.LatencyTargets)
	}
	return d
}

func (d *Dashboard) Run(ctx context.Context) error {
	d.setupUI()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go d.pollLoop(ctx)
	if d.prober != nil {
		go d.latencyLoop(ctx)
	}
	if d.cfg.PublicIP {
		go d.fetchPublicIP(ctx)
	}

	// Interrupt tears the TUI down the same way 'q' does.
	go func() {
		<-ctx.Done()
		d.app.Stop()
	}()

	return d.app.Run()
}

func (d *Dashboard) setupUI() {
	d.headerView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	d.headerView.SetBorder(true).
		SetTitle(" nbmon: Network Bandwidth Monitor ")

	d.downloadView = tview.NewTextView().
		SetDynamicColors(true)
	d.downloadView.SetBorder(true).
		SetTitle(" Download ")

	d.uploadView = tview.NewTextView().
		SetDynamicColors(true)
	d.uploadView.SetBorder(true).
		SetTitle(" Upload ")

	d.statusView = tview.NewTextView().
		SetDynamicColors(true)
	d.statusView.SetBorder(true).
		SetTitle(" Interfaces ")

	d.latencyView = tview.NewTextView().
		SetDynamicColors(true)
	d.latencyView.SetBorder(true).
		SetTitle(" Latency ")

	d.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]←/→ or h/l: switch interface | space: poll now | r: reset history | q: quit")

	bottomRow := tview.NewFlex().
		AddItem(d.statusView, 0, 2, false).
		AddItem(d.latencyView, 0, 1, false)

	mainFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.headerView, 4, 0, false).
		AddItem(d.downloadView, 0, 1, false).
		AddItem(d.uploadView, 0, 1, false).
		AddItem(bottomRow, 0, 1, false).
		AddItem(d.helpView, 1, 0, false)

	d.app.SetRoot(mainFlex, true).
		SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			switch event.Key() {
			case tcell.KeyEsc:
				d.app.Stop()
				return nil
			case tcell.KeyLeft:
				d.switchInterface(-1)
				return nil
			case tcell.KeyRight:
				d.switchInterface(1)
				return nil
			case tcell.KeyRune:
				switch event.Rune() {
				case 'q':
					d.app.Stop()
					return nil
				case 'h':
					d.switchInterface(-1)
					return nil
				case 'l':
					d.switchInterface(1)
					return nil
				case ' ':
					select {
					case d.pollNow <- struct{}{}:
					default:
					}
					return nil
				case 'r':
					d.resetCurrent()
					return nil
				}
			}
			return event
		})
}

func (d *Dashboard) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	// Seed immediately so the first render has an interface list.
	d.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.poll(ctx)
		case <-d.pollNow:
			d.poll(ctx)
		}
	}
}

func (d *Dashboard) poll(ctx context.Context) {
	result := d.monitor.Poll(ctx)

	d.mu.Lock()
	d.lastResult = result
	d.ifaces = d.monitor.Interfaces()
	if d.current >= len(d.ifaces) {
		d.current = 0
	}
	if id, ok := d.currentIDLocked(); ok {
		if rate, ok := result.Rates[id]; ok {
			if rate.RxBps*scaleHeadroom > d.maxRx {
				d.maxRx = rate.RxBps * scaleHeadroom
			}
			if rate.TxBps*scaleHeadroom > d.maxTx {
				d.maxTx = rate.TxBps * scaleHeadroom
			}
		}
	}
	d.mu.Unlock()

	d.app.QueueUpdateDraw(d.render)
}

func (d *Dashboard) latencyLoop(ctx context.Context) {
	ticker := time.NewTicker(latencyInterval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, latencyInterval/2)
		results := d.prober.Probe(probeCtx)
		cancel()

		d.mu.Lock()
		d.latency = results
		d.mu.Unlock()
		d.app.QueueUpdateDraw(d.render)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dashboard) fetchPublicIP(ctx context.Context) {
	ip, err := d.publicIP.Get(ctx)
	if err != nil {
		d.log.WithError(err).Debug("public IP lookup failed")
		return
	}
	d.mu.Lock()
	d.publicAddr = ip
	d.mu.Unlock()
	d.app.QueueUpdateDraw(d.render)
}

func (d *Dashboard) switchInterface(delta int) {
	d.mu.Lock()
	if n := len(d.ifaces); n > 0 {
		d.current = (d.current + delta + n) % n
		// Scale is per interface; start over for the new one.
		d.maxRx, d.maxTx = 0, 0
	}
	d.mu.Unlock()
	d.render()
}

func (d *Dashboard) resetCurrent() {
	d.mu.Lock()
	id, ok := d.currentIDLocked()
	d.maxRx, d.maxTx = 0, 0
	d.mu.Unlock()
	if ok {
		d.monitor.Reset(id)
	}
	d.render()
}

func (d *Dashboard) currentIDLocked() (types.InterfaceID, bool) {
	if d.current < 0 || d.current >= len(d.ifaces) {
		return "", false
	}
	return d.ifaces[d.current].ID, true
}

func (d *Dashboard) render() {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.ifaces) == 0 {
		d.headerView.SetText("[gray]No network interfaces found")
		return
	}

	iface := d.ifaces[d.current]
	d.renderHeader(iface)
	d.renderTraffic(iface.ID)
	d.renderStatus()
	d.renderLatency()
}

func (d *Dashboard) renderHeader(iface types.InterfaceDescriptor) {
	line := fmt.Sprintf("[cyan::b]%s[-::-] (%d/%d) [%s]",
		iface.DisplayName, d.current+1, len(d.ifaces), iface.Kind)
	if iface.SpeedBps > 0 {
		line += " - " + format.BitsPerSec(float64(iface.SpeedBps))
	}

	details := ""
	if iface.MACAddress != "" {
		details += fmt.Sprintf("[yellow]MAC:[white] %s  ", iface.MACAddress)
	}
	state := "[red]DOWN[white]"
	if iface.IsUp {
		state = "[green]UP[white]"
	}
	details += fmt.Sprintf("[yellow]State:[white] %s", state)
	if d.publicAddr != "" {
		details += fmt.Sprintf("  [yellow]Public IP:[white] %s", d.publicAddr)
	}

	d.headerView.SetText(line + "\n" + details)
}

func (d *Dashboard) renderTraffic(id types.InterfaceID) {
	history := d.monitor.History(id)
	peakRx, peakTx := d.monitor.Peak(id)

	var curRx, curTx float64
	reset := false
	if rate, ok := d.lastResult.Rates[id]; ok {
		curRx, curTx = rate.RxBps, rate.TxBps
		reset = rate.Reset
	}

	rx := make([]float64, len(history))
	tx := make([]float64, len(history))
	for i, s := range history {
		rx[i] = s.RxBps
		tx[i] = s.TxBps
	}

	errNote := ""
	if cerr, ok := d.lastResult.Errors[id]; ok {
		errNote = fmt.Sprintf("\n[red]no data: %s[white]", cerr.Kind)
	} else if reset {
		errNote = "\n[yellow]counter reset[white]"
	}

	d.downloadView.SetText(fmt.Sprintf(
		"[green]▼ %s[white]   peak %s%s\n\n[green]%s[white]",
		format.BitsPerSec(curRx),
		format.BitsPerSec(peakRx),
		errNote,
		sparkline(rx, d.maxRx, sparkWidth),
	))
	d.uploadView.SetText(fmt.Sprintf(
		"[red]▲ %s[white]   peak %s\n\n[red]%s[white]",
		format.BitsPerSec(curTx),
		format.BitsPerSec(peakTx),
		sparkline(tx, d.maxTx, sparkWidth),
	))
}

func (d *Dashboard) renderStatus() {
	var builder strings.Builder
	builder.WriteString("[yellow]Interface        Kind      RX          TX[white]\n")
	builder.WriteString(strings.Repeat("─", 48) + "\n")

	for i, iface := range d.ifaces {
		marker := "  "
		if i == d.current {
			marker = "[cyan]▶[white] "
		}
		rxText, txText := "-", "-"
		if rate, ok := d.lastResult.Rates[iface.ID]; ok {
			rxText = format.BitsPerSec(rate.RxBps)
			txText = format.BitsPerSec(rate.TxBps)
		} else if cerr, ok := d.lastResult.Errors[iface.ID]; ok {
			rxText = fmt.Sprintf("[red]%s[white]", cerr.Kind)
			txText = ""
		}
		builder.WriteString(fmt.Sprintf("%s%-15s %-9s %-11s %s\n",
			marker, iface.DisplayName, iface.Kind, rxText, txText))
	}

	for _, iface := range d.monitor.Removed() {
		builder.WriteString(fmt.Sprintf("  [gray]%-15s removed[white]\n", iface.DisplayName))
	}

	if d.lastResult.EnumerationErr != nil {
		builder.WriteString("\n[red]enumeration failed, using last known set[white]\n")
	}

	d.statusView.SetText(builder.String())
}

func (d *Dashboard) renderLatency() {
	if d.prober == nil {
		d.latencyView.SetText("[gray]latency probing disabled")
		return
	}
	if len(d.latency) == 0 {
		d.latencyView.SetText("[gray]measuring...")
		return
	}

	var builder strings.Builder
	for _, stat := range d.latency {
		if stat.PacketLoss >= 100 {
			builder.WriteString(fmt.Sprintf("[red]✗[white] %-18s timeout\n", stat.Target))
			continue
		}
		color := "[green]"
		if stat.AvgRTT > 100*time.Millisecond {
			color = "[yellow]"
		}
		builder.WriteString(fmt.Sprintf("%s✓[white] %-18s %3dms  loss %.0f%%\n",
			color, stat.Target, stat.AvgRTT.Milliseconds(), stat.PacketLoss))
	}
	d.latencyView.SetText(builder.String())
}
