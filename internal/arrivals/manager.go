// Package arrivals wires the two feed pipelines together: one refresh
// loop per feed, each publishing into its own cache cell. The two
// pipelines share nothing but the process they run in.
package arrivals

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickford1/cta-tracker/internal/arrivals/bus"
	"github.com/patrickford1/cta-tracker/internal/arrivals/cache"
	"github.com/patrickford1/cta-tracker/internal/arrivals/poller"
	"github.com/patrickford1/cta-tracker/internal/arrivals/rail"
	"github.com/patrickford1/cta-tracker/internal/common/config"
	"github.com/patrickford1/cta-tracker/internal/common/logger"
	"github.com/patrickford1/cta-tracker/internal/upstream"
)

type Manager struct {
	cfg    *config.Config
	logger logger.Logger

	railCell *cache.Cell[rail.Arrival]
	busCell  *cache.Cell[bus.Prediction]

	railPoller *poller.Poller[rail.Arrival]
	busPoller  *poller.Poller[bus.Prediction]

	mu        sync.Mutex
	wg        sync.WaitGroup
	isRunning bool
	cancelFn  context.CancelFunc
}

func NewManager(cfg *config.Config, httpClient *upstream.Client, notifier poller.Notifier, log logger.Logger) *Manager {
	railCell := cache.NewCell[rail.Arrival]()
	busCell := cache.NewCell[bus.Prediction]()

	railClient := rail.NewClient(cfg.Train, httpClient)
	busClient := bus.NewClient(cfg.Bus, httpClient)

	return &Manager{
		cfg:      cfg,
		logger:   log,
		railCell: railCell,
		busCell:  busCell,
		railPoller: poller.New("train", cfg.Train.PollInterval,
			railClient.Arrivals, railCell, rail.Location, log, notifier),
		busPoller: poller.New("bus", cfg.Bus.PollInterval,
			busClient.Predictions, busCell, rail.Location, log, notifier),
	}
}

// Start validates both feed configurations and launches the refresh
// loops. A feed that can never succeed is a startup error, not a
// per-cycle one.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("arrivals manager is already running")
	}

	if err := m.cfg.Train.Validate(); err != nil {
		return fmt.Errorf("invalid train feed configuration: %w", err)
	}
	if err := m.cfg.Bus.Validate(); err != nil {
		return fmt.Errorf("invalid bus feed configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFn = cancel

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.railPoller.Run(ctx)
	}()
	go func() {
		defer m.wg.Done()
		m.busPoller.Run(ctx)
	}()

	m.isRunning = true
	m.logger.Info("Arrivals manager started",
		"train_interval", m.cfg.Train.PollInterval,
		"bus_interval", m.cfg.Bus.PollInterval,
	)

	return nil
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}

	m.logger.Info("Stopping arrivals manager")

	if m.cancelFn != nil {
		m.cancelFn()
	}
	m.wg.Wait()

	m.isRunning = false
	m.logger.Info("Arrivals manager stopped")
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// Trains returns the current train snapshot. Pure read, no I/O.
func (m *Manager) Trains() cache.Snapshot[rail.Arrival] {
	return m.railCell.Snapshot()
}

// Buses returns the current bus snapshot. Pure read, no I/O.
func (m *Manager) Buses() cache.Snapshot[bus.Prediction] {
	return m.busCell.Snapshot()
}
