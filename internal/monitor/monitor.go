//go:build linux

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPrefix    = "org.mpris.MediaPlayer2."
	mprisPath      = "/org/mpris/MediaPlayer2"
	playerIface    = "org.mpris.MediaPlayer2.Player"
	propMetadata   = playerIface + ".Metadata"
	propStatus     = playerIface + ".PlaybackStatus"
	sigPropsChange = "org.freedesktop.DBus.Properties.PropertiesChanged"
	sigNameOwner   = "org.freedesktop.DBus.NameOwnerChanged"

	eventBuffer = 16
)

// ErrStopped is returned by Start after Stop
var ErrStopped = errors.New("monitor stopped")

// MprisMonitor reports media sessions published by MPRIS players on the session bus
type MprisMonitor struct {
	logger *zap.Logger
	events chan domain.MediaSession
	dial   func() (DBusClient, error)

	mu              sync.RWMutex
	running         bool
	stopped         bool
	cancel          context.CancelFunc
	conn            DBusClient
	lastDropWarning time.Time
	wg              sync.WaitGroup    // producers writing to events
	playerNames     map[string]string // unique bus name (:1.45) to well-known name
}

// NewMprisMonitor creates a new MPRIS monitor instance
func NewMprisMonitor(logger *zap.Logger) *MprisMonitor {
	return &MprisMonitor{
		logger:      logger.Named("monitor"),
		events:      make(chan domain.MediaSession, eventBuffer),
		dial:        dialSessionBus,
		playerNames: make(map[string]string),
	}
}

func dialSessionBus() (DBusClient, error) {
	c, err := NewStdDBusClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Start connects to the session bus, reports the players already running
// and then every change until ctx is cancelled or Stop is called.
func (m *MprisMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	monitorCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	conn, err := m.dial()
	if err != nil {
		m.logger.Error("Failed to connect to session bus", zap.Error(err))
		m.mu.Lock()
		m.running = false
		m.cancel = nil
		m.mu.Unlock()
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	m.mu.Lock()
	if !m.running || monitorCtx.Err() != nil {
		m.mu.Unlock()
		m.logger.Info("Monitor stopped during D-Bus connection")
		if err := conn.Close(); err != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		return context.Canceled
	}
	m.conn = conn
	// Stop waits for Start itself before closing events
	m.wg.Add(1)
	m.mu.Unlock()
	defer m.wg.Done()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mprisPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		m.logger.Error("Failed to add match signal", zap.Error(err))
		return fmt.Errorf("failed to add match signal: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		m.logger.Warn("Player arrivals will not be tracked", zap.Error(err))
	}

	if err := m.detectExistingPlayers(conn); err != nil {
		m.logger.Warn("Failed to detect existing players", zap.Error(err))
	}

	m.wg.Add(1)
	go m.monitorSignals(monitorCtx, conn)

	m.logger.Info("MPRIS monitor started")
	<-monitorCtx.Done()
	m.logger.Info("MPRIS monitor stopped")
	return monitorCtx.Err()
}

// Stop cancels Start, then closes the events channel and the bus
// connection. The monitor cannot be restarted.
func (m *MprisMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.running = false
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Monitor goroutines did not finish in time", zap.Error(ctx.Err()))
		return ctx.Err()
	}

	close(m.events)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		m.conn = nil
	}

	m.logger.Info("MPRIS monitor shutdown complete")
	return nil
}

// Events returns the channel sessions are reported on. It is closed by Stop.
func (m *MprisMonitor) Events() <-chan domain.MediaSession {
	return m.events
}

// Snapshot lists the sessions of every MPRIS player currently on the bus,
// ordered by player name. Players that publish no metadata are skipped.
func (m *MprisMonitor) Snapshot(ctx context.Context) ([]domain.MediaSession, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil {
		c, err := m.dial()
		if err != nil {
			return nil, fmt.Errorf("session bus connection failed: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
			}
		}()
		conn = c
	}

	players, err := listPlayers(conn)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.MediaSession, 0, len(players))
	for _, player := range players {
		if err := ctx.Err(); err != nil {
			return sessions, err
		}
		session, ok, err := m.readSession(conn, player)
		if err != nil {
			m.logger.Warn("Failed to read player session", zap.String("player", player), zap.Error(err))
			continue
		}
		if ok {
			sessions = append(sessions, session)
		}
	}

	m.logger.Debug("Session snapshot taken", zap.Int("players", len(players)), zap.Int("sessions", len(sessions)))
	return sessions, nil
}

func listPlayers(conn DBusClient) ([]string, error) {
	names, err := conn.ListNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}
	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	sort.Strings(players)
	return players, nil
}

func (m *MprisMonitor) detectExistingPlayers(conn DBusClient) error {
	players, err := listPlayers(conn)
	if err != nil {
		return err
	}

	for _, name := range players {
		m.logger.Info("Detected MPRIS player", zap.String("name", name))

		if unique, err := conn.GetNameOwner(name); err == nil {
			m.mu.Lock()
			m.playerNames[unique] = name
			m.mu.Unlock()
		}

		if err := m.fetchPlayerMetadata(conn, name); err != nil {
			m.logger.Warn("Failed to fetch initial metadata", zap.String("player", name), zap.Error(err))
		}
	}

	m.logger.Info("Player detection complete", zap.Int("count", len(players)))
	return nil
}

// readSession reports false when the player publishes no usable metadata
func (m *MprisMonitor) readSession(conn DBusClient, player string) (domain.MediaSession, bool, error) {
	variant, err := conn.GetProperty(player, mprisPath, propMetadata)
	if err != nil {
		return domain.MediaSession{}, false, fmt.Errorf("failed to get metadata: %w", err)
	}
	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		m.logger.Debug("Metadata variant is not a map, skipping", zap.String("player", player))
		return domain.MediaSession{}, false, nil
	}

	statusVariant, err := conn.GetProperty(player, mprisPath, propStatus)
	if err != nil {
		return domain.MediaSession{}, false, fmt.Errorf("failed to get playback status: %w", err)
	}
	status, ok := statusVariant.Value().(string)
	if !ok {
		return domain.MediaSession{}, false, fmt.Errorf("invalid playback status format")
	}

	session := m.parseMetadata(metadata, status)
	session.Player = player
	return session, true, nil
}

func (m *MprisMonitor) fetchPlayerMetadata(conn DBusClient, player string) error {
	session, ok, err := m.readSession(conn, player)
	if err != nil || !ok {
		return err
	}
	m.emit(session)
	return nil
}

func (m *MprisMonitor) monitorSignals(ctx context.Context, conn DBusClient) {
	defer m.wg.Done()

	signals := make(chan *dbus.Signal, eventBuffer)
	conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Signal monitoring goroutine stopped")
			return
		case sig := <-signals:
			switch {
			case sig == nil:
			case sig.Name == sigNameOwner:
				m.handleNameOwnerChanged(conn, sig)
			default:
				m.handleSignal(conn, sig)
			}
		}
	}
}

func (m *MprisMonitor) handleNameOwnerChanged(conn DBusClient, sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, ok := sig.Body[0].(string)
	if !ok || !strings.HasPrefix(name, mprisPrefix) {
		return
	}
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	m.mu.Lock()
	if oldOwner != "" {
		delete(m.playerNames, oldOwner)
	}
	if newOwner != "" {
		m.playerNames[newOwner] = name
	}
	m.mu.Unlock()

	switch {
	case oldOwner == "" && newOwner != "":
		m.logger.Info("New MPRIS player detected", zap.String("player", name), zap.String("unique", newOwner))
		if err := m.fetchPlayerMetadata(conn, name); err != nil {
			m.logger.Warn("Failed to fetch metadata from new player", zap.String("player", name), zap.Error(err))
		}
	case newOwner == "":
		m.logger.Info("MPRIS player removed", zap.String("player", name), zap.String("unique", oldOwner))
	default:
		m.logger.Debug("MPRIS player ownership changed",
			zap.String("player", name),
			zap.String("oldUnique", oldOwner),
			zap.String("newUnique", newOwner))
	}
}

// handleSignal reports a session when a player's metadata or status changes
func (m *MprisMonitor) handleSignal(conn DBusClient, sig *dbus.Signal) {
	if sig.Name != sigPropsChange || len(sig.Body) < 2 {
		return
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != playerIface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	metadataVariant, hasMetadata := changed["Metadata"]
	statusVariant, hasStatus := changed["PlaybackStatus"]
	if !hasMetadata && !hasStatus {
		return
	}

	var (
		metadata map[string]dbus.Variant
		status   string
	)
	if hasMetadata {
		if metadata, ok = metadataVariant.Value().(map[string]dbus.Variant); !ok {
			m.logger.Warn("Invalid metadata format in signal, ignoring")
			return
		}
	} else if v, err := conn.GetProperty(sig.Sender, mprisPath, propMetadata); err == nil {
		metadata, _ = v.Value().(map[string]dbus.Variant)
	}
	if hasStatus {
		if status, ok = statusVariant.Value().(string); !ok {
			m.logger.Warn("Invalid playback status format in signal, ignoring")
			return
		}
	} else if v, err := conn.GetProperty(sig.Sender, mprisPath, propStatus); err == nil {
		status, _ = v.Value().(string)
	}

	session := m.parseMetadata(metadata, status)
	session.Player = m.getPlayerName(sig.Sender)
	m.emit(session)
}

// emit never blocks; the consumer debounces, so dropping is harmless
func (m *MprisMonitor) emit(session domain.MediaSession) {
	select {
	case m.events <- session:
		m.logger.Debug("Media change detected",
			zap.String("player", session.Player),
			zap.String("title", session.Title),
			zap.String("status", string(session.Status)))
	default:
		m.logChannelFullWarning()
	}
}

// parseMetadata converts an MPRIS metadata map into a session
func (m *MprisMonitor) parseMetadata(metadata map[string]dbus.Variant, status string) domain.MediaSession {
	var s domain.MediaSession

	switch status {
	case "Playing":
		s.Status = domain.StatusPlaying
	case "Paused":
		s.Status = domain.StatusPaused
	default:
		s.Status = domain.StatusStopped
	}

	if metadata == nil {
		return s
	}

	s.Title = stringField(metadata, "xesam:title")
	s.Album = stringField(metadata, "xesam:album")
	s.MediaUrl = stringField(metadata, "xesam:url")
	s.ArtUrl = stringField(metadata, "mpris:artUrl")
	s.Artist = firstOf(m.stringsField(metadata, "xesam:artist"))
	s.AlbumArtist = firstOf(m.stringsField(metadata, "xesam:albumArtist"))
	s.Subtitle = firstOf(m.stringsField(metadata, "xesam:comment"))
	s.Genres = m.stringsField(metadata, "xesam:genre")
	s.TrackNumber = intField(metadata, "xesam:trackNumber")

	if s.ArtUrl == "" {
		m.logger.Debug("No artUrl in metadata", zap.String("title", s.Title))
	}
	return s
}

func stringField(metadata map[string]dbus.Variant, key string) string {
	if v, ok := metadata[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// stringsField accepts a single string from non-compliant players
func (m *MprisMonitor) stringsField(metadata map[string]dbus.Variant, key string) []string {
	v, ok := metadata[key]
	if !ok {
		return nil
	}
	switch val := v.Value().(type) {
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		m.logger.Debug("Unexpected metadata type",
			zap.String("key", key),
			zap.String("type", fmt.Sprintf("%T", val)))
		return nil
	}
}

func intField(metadata map[string]dbus.Variant, key string) int {
	v, ok := metadata[key]
	if !ok {
		return 0
	}
	switch n := v.Value().(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// getPlayerName falls back to the unique name when no mapping exists
func (m *MprisMonitor) getPlayerName(uniqueName string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if wellKnown, ok := m.playerNames[uniqueName]; ok {
		return wellKnown
	}
	return uniqueName
}

// logChannelFullWarning logs at most once every five seconds
func (m *MprisMonitor) logChannelFullWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()
	if now.Sub(m.lastDropWarning) >= warningInterval {
		m.logger.Warn("Events channel full, dropping session update")
		m.lastDropWarning = now
	}
}
