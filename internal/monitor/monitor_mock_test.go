//go:build linux

package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/monitor/mocks"
	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	spotify = "org.mpris.MediaPlayer2.spotify"
	vlc     = "org.mpris.MediaPlayer2.vlc"
)

func expectSession(m *mocks.MockDBusClient, player string, metadata map[string]dbus.Variant, status string) {
	m.EXPECT().GetProperty(player, mprisPath, propMetadata).Return(dbus.MakeVariant(metadata), nil)
	m.EXPECT().GetProperty(player, mprisPath, propStatus).Return(dbus.MakeVariant(status), nil)
}

func TestFetchPlayerMetadata(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*mocks.MockDBusClient)
		expectError   bool
		expectedEvent *domain.MediaSession
	}{
		{
			name: "Success - Valid Metadata",
			setupMock: func(m *mocks.MockDBusClient) {
				expectSession(m, spotify, map[string]dbus.Variant{
					"xesam:title":  dbus.MakeVariant("Stairway to Heaven"),
					"xesam:artist": dbus.MakeVariant([]string{"Led Zeppelin"}),
				}, "Playing")
			},
			expectedEvent: &domain.MediaSession{
				Player: spotify,
				Title:  "Stairway to Heaven",
				Artist: "Led Zeppelin",
				Status: domain.StatusPlaying,
			},
		},
		{
			name: "DBus Error - Connection Fail",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(spotify, mprisPath, propMetadata).
					Return(dbus.MakeVariant(""), fmt.Errorf("connection timeout"))
			},
			expectError: true,
		},
		{
			name: "Invalid Data - Metadata is Int not Map",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(spotify, mprisPath, propMetadata).
					Return(dbus.MakeVariant(12345), nil)
			},
		},
		{
			name: "Invalid Data - Status is not a String",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().GetProperty(spotify, mprisPath, propMetadata).
					Return(dbus.MakeVariant(map[string]dbus.Variant{}), nil)
				m.EXPECT().GetProperty(spotify, mprisPath, propStatus).
					Return(dbus.MakeVariant(int32(1)), nil)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			mon := NewMprisMonitor(zap.NewNop())
			err := mon.fetchPlayerMetadata(mockClient, spotify)

			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			select {
			case event := <-mon.Events():
				if tt.expectedEvent == nil {
					t.Errorf("Unexpected event emitted: %+v", event)
					return
				}
				if event.Player != tt.expectedEvent.Player {
					t.Errorf("Player mismatch: want %s, got %s", tt.expectedEvent.Player, event.Player)
				}
				if event.Title != tt.expectedEvent.Title {
					t.Errorf("Title mismatch: want %s, got %s", tt.expectedEvent.Title, event.Title)
				}
				if event.Status != tt.expectedEvent.Status {
					t.Errorf("Status mismatch: want %v, got %v", tt.expectedEvent.Status, event.Status)
				}
			default:
				if tt.expectedEvent != nil {
					t.Error("Expected event was not emitted")
				}
			}
		})
	}
}

func TestDetectExistingPlayers(t *testing.T) {
	tests := []struct {
		name             string
		setupMock        func(*mocks.MockDBusClient)
		expectError      bool
		expectedPlayers  int
		expectedMappings map[string]string
	}{
		{
			name: "Success - Detects Spotify and VLC",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames().Return([]string{
					"org.freedesktop.DBus",
					vlc,
					spotify,
					"com.example.OtherApp",
				}, nil)
				m.EXPECT().GetNameOwner(spotify).Return(":1.100", nil)
				m.EXPECT().GetNameOwner(vlc).Return(":1.200", nil)
				expectSession(m, spotify, map[string]dbus.Variant{"xesam:title": dbus.MakeVariant("Song A")}, "Playing")
				expectSession(m, vlc, map[string]dbus.Variant{"xesam:title": dbus.MakeVariant("Video B")}, "Paused")
			},
			expectedPlayers: 2,
			expectedMappings: map[string]string{
				":1.100": spotify,
				":1.200": vlc,
			},
		},
		{
			name: "Failure - ListNames fails",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames().Return(nil, fmt.Errorf("bus error"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			mon := NewMprisMonitor(zap.NewNop())
			err := mon.detectExistingPlayers(mockClient)

			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if len(mon.playerNames) != len(tt.expectedMappings) {
				t.Errorf("Mapping count mismatch: want %d, got %d", len(tt.expectedMappings), len(mon.playerNames))
			}
			for k, v := range tt.expectedMappings {
				if mon.playerNames[k] != v {
					t.Errorf("Mapping mismatch for %s: want %s, got %s", k, v, mon.playerNames[k])
				}
			}

			eventsFound := 0
			for len(mon.Events()) > 0 {
				<-mon.Events()
				eventsFound++
			}
			if eventsFound != tt.expectedPlayers {
				t.Errorf("Expected %d events, got %d", tt.expectedPlayers, eventsFound)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockDBusClient(ctrl)

	mockClient.EXPECT().ListNames().Return([]string{"org.freedesktop.DBus", vlc, spotify}, nil)
	expectSession(mockClient, spotify, map[string]dbus.Variant{
		"xesam:title":       dbus.MakeVariant("Song A"),
		"xesam:albumArtist": dbus.MakeVariant([]string{"Various Artists"}),
		"mpris:artUrl":      dbus.MakeVariant("file:///tmp/cover.png"),
	}, "Playing")
	mockClient.EXPECT().GetProperty(vlc, mprisPath, propMetadata).Return(dbus.MakeVariant("nothing"), nil)
	mockClient.EXPECT().Close().Return(nil)

	mon := NewMprisMonitor(zap.NewNop())
	mon.dial = func() (DBusClient, error) { return mockClient, nil }

	sessions, err := mon.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() returned error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.Player != spotify || s.Title != "Song A" || s.AlbumArtist != "Various Artists" {
		t.Errorf("unexpected session: %+v", s)
	}
	if s.ArtUrl != "file:///tmp/cover.png" || s.Status != domain.StatusPlaying {
		t.Errorf("unexpected session: %+v", s)
	}
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name      string
		dial      func(*mocks.MockDBusClient) (DBusClient, error)
		setupMock func(*mocks.MockDBusClient)
	}{
		{
			name: "Dial Fails",
			dial: func(*mocks.MockDBusClient) (DBusClient, error) {
				return nil, errors.New("no session bus")
			},
			setupMock: func(*mocks.MockDBusClient) {},
		},
		{
			name: "ListNames Fails",
			dial: func(m *mocks.MockDBusClient) (DBusClient, error) { return m, nil },
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().ListNames().Return(nil, errors.New("bus error"))
				m.EXPECT().Close().Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			mon := NewMprisMonitor(zap.NewNop())
			mon.dial = func() (DBusClient, error) { return tt.dial(mockClient) }

			if _, err := mon.Snapshot(context.Background()); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockDBusClient(ctrl)

	mockClient.EXPECT().AddMatchSignal(gomock.Any()).Return(nil).Times(2)
	mockClient.EXPECT().ListNames().Return([]string{spotify}, nil)
	mockClient.EXPECT().GetNameOwner(spotify).Return(":1.100", nil)
	expectSession(mockClient, spotify, map[string]dbus.Variant{"xesam:title": dbus.MakeVariant("Song A")}, "Playing")
	mockClient.EXPECT().Signal(gomock.Any()).AnyTimes()
	mockClient.EXPECT().Close().Return(nil)

	mon := NewMprisMonitor(zap.NewNop())
	mon.dial = func() (DBusClient, error) { return mockClient, nil }

	started := make(chan error, 1)
	go func() { started <- mon.Start(context.Background()) }()

	select {
	case s := <-mon.Events():
		if s.Title != "Song A" {
			t.Errorf("expected initial session 'Song A', got %q", s.Title)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout: initial session was not emitted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := mon.Stop(ctx); err != nil {
		t.Fatalf("Stop() returned error: %v", err)
	}

	select {
	case err := <-started:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected Start to end with context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}

	if _, ok := <-mon.Events(); ok {
		t.Error("expected the events channel to be closed")
	}
	if err := mon.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped on restart, got %v", err)
	}
}
