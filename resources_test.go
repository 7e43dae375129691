package unifi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraus/go-unifi-classic/internal/testutil"
)

func decodeFilter(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	var filter map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&filter))
	return filter
}

func TestEventsFilterDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       EventOptions
		wantStart  float64
		wantLimit  float64
		wantWithin float64
	}{
		{
			name:       "zero options get defaults",
			opts:       EventOptions{},
			wantStart:  0,
			wantLimit:  100,
			wantWithin: 1,
		},
		{
			name:       "non-positive limit falls back to default",
			opts:       EventOptions{Limit: -5},
			wantStart:  0,
			wantLimit:  100,
			wantWithin: 1,
		},
		{
			name:       "explicit values pass through",
			opts:       EventOptions{Start: 200, Limit: 50, WithinHours: 24},
			wantStart:  200,
			wantLimit:  50,
			wantWithin: 24,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
				"/api/s/default/stat/event": func(w http.ResponseWriter, r *http.Request) {
					filter := decodeFilter(t, r)
					assert.Equal(t, tt.wantStart, filter["_start"])
					assert.Equal(t, tt.wantLimit, filter["_limit"])
					assert.Equal(t, tt.wantWithin, filter["within"])
					testutil.WriteEnvelope(t, w, `[]`)
				},
			})
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.Events(context.Background(), tt.opts)
			require.NoError(t, err)
		})
	}
}

func TestAlarmsArchivedFilter(t *testing.T) {
	t.Parallel()

	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		"/api/s/default/list/alarm": func(w http.ResponseWriter, r *http.Request) {
			filter := decodeFilter(t, r)
			assert.Equal(t, false, filter["archived"])
			testutil.WriteEnvelope(t, w, `[{"key":"EVT_AP_Lost_Contact","msg":"AP disconnected","archived":false}]`)
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	alarms, err := client.Alarms(context.Background(), AlarmOptions{})
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "EVT_AP_Lost_Contact", alarms[0].Key)
	assert.False(t, alarms[0].Archived)
}

func TestRogueAPsWithinDefault(t *testing.T) {
	t.Parallel()

	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		"/api/s/default/stat/rogueap": func(w http.ResponseWriter, r *http.Request) {
			filter := decodeFilter(t, r)
			assert.Equal(t, float64(1), filter["within"])
			testutil.WriteEnvelope(t, w, `[{"bssid":"aa:bb:cc:dd:ee:00","essid":"neighbor","channel":6,"rssi":-70}]`)
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	aps, err := client.RogueAPs(context.Background(), RogueAPOptions{})
	require.NoError(t, err)
	require.Len(t, aps, 1)
	assert.Equal(t, "neighbor", aps[0].ESSID)
}

func TestMalformedMACRejectedBeforeNetworkCall(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		"/api/s/default/stat/device": func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			testutil.WriteEnvelope(t, w, `[]`)
		},
		"/api/s/default/stat/sta": func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			testutil.WriteEnvelope(t, w, `[]`)
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Devices(context.Background(), "AA:BB:CC:DD:EE:FF", "ZZ:ZZ:ZZ:ZZ:ZZ:ZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZZ:ZZ:ZZ:ZZ:ZZ:ZZ")

	_, err = client.Clients(context.Background(), "not-a-mac")
	require.Error(t, err)

	assert.Equal(t, int32(0), requests.Load(), "validation must fail before any network call")
}

func TestDevicesMACFilterSentAsBody(t *testing.T) {
	t.Parallel()

	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		"/api/s/default/stat/device": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			filter := decodeFilter(t, r)
			assert.Equal(t, []any{"aa:bb:cc:dd:ee:ff"}, filter["macs"])
			testutil.WriteEnvelope(t, w, `[{"mac":"aa:bb:cc:dd:ee:ff","name":"office-ap","model":"U7PG2","adopted":true}]`)
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	devices, err := client.Devices(context.Background(), "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "office-ap", devices[0].Name)
	assert.True(t, devices[0].Adopted)
}

func TestDevicesWithoutFilterUsesGet(t *testing.T) {
	t.Parallel()

	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		"/api/s/default/stat/device": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			testutil.WriteEnvelope(t, w, `[{"mac":"aa:bb:cc:dd:ee:ff"},{"mac":"11:22:33:44:55:66"}]`)
		},
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	devices, err := client.Devices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestSitePathEscapesSiteName(t *testing.T) {
	t.Parallel()

	srv := testutil.NewControllerServer(t, map[string]http.HandlerFunc{
		// r.URL.Path is the decoded form of /api/s/branch%20office/stat/routing
		"/api/s/branch office/stat/routing": func(w http.ResponseWriter, _ *http.Request) {
			testutil.WriteEnvelope(t, w, `[{"pfx":"0.0.0.0/0","nh":["192.168.1.1"]}]`)
		},
	})
	defer srv.Close()

	client, err := NewWithConfig(&Config{
		BaseURL:  srv.URL,
		Username: testUser,
		Password: testPass,
		Site:     "branch office",
	})
	require.NoError(t, err)

	routes, err := client.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "0.0.0.0/0", routes[0].Prefix)
}
