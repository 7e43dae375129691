package unifi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/mkraus/go-unifi-classic/internal/response"
)

// Sites lists all site collections configured on the controller.
// This endpoint is not site-scoped.
func (c *Client) Sites(ctx context.Context) ([]Site, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/self/sites", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sites")
	}
	return response.Unmarshal[Site](body)
}

// Devices lists the controller-managed devices of the site, optionally
// filtered to the given MAC addresses.
func (c *Client) Devices(ctx context.Context, macs ...string) ([]Device, error) {
	body, err := c.filteredStat(ctx, "/stat/device", macs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	return response.Unmarshal[Device](body)
}

// Clients lists the client devices of the site, optionally filtered to the
// given MAC addresses.
func (c *Client) Clients(ctx context.Context, macs ...string) ([]Station, error) {
	body, err := c.filteredStat(ctx, "/stat/sta", macs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients")
	}
	return response.Unmarshal[Station](body)
}

// Health reports the status of the site's subsystems.
func (c *Client) Health(ctx context.Context) ([]HealthSubsystem, error) {
	body, err := c.do(ctx, http.MethodGet, c.sitePath("/stat/health"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get health")
	}
	return response.Unmarshal[HealthSubsystem](body)
}

// SysInfo reports controller system information for the site.
func (c *Client) SysInfo(ctx context.Context) (*SysInfo, error) {
	body, err := c.do(ctx, http.MethodGet, c.sitePath("/stat/sysinfo"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sysinfo")
	}
	infos, err := response.Unmarshal[SysInfo](body)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, errors.New("empty sysinfo response")
	}
	return &infos[0], nil
}

// Routes lists the site routing table.
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	body, err := c.do(ctx, http.MethodGet, c.sitePath("/stat/routing"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list routes")
	}
	return response.Unmarshal[Route](body)
}

// Events lists entries of the site event log, newest first.
func (c *Client) Events(ctx context.Context, opts EventOptions) ([]EventRecord, error) {
	payload, err := json.Marshal(map[string]any{
		"_start": normalizeStart(opts.Start),
		"_limit": normalizeLimit(opts.Limit),
		"within": normalizeWithin(opts.WithinHours),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode event filter")
	}

	body, err := c.do(ctx, http.MethodPost, c.sitePath("/stat/event"), payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return response.Unmarshal[EventRecord](body)
}

// Alarms lists alarms of the site.
func (c *Client) Alarms(ctx context.Context, opts AlarmOptions) ([]Alarm, error) {
	payload, err := json.Marshal(map[string]any{
		"archived": opts.Archived,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode alarm filter")
	}

	body, err := c.do(ctx, http.MethodPost, c.sitePath("/list/alarm"), payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list alarms")
	}
	return response.Unmarshal[Alarm](body)
}

// RogueAPs lists neighboring access points seen by the site's radios.
func (c *Client) RogueAPs(ctx context.Context, opts RogueAPOptions) ([]RogueAP, error) {
	payload, err := json.Marshal(map[string]any{
		"within": normalizeWithin(opts.WithinHours),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode rogue AP filter")
	}

	body, err := c.do(ctx, http.MethodPost, c.sitePath("/stat/rogueap"), payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rogue APs")
	}
	return response.Unmarshal[RogueAP](body)
}

// filteredStat fetches a stat endpoint, switching to a POST with a macs
// filter body when MAC addresses are given. MACs are validated before any
// network call.
func (c *Client) filteredStat(ctx context.Context, endpoint string, macs []string) ([]byte, error) {
	if err := validateMACs(macs); err != nil {
		return nil, err
	}

	if len(macs) == 0 {
		return c.do(ctx, http.MethodGet, c.sitePath(endpoint), nil)
	}

	payload, err := json.Marshal(map[string]any{"macs": macs})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode mac filter")
	}
	return c.do(ctx, http.MethodPost, c.sitePath(endpoint), payload)
}
