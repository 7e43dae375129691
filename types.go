package unifi

// Site is one site collection on the controller.
type Site struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Role        string `json:"role"`
}

// Device is a controller-managed network device (AP, switch, gateway).
type Device struct {
	ID      string `json:"_id"`
	Mac     string `json:"mac"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	Type    string `json:"type"`
	Version string `json:"version"`
	IP      string `json:"ip"`
	Adopted bool   `json:"adopted"`
	State   int    `json:"state"`
	Uptime  int64  `json:"uptime"`
}

// Station is a client device associated with the network.
type Station struct {
	ID        string `json:"_id"`
	Mac       string `json:"mac"`
	Hostname  string `json:"hostname"`
	IP        string `json:"ip"`
	Network   string `json:"network"`
	APMac     string `json:"ap_mac"`
	ESSID     string `json:"essid"`
	IsGuest   bool   `json:"is_guest"`
	IsWired   bool   `json:"is_wired"`
	Signal    int    `json:"signal"`
	Uptime    int64  `json:"uptime"`
	FirstSeen int64  `json:"first_seen"`
	LastSeen  int64  `json:"last_seen"`
}

// HealthSubsystem is the status of one controller subsystem (wlan, lan,
// wan, www, vpn).
type HealthSubsystem struct {
	Subsystem string `json:"subsystem"`
	Status    string `json:"status"`
	NumUser   int    `json:"num_user"`
	NumGuest  int    `json:"num_guest"`
	NumAP     int    `json:"num_ap"`
	NumSW     int    `json:"num_sw"`
	NumGW     int    `json:"num_gw"`
}

// SysInfo is controller-level system information.
type SysInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Build         string `json:"build"`
	Timezone      string `json:"timezone"`
	Hostname      string `json:"hostname"`
	IP            string `json:"ip"`
	Uptime        int64  `json:"uptime"`
	UpdateVersion string `json:"update_available_version,omitempty"`
}

// Route is one entry of the site routing table.
type Route struct {
	Prefix  string   `json:"pfx"`
	NextHop []string `json:"nh"`
}

// EventRecord is one entry of the controller event log.
type EventRecord struct {
	ID        string `json:"_id"`
	Key       string `json:"key"`
	Subsystem string `json:"subsystem"`
	SiteID    string `json:"site_id"`
	Time      int64  `json:"time"`
	Datetime  string `json:"datetime"`
	Msg       string `json:"msg"`
	User      string `json:"user,omitempty"`
	AP        string `json:"ap,omitempty"`
}

// Alarm is one controller alarm.
type Alarm struct {
	ID        string `json:"_id"`
	Key       string `json:"key"`
	Subsystem string `json:"subsystem"`
	SiteID    string `json:"site_id"`
	Time      int64  `json:"time"`
	Datetime  string `json:"datetime"`
	Msg       string `json:"msg"`
	Archived  bool   `json:"archived"`
}

// RogueAP is a neighboring access point observed by the site's radios.
type RogueAP struct {
	ID       string `json:"_id"`
	APMac    string `json:"ap_mac"`
	BSSID    string `json:"bssid"`
	ESSID    string `json:"essid"`
	Channel  int    `json:"channel"`
	RSSI     int    `json:"rssi"`
	Security string `json:"security"`
	LastSeen int64  `json:"last_seen"`
}
