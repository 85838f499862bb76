package serveme

import "time"

// Server is one bookable game server as listed by the booking API.
type Server struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IPAndPort string `json:"ip_and_port"`
}

// ServerConfig is a server-side config file the API can preload on booking.
type ServerConfig struct {
	ID   int64  `json:"id"`
	File string `json:"file"`
}

// FindResult is the availability search response.
type FindResult struct {
	Servers       []Server       `json:"servers"`
	ServerConfigs []ServerConfig `json:"server_configs"`
}

// CreateRequest describes one booking to create.
type CreateRequest struct {
	StartsAt       time.Time
	EndsAt         time.Time
	ServerID       int64
	Password       string
	RCON           string
	FirstMap       string
	ServerConfigID int64 // 0 means none
}

// Reservation is the confirmed booking payload returned by the API.
type Reservation struct {
	ID       int64  `json:"id"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
	Password string `json:"password"`
	RCON     string `json:"rcon"`
	Server   Server `json:"server"`
}

type prefilledResponse struct {
	Actions struct {
		FindServers string `json:"find_servers"`
	} `json:"actions"`
}

type reservationBody struct {
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	ServerID       int64  `json:"server_id,omitempty"`
	Password       string `json:"password,omitempty"`
	RCON           string `json:"rcon,omitempty"`
	FirstMap       string `json:"first_map,omitempty"`
	ServerConfigID *int64 `json:"server_config_id,omitempty"`
}

type reservationEnvelope struct {
	Reservation *Reservation `json:"reservation"`
}

type errorEnvelope struct {
	Reservation struct {
		Errors map[string][]struct {
			Error string `json:"error"`
		} `json:"errors"`
	} `json:"reservation"`
	Error string `json:"error"`
}
