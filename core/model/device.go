package model

// Device is a metered unit attributed with a fixed IANA timezone. The
// timezone is validated at load time and is always resolvable afterwards.
type Device struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// SentinelID marks a device row whose id column could not be parsed. It can
// never match a query because the store never indexes it into the device
// lookup.
const SentinelID = -1
