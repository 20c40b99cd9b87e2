package devices

import (
	"net/http"

	"github.com/verdantlabs/savings/api"
	"github.com/verdantlabs/savings/core/model"
)

// Lister provides the loaded device set.
type Lister interface {
	Devices() []model.Device
}

// NewListHandler returns an HTTP handler exposing device metadata via
// GET /api/devices.
func NewListHandler(src Lister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		devs := src.Devices()
		if devs == nil {
			devs = []model.Device{}
		}
		if err := api.WriteJSON(w, devs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
