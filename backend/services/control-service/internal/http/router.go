package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Health       http.HandlerFunc
	ControlState http.HandlerFunc
	DeviceStatus http.HandlerFunc
	Events       http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.ControlState != nil {
		mux.Handle("/control/state", method(http.MethodGet, routes.ControlState))
	}
	if routes.DeviceStatus != nil {
		mux.Handle("/devices/{id}/status", method(http.MethodGet, routes.DeviceStatus))
	}
	if routes.Events != nil {
		mux.Handle("/ws/events", method(http.MethodGet, routes.Events))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
