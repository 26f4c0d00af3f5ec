package viewer

import (
	"net/http"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/status"
)

const (
	viewerNotReady     = "data is still being loaded and the server is not ready"
	viewerRetrySeconds = "5"
)

// ProgressMessage is returned by the viewer while data is being loaded
type ProgressMessage struct {
	Message  string            `json:"message"`
	Progress status.StageStats `json:"progress"`
}

// fallback answers r with the loading progress unless the viewer is ready.
func (viewer *Viewer) fallback(w http.ResponseWriter, r *http.Request) (sent bool) {
	if viewer.ready.Load() {
		return false
	}

	w.Header().Set("Retry-After", viewerRetrySeconds)
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(viewerNotReady + "\n"))
		return true
	}

	viewer.writeJSON(w, http.StatusServiceUnavailable, ProgressMessage{
		Message:  viewerNotReady,
		Progress: viewer.Status.Current(),
	})
	return true
}
