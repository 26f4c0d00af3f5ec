package viewer

import (
	"net/http"

	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
	"github.com/gorilla/mux"
)

// Index summarizes everything served by the viewer.
type Index struct {
	Classes int      `json:"classes"`
	Graphs  []string `json:"graphs"`
}

func (viewer *Viewer) writeJSON(w http.ResponseWriter, code int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := jsonfile.Encode(w, value); err != nil {
		viewer.Status.LogError("write response", err)
	}
}

func (viewer *Viewer) jsonIndex(w http.ResponseWriter, r *http.Request) {
	viewer.writeJSON(w, http.StatusOK, Index{
		Classes: viewer.model.Len(),
		Graphs:  viewer.getGraphNames(),
	})
}

func (viewer *Viewer) jsonClasses(w http.ResponseWriter, r *http.Request) {
	viewer.writeJSON(w, http.StatusOK, viewer.getClassLabels())
}

func (viewer *Viewer) jsonClass(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	class, ok := viewer.findClass(vars["label"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	viewer.writeJSON(w, http.StatusOK, class)
}

func (viewer *Viewer) jsonGraphs(w http.ResponseWriter, r *http.Request) {
	viewer.writeJSON(w, http.StatusOK, viewer.getGraphNames())
}

func (viewer *Viewer) jsonGraph(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	doc, ok := viewer.findGraph(vars["name"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	viewer.writeJSON(w, http.StatusOK, doc)
}

func (viewer *Viewer) jsonNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	info, ok := viewer.findNode(vars["name"], vars["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	viewer.writeJSON(w, http.StatusOK, info)
}
