// Package viewer serves the class model and graphs of a simulation folder over http.
package viewer

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/classes"
	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/pipeline"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gorilla/mux"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// cspell:words jsonld doublestar

// Viewer implements an [http.Handler] that serves the artifacts of a simulation folder.
// Until [Viewer.Load] has completed, every request is answered with the progress of loading.
type Viewer struct {
	Folder string
	Status *status.Status

	init sync.Once
	mux  mux.Router

	ready  atomic.Bool
	model  *classes.Model
	graphs *orderedmap.OrderedMap[string, *jsonld.Document] // graphs by source name
}

// graphPattern matches the graph files inside the output folder.
const graphPattern = "metadata_*.jsonld"

// Load reads the class model and all graphs of the folder.
// It must be called at most once.
func (viewer *Viewer) Load() error {
	env, err := pipeline.LoadEnvironment(viewer.Folder)
	if err != nil {
		return err
	}

	output := metaextract.OutputPaths(viewer.Folder, "").Folder
	matches, err := doublestar.Glob(os.DirFS(output), graphPattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("failed to search %q: %w", output, err)
	}

	graphs := orderedmap.New[string, *jsonld.Document]()
	err = viewer.Status.DoStage(status.StageRead, func() error {
		for i, match := range matches {
			viewer.Status.SetCT(i, len(matches))

			name := strings.TrimSuffix(strings.TrimPrefix(match, "metadata_"), ".jsonld")
			doc, err := pipeline.LoadDocument(metaextract.OutputPaths(viewer.Folder, name).JSONLD)
			if err != nil {
				return err
			}
			graphs.Set(name, doc)
		}
		viewer.Status.SetCT(len(matches), len(matches))
		return nil
	})
	if err != nil {
		return err
	}

	viewer.model = env.Model
	viewer.graphs = graphs
	viewer.ready.Store(true)

	viewer.Status.Log("viewer ready", "classes", env.Model.Len(), "graphs", graphs.Len())
	return nil
}

// Prepare registers all routes.
// It is called automatically by ServeHTTP.
func (viewer *Viewer) Prepare() {
	viewer.init.Do(func() {
		viewer.mux.HandleFunc("/", viewer.htmlIndex)

		viewer.mux.HandleFunc("/api/v1", viewer.jsonIndex)
		viewer.mux.HandleFunc("/api/v1/classes", viewer.jsonClasses)
		viewer.mux.HandleFunc("/api/v1/classes/{label}", viewer.jsonClass)
		viewer.mux.HandleFunc("/api/v1/graphs", viewer.jsonGraphs)
		viewer.mux.HandleFunc("/api/v1/graphs/{name}", viewer.jsonGraph)
		viewer.mux.HandleFunc("/api/v1/graphs/{name}/node", viewer.jsonNode).Queries("id", "{id:.+}")
	})
}

func (viewer *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer.Prepare()
	if viewer.fallback(w, r) {
		return
	}
	viewer.mux.ServeHTTP(w, r)
}
