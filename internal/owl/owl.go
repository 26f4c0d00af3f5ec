// Package owl loads OWL ontologies into an index and answers the label queries needed to build a class model.
package owl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/FAU-CDI/metaextract/internal/triplestore/igraph"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
	"github.com/anglo-korean/rdf"
)

// cspell:words rdfs skos owl

// Well-known IRIs used when querying an ontology.
const (
	RDFType = impl.Label("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")

	RDFSLabel      = impl.Label("http://www.w3.org/2000/01/rdf-schema#label")
	RDFSSubClassOf = impl.Label("http://www.w3.org/2000/01/rdf-schema#subClassOf")
	RDFSDomain     = impl.Label("http://www.w3.org/2000/01/rdf-schema#domain")
	RDFSRange      = impl.Label("http://www.w3.org/2000/01/rdf-schema#range")

	SKOSPrefLabel = impl.Label("http://www.w3.org/2004/02/skos/core#prefLabel")

	OWLClass            = impl.Label("http://www.w3.org/2002/07/owl#Class")
	OWLNamedIndividual  = impl.Label("http://www.w3.org/2002/07/owl#NamedIndividual")
	OWLObjectProperty   = impl.Label("http://www.w3.org/2002/07/owl#ObjectProperty")
	OWLDatatypeProperty = impl.Label("http://www.w3.org/2002/07/owl#DatatypeProperty")
	OWLDisjointWith     = impl.Label("http://www.w3.org/2002/07/owl#disjointWith")
)

// ErrUnsupportedFormat is returned when an ontology location does not point to an RDF/XML document.
var ErrUnsupportedFormat = errors.New("ontology format is not supported: location must end in .owl or .xml")

// Supported checks if location points to a supported ontology document.
func Supported(location string) bool {
	return strings.HasSuffix(location, ".owl") || strings.HasSuffix(location, ".xml")
}

// Open opens the ontology at location, and returns a Querier for it.
// Location may be an http(s) url or a local path.
//
// When err == nil, the caller must eventually close the querier.
func Open(ctx context.Context, location string, engine igraph.Engine, st *status.Status) (q *Querier, err error) {
	if !Supported(location) {
		return nil, ErrUnsupportedFormat
	}

	err = st.DoStage(status.StageIndex, func() (err error) {
		reader, size, err := Fetch(ctx, location)
		if err != nil {
			return err
		}
		defer func() {
			cerr := reader.Close()
			if cerr == nil || err != nil {
				return
			}
			err = errors.Join(fmt.Errorf("failed to close ontology: %w", cerr), q.Close())
			q = nil
		}()

		q, err = Load(st.Reader(reader, size), engine)
		return err
	})
	if err != nil {
		return nil, err
	}

	st.StoreIndexStats(q.index.Stats())
	st.LogDebug("indexed ontology", "location", location, "stats", q.index.Stats())
	return q, nil
}

// Fetch opens the document at location for reading.
// Location may be an http(s) url or a local path; any status other than 200 is an error.
// size is the expected number of bytes, or -1 if unknown.
func Fetch(ctx context.Context, location string) (reader io.ReadCloser, size int64, err error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, -1, fmt.Errorf("failed to create request: %w", err)
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, -1, fmt.Errorf("failed to fetch %q: %w", location, err)
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, -1, fmt.Errorf("failed to fetch %q: %s", location, res.Status)
		}
		return res.Body, res.ContentLength, nil
	}

	file, err := os.Open(location) // #nosec G304 -- explicit parameter
	if err != nil {
		return nil, -1, fmt.Errorf("failed to open %q: %w", location, err)
	}

	size = -1
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	return file, size, nil
}

// Load decodes an RDF/XML document from reader and indexes it.
// When err == nil, the caller must eventually close the querier.
func Load(reader io.Reader, engine igraph.Engine) (*Querier, error) {
	var index igraph.Index
	if err := index.Reset(engine); err != nil {
		return nil, fmt.Errorf("failed to reset index: %w", err)
	}

	closeIndex := func(err error) (*Querier, error) {
		if e2 := index.Close(); e2 != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close index: %w", e2))
		}
		return nil, err
	}

	decoder := rdf.NewTripleDecoder(reader, rdf.RDFXML)
	for {
		triple, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return closeIndex(fmt.Errorf("failed to decode ontology: %w", err))
		}

		if err := addTriple(&index, triple); err != nil {
			return closeIndex(err)
		}
	}

	if err := index.Finalize(); err != nil {
		return closeIndex(fmt.Errorf("failed to finalize index: %w", err))
	}
	return &Querier{index: &index}, nil
}

func addTriple(index *igraph.Index, triple rdf.Triple) error {
	subject, ok := asLabel(triple.Subj)
	if !ok {
		return nil
	}
	predicate, ok := asLabel(triple.Pred)
	if !ok {
		return nil
	}

	if triple.Obj != nil && triple.Obj.Type() == rdf.TermLiteral {
		datum := impl.Datum{Value: triple.Obj.String()}
		if literal, ok := triple.Obj.(rdf.Literal); ok {
			datum.Language = literal.Lang()
		}
		return index.AddDatum(subject, predicate, datum)
	}

	object, ok := asLabel(triple.Obj)
	if !ok {
		return nil
	}
	return index.AddTriple(subject, predicate, object)
}

// asLabel turns an IRI or blank node into a label.
func asLabel(term rdf.Term) (impl.Label, bool) {
	if term == nil {
		return "", false
	}
	switch term.Type() {
	case rdf.TermIRI:
		return impl.Label(term.String()), true
	case rdf.TermBlank:
		return impl.Label("_:" + strings.TrimPrefix(term.String(), "_:")), true
	default:
		return "", false
	}
}
