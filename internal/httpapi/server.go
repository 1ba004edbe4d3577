// Package httpapi wires the request gate, the ingest pipeline, and the
// record kinds into the HTTP surface spec §6 describes.
package httpapi

import (
	"log"
	"net/http"

	"github.com/nucleus/ingest-core/internal/apperr"
	"github.com/nucleus/ingest-core/internal/batchinsert"
	"github.com/nucleus/ingest-core/internal/ingestpipeline"
	"github.com/nucleus/ingest-core/internal/record"
	"github.com/nucleus/ingest-core/internal/reqgate"
)

// Deps is the shared, effectively-immutable state every handler reads from
// (spec §4.6: "{pool, token}", generalized to also carry the gate and the
// pipeline tuning knobs). DB is typed as batchinsert.Execer rather than
// *sql.DB so tests can substitute a fake database without a live Postgres
// connection.
type Deps struct {
	DB              batchinsert.Execer
	Gate            *reqgate.Gate
	ChannelCapacity int
	BatchLimit      int
}

// NewMux builds the routed handler for the service: /healthz plus the three
// ingest endpoints, each gated by Deps.Gate before touching the body.
func NewMux(deps *Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("POST /ingest", ingestHandler[record.Result](deps))
	mux.HandleFunc("POST /ingest-gottcha2", ingestHandler[record.Gottcha2Hit](deps))
	mux.HandleFunc("POST /ingest-stast", ingestHandler[record.StastHit](deps))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ingestHandler builds the §4.5→§4.4 chain for one record kind: gate, then
// join the decoder and the batched inserter over a fresh channel for this
// request only — there is no cross-request record mixing because each
// request gets its own Inserter and its own channel.
func ingestHandler[T record.Insertable](deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Gate.Authenticate(r); err != nil {
			writeError(w, r, err)
			return
		}
		if err := deps.Gate.Allow(); err != nil {
			writeError(w, r, err)
			return
		}

		ins := batchinsert.New[T](deps.DB, deps.BatchLimit)

		err := ingestpipeline.Run(r.Context(), r.Body, deps.Gate.MaxUncompressedBytes(), ins, deps.ChannelCapacity)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ingested"))
	}
}

// writeError maps the coded error taxonomy to an HTTP status and logs the
// cause — never the bearer token — at the point of failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.Printf("%s %s: unmapped error: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	switch appErr.Code {
	case apperr.CodeUnauthorized:
		log.Printf("%s %s: unauthorized", r.Method, r.URL.Path)
	case apperr.CodeRateLimited:
		log.Printf("%s %s: rate limited", r.Method, r.URL.Path)
	case apperr.CodeParse:
		log.Printf("%s %s: parse error at line %d: %v", r.Method, r.URL.Path, appErr.Line, appErr.Err)
	case apperr.CodePayloadTooLarge:
		log.Printf("%s %s: payload too large", r.Method, r.URL.Path)
	case apperr.CodeDatabase:
		log.Printf("%s %s: database error: %v", r.Method, r.URL.Path, appErr.Err)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, appErr)
	}

	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
}
