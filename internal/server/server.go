// Package server serves the geostamp HTTP API.
package server

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/arnauagrupocobra-tech/geostamp"
	"github.com/arnauagrupocobra-tech/geostamp/exif"
	"github.com/arnauagrupocobra-tech/geostamp/internal/archive"
	"github.com/arnauagrupocobra-tech/geostamp/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxBodyBytes limits the size of request bodies.
const DefaultMaxBodyBytes = 32 << 20

// Error messages returned to clients.
const (
	msgInvalidJSON   = "JSON inválido"
	msgMissingFields = "Faltan campos: image_base64, latitude, longitude"
	msgDecode        = "No se pudo decodificar la imagen: "
	msgCoordinates   = "Coordenadas inválidas: "
	msgInvalidInput  = "Datos inválidos: "
	msgTooLarge      = "La petición es demasiado grande"
	msgMetadata      = "Error generando metadatos: "
	msgInternal      = "Error interno"
	msgMethod        = "Método no permitido"
)

// Server handles stamp requests.
type Server struct {
	stamper *geostamp.Stamper
	store   archive.Store
	maxBody int64
}

// Option configures a Server.
type Option func(*Server)

// WithArchive stores a copy of each stamped image in st.
func WithArchive(st archive.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMaxBodyBytes limits request bodies to n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New returns a Server stamping images with st.
func New(st *geostamp.Stamper, opts ...Option) *Server {
	s := &Server{
		stamper: st,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/procesar", s.handleStamp)
	mux.HandleFunc("/healthz", s.handleHealth)
	return logRequests(mux)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server")
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

type stampResponse struct {
	Filename    string `json:"filename"`
	ImageBase64 string `json:"image_base64"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStamp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{msgMethod})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{msgTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{msgInvalidJSON})
		return
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgInvalidJSON})
		return
	}

	imgField, latField, lonField := data["image_base64"], data["latitude"], data["longitude"]
	if isEmpty(imgField) || latField == nil || lonField == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgMissingFields})
		return
	}

	img, err := decodeImage(imgField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgDecode + err.Error()})
		return
	}

	lat, err := parseCoordinate(latField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgCoordinates + "latitude: " + err.Error()})
		return
	}
	lon, err := parseCoordinate(lonField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{msgCoordinates + "longitude: " + err.Error()})
		return
	}

	res, err := s.stamper.Stamp(img, geostamp.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		status, msg := classify(err)
		logRequest(r).WithField("error", err.Error()).Warn("stamp failed")
		writeJSON(w, status, errorResponse{msg})
		return
	}

	if s.store != nil {
		meta := map[string]string{
			"latitude":   strconv.FormatFloat(res.Coordinate.Lat, 'f', 7, 64),
			"longitude":  strconv.FormatFloat(res.Coordinate.Lon, 'f', 7, 64),
			"request-id": r.Header.Get(requestIDHeader),
		}
		// the response does not depend on the archive
		if err := s.store.Put(r.Context(), res.Filename, res.Image, meta); err != nil {
			logRequest(r).WithField("error", err.Error()).Warn("archive failed")
		}
	}

	writeJSON(w, http.StatusOK, stampResponse{
		Filename:    res.Filename,
		ImageBase64: base64.StdEncoding.EncodeToString(res.Image),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{msgMethod})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// classify returns the HTTP status and client message for err from Stamp.
func classify(err error) (int, string) {
	var de *geostamp.DecodeError
	var ie *geostamp.InputError
	var ee *geostamp.EncodingError
	switch {
	case errors.As(err, &de):
		return http.StatusBadRequest, msgDecode + de.Err.Error()
	case errors.As(err, &ie):
		if ie.Field == "latitude" || ie.Field == "longitude" {
			return http.StatusBadRequest, msgCoordinates + ie.Error()
		}
		return http.StatusBadRequest, msgInvalidInput + ie.Error()
	case errors.As(err, &ee):
		return http.StatusInternalServerError, msgMetadata + ee.Error()
	case errors.Is(err, exif.ErrTooLong):
		return http.StatusInternalServerError, msgMetadata + exif.ErrTooLong.Error()
	}
	return http.StatusInternalServerError, msgInternal
}

func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []interface{}:
		return len(x) == 0
	case map[string]interface{}:
		return len(x) == 0
	}
	return false
}

// decodeImage returns the image bytes of the base64 field v,
// which may carry a data URL prefix.
func decodeImage(v interface{}) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.Errorf("image_base64 is %T, not a string", v)
	}
	if strings.HasPrefix(s, "data:image") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)

	p, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// accept missing padding
		var rerr error
		if p, rerr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rerr != nil {
			return nil, err
		}
	}
	if len(p) == 0 {
		return nil, geostamp.ErrEmptyImage
	}
	return p, nil
}

// parseCoordinate accepts a JSON number or a numeric string.
func parseCoordinate(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return 0, errors.Errorf("%v is not a number", v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("writing response: %v", err)
	}
}
